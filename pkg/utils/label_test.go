package utils

import "testing"

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{"empty existing", Label{}, RecallLabel("cosine"), Label{Value: "cosine", Source: SourceRecall}},
		{"empty incoming", RecallLabel("cosine"), Label{}, Label{Value: "cosine", Source: SourceRecall}},
		{"append", RecallLabel("content_based"), NewLabel(SourceLLM, "ai_enhanced"),
			Label{Value: "content_based|ai_enhanced", Source: "recall,llm"}},
		{"duplicate value", RecallLabel("content_based"), RecallLabel("content_based"),
			Label{Value: "content_based", Source: SourceRecall}},
		{"source missing", Label{Value: "a"}, NewLabel(SourceFilter, "b"), Label{Value: "a|b", Source: SourceFilter}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeLabel(tt.existing, tt.incoming); got != tt.want {
				t.Errorf("MergeLabel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLabelValues(t *testing.T) {
	if got := (Label{}).Values(); got != nil {
		t.Errorf("empty label values = %v", got)
	}
	got := MergeLabel(RecallLabel("a"), RecallLabel("b")).Values()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Values() = %v", got)
	}
}
