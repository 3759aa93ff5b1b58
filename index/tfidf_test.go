package index

import (
	"math"
	"reflect"
	"testing"
)

func TestVectorizerAnalyze(t *testing.T) {
	v := NewVectorizer(0)
	got := v.Analyze("The Dune saga, a desert planet!")
	want := []string{"dune", "saga", "desert", "planet", "dune saga", "saga desert", "desert planet"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Analyze() = %v, want %v", got, want)
	}

	v.NGramMax = 1
	if got := v.Analyze("I am x"); len(got) != 0 {
		t.Errorf("stop words and single chars must be dropped, got %v", got)
	}
}

func TestVectorizerFitCapAndIDF(t *testing.T) {
	v := NewVectorizer(2)
	v.NGramMax = 1
	rows := v.Fit([]string{"apple apple banana", "apple cherry"})

	if got := v.Terms(); !reflect.DeepEqual(got, []string{"apple", "banana"}) {
		t.Fatalf("vocabulary = %v, want [apple banana]", got)
	}
	if idf, _ := v.IDF("apple"); math.Abs(idf-1) > 1e-12 {
		t.Errorf("idf(apple) = %v, want 1", idf)
	}
	if idf, _ := v.IDF("banana"); math.Abs(idf-(math.Log(1.5)+1)) > 1e-12 {
		t.Errorf("idf(banana) = %v, want ln(1.5)+1", idf)
	}
	if _, ok := v.IDF("cherry"); ok {
		t.Error("cherry should be cut by MaxFeatures")
	}

	for i, r := range rows {
		if math.Abs(r.Norm()-1) > 1e-9 {
			t.Errorf("row %d norm = %v, want 1", i, r.Norm())
		}
	}
	if rows[1].Len() != 1 || rows[1].Indices[0] != 0 {
		t.Errorf("row 1 should only contain apple, got %+v", rows[1])
	}
	// apple:banana 权重比 = 2*1 : 1*idf(banana)
	ratio := rows[0].Values[0] / rows[0].Values[1]
	if math.Abs(ratio-2/(math.Log(1.5)+1)) > 1e-9 {
		t.Errorf("weight ratio = %v", ratio)
	}
}

func TestVectorizerEmptyVocabulary(t *testing.T) {
	v := NewVectorizer(10)
	rows := v.Fit([]string{"a the of", ""})
	if v.VocabularySize() != 0 {
		t.Fatalf("vocabulary size = %d, want 0", v.VocabularySize())
	}
	for i, r := range rows {
		if r.Len() != 0 {
			t.Errorf("row %d should be empty", i)
		}
	}
	if q := v.Transform("anything here"); q.Len() != 0 {
		t.Errorf("transform on empty vocabulary should be empty, got %+v", q)
	}
}

func TestVectorizerTransformIgnoresUnknownTerms(t *testing.T) {
	v := NewVectorizer(0)
	v.Fit([]string{"space opera empire", "desert planet spice"})
	q := v.Transform("spice galaxy")
	if q.Len() != 1 {
		t.Fatalf("want exactly one known term, got %+v", q)
	}
	if math.Abs(q.Norm()-1) > 1e-9 {
		t.Errorf("query norm = %v, want 1", q.Norm())
	}
}

func TestSparseVectorDot(t *testing.T) {
	a := SparseVector{Indices: []int{0, 2, 5}, Values: []float64{1, 2, 3}}
	b := SparseVector{Indices: []int{2, 3, 5}, Values: []float64{4, 7, 1}}
	if got := a.Dot(b); got != 11 {
		t.Errorf("Dot() = %v, want 11", got)
	}
	if got := a.Dot(SparseVector{}); got != 0 {
		t.Errorf("Dot(empty) = %v, want 0", got)
	}
}
