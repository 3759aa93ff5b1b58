package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/bookrec/core"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(""); !core.IsInvalidInput(err) {
		t.Fatalf("want INVALID_INPUT, got %v", err)
	}
}

func TestClientExpandPreferences(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"1. dragons\n2. quest\n3. magic"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient("sk-test", WithBaseURL(srv.URL+"/"), WithModel("gpt-test"), WithMaxTokens(64), WithMaxKeywords(2))
	if err != nil {
		t.Fatal(err)
	}
	kws, err := c.ExpandPreferences(context.Background(), "epic fantasy with dragons")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(kws, []string{"dragons", "quest"}) {
		t.Errorf("keywords = %v", kws)
	}
	if got.Model != "gpt-test" || got.MaxTokens != 64 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || !strings.Contains(got.Messages[1].Content, "epic fantasy with dragons") {
		t.Errorf("prompt does not carry the preferences: %+v", got.Messages)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http 500", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}},
		{"no choices", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			c, _ := NewClient("k", WithBaseURL(srv.URL))
			if _, err := c.ExpandPreferences(context.Background(), "x"); !core.IsUnavailable(err) {
				t.Errorf("want UNAVAILABLE, got %v", err)
			}
		})
	}
}

func TestClientRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, _ := NewClient("k", WithBaseURL(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := c.ExpandPreferences(ctx, "x"); err == nil {
		t.Fatal("want error on timeout")
	}
	if time.Since(start) > time.Second {
		t.Errorf("request did not honour the context deadline")
	}
}

func TestClientBodyReadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "200")
		_, _ = w.Write([]byte(`{"choices":[`))
	}))
	defer srv.Close()

	c, _ := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.ExpandPreferences(context.Background(), "x")
	if !core.IsUnavailable(err) || !strings.Contains(err.Error(), "read response") {
		t.Fatalf("want UNAVAILABLE read error, got %v", err)
	}
}
