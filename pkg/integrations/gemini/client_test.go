package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/httputil"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

func answer(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
		}},
	})
	return string(b)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), Options{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.SetRetryPolicy(httputil.Policy{Attempts: 2, Delay: time.Millisecond})
	return c
}

func TestComplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/"+DefaultModel+":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("api key header = %q", r.Header.Get("x-goog-api-key"))
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			GenerationConfig struct {
				ResponseMIMEType string         `json:"responseMimeType"`
				ResponseSchema   map[string]any `json:"responseSchema"`
			} `json:"generationConfig"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.GenerationConfig.ResponseMIMEType != "application/json" {
			t.Errorf("responseMimeType = %q", req.GenerationConfig.ResponseMIMEType)
		}
		if req.GenerationConfig.ResponseSchema == nil {
			t.Error("responseSchema missing")
		}
		w.Write([]byte(answer(`{"rule": "Prefer hooks."}`)))
	})

	raw, err := c.Complete(context.Background(), "summarize", ObjectSchema("rule"))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	var got struct{ Rule string }
	if err := json.Unmarshal(raw, &got); err != nil || got.Rule != "Prefer hooks." {
		t.Errorf("Complete = %s (%v)", raw, err)
	}
}

func TestCompleteStripsFence(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(answer("```json\n{\"rule\":\"x\"}\n```")))
	})
	raw, err := c.Complete(context.Background(), "p", nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if string(raw) != `{"rule":"x"}` {
		t.Errorf("Complete = %s", raw)
	}
}

func TestCompleteInferenceErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", `{"candidates":[]}`},
		{"malformed", answer("not json at all")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Write([]byte(tt.body))
			})
			_, err := c.Complete(context.Background(), "p", nil)
			if !errs.Is(err, errs.ErrCodeModelInference) {
				t.Fatalf("expected MODEL_INFERENCE_ERROR, got %v", err)
			}
			if calls.Load() != 1 {
				t.Errorf("expected no retry, got %d calls", calls.Load())
			}
		})
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
			return
		}
		w.Write([]byte(answer(`{"rule":"ok"}`)))
	})
	if _, err := c.Complete(context.Background(), "p", nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestCompleteRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})
	_, err := c.Complete(context.Background(), "p", nil)
	if !errs.Is(err, errs.ErrCodeModelInference) {
		t.Fatalf("expected MODEL_INFERENCE_ERROR, got %v", err)
	}
}

func TestCompleteRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	})
	_, err := c.Complete(context.Background(), "p", nil)
	if !errors.Is(err, integrations.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Options{})
	if !errs.Is(err, errs.ErrCodeCredentialMissing) {
		t.Fatalf("expected CREDENTIAL_MISSING, got %v", err)
	}
}

func TestObjectSchema(t *testing.T) {
	s := ObjectSchema("rule")
	if len(s.Required) != 1 || s.Properties["rule"] == nil {
		t.Errorf("ObjectSchema = %+v", s)
	}
}
