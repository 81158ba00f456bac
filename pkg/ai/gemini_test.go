package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExplainWord(t *testing.T) {
	var gotPath string
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "  It softens the request.  "}}}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewGeminiClient("test-key", "")
	if err != nil {
		t.Fatalf("NewGeminiClient() error = %v", err)
	}
	c.SetBaseURL(srv.URL)

	text, err := c.ExplainWord(context.Background(), "un poco de agua, por favor", "poco", "es", "en")
	if err != nil {
		t.Fatalf("ExplainWord() error = %v", err)
	}
	if text != "It softens the request." {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(gotPath, "gemini-2.0-flash:generateContent") {
		t.Errorf("path = %q, want default model endpoint", gotPath)
	}
	if gotReq.SystemInstruction == nil {
		t.Fatal("request missing system instruction")
	}
	if len(gotReq.Contents) != 1 || !strings.Contains(gotReq.Contents[0].Parts[0].Text, "poco") {
		t.Errorf("prompt = %+v", gotReq.Contents)
	}
}

func TestExplainWordUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "quota exceeded"}})
	}))
	defer srv.Close()

	c, _ := NewGeminiClient("test-key", "")
	c.SetBaseURL(srv.URL)

	_, err := c.ExplainWord(context.Background(), "s", "w", "es", "en")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
	if upstream.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429", upstream.Status)
	}
	if !strings.Contains(upstream.Message, "quota exceeded") {
		t.Errorf("Message = %q", upstream.Message)
	}
}

func TestExplainWordEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	c, _ := NewGeminiClient("test-key", "")
	c.SetBaseURL(srv.URL)

	_, err := c.ExplainWord(context.Background(), "s", "w", "es", "en")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
	if upstream.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", upstream.Status)
	}
}

func TestNewGeminiClientValidation(t *testing.T) {
	if _, err := NewGeminiClient("", ""); err == nil {
		t.Error("NewGeminiClient() with empty key succeeded, want error")
	}
	c, err := NewGeminiClient("k", "models/gemini-1.5-pro")
	if err != nil {
		t.Fatalf("NewGeminiClient() error = %v", err)
	}
	if c.model != "gemini-1.5-pro" {
		t.Errorf("model = %q, want models/ prefix stripped", c.model)
	}
}
