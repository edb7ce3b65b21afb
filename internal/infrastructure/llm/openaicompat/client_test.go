package openaicompat

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

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/resilience"
)

func completionBody(content string) string {
	payload := map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
	})
	return New(Config{
		BaseURL:     server.URL + "/v1",
		APIKey:      "test-key",
		Model:       "test-model",
		Temperature: 0.3,
	}, executor, nil)
}

func TestRefinerParsesQuestions(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		reply := "```json\n" + `[
			{"Question": "What is the powerhouse of the cell?", "solution": "The mitochondrion produces ATP.", "importance": "HIGH", "topic": "Biology", "difficulty": "easy", "confidence": 1.4},
			{"question": "Too short", "answer": "x"},
			{"question": "Define osmosis in plant cells.", "answer": "Answer not provided", "importance": "urgent"}
		]` + "\n```"
		_, _ = io.WriteString(w, completionBody(reply))
	})

	got, err := NewRefiner(client).Refine(context.Background(), "1. What is the powerhouse of the cell?", "bio.pdf")
	if err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d: %+v", len(got), got)
	}

	first := got[0]
	if first.Answer != "The mitochondrion produces ATP." || first.Importance != domain.ImportanceHigh || first.Difficulty != domain.DifficultyEasy {
		t.Fatalf("unexpected first question: %+v", first)
	}
	if first.Confidence != domain.MaxConfidence {
		t.Fatalf("expected confidence clamped to %v, got %v", domain.MaxConfidence, first.Confidence)
	}

	second := got[1]
	if second.Answer != placeholderAnswer || second.Importance != domain.ImportanceMedium || second.Topic != domain.DefaultTopic {
		t.Fatalf("unexpected second question: %+v", second)
	}
	if second.Confidence != defaultConfidence {
		t.Fatalf("expected default confidence, got %v", second.Confidence)
	}

	if captured["model"] != "test-model" {
		t.Fatalf("unexpected model in request: %v", captured["model"])
	}
	messages, _ := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
	user, _ := messages[1].(map[string]any)
	if content, _ := user["content"].(string); !strings.Contains(content, "bio.pdf") || !strings.Contains(content, "powerhouse") {
		t.Fatalf("user prompt missing document: %v", user["content"])
	}
}

func TestRefinerSkipsEmptyText(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, completionBody("[]"))
	})

	got, err := NewRefiner(client).Refine(context.Background(), "   ", "empty.txt")
	if err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	if got == nil || len(got) != 0 || atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no call and empty result, got %v after %d calls", got, calls)
	}
}

func TestRefinerRetriesUnavailableAsTemporary(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	})

	_, err := NewRefiner(client).Refine(context.Background(), "Some text with a question?", "a.txt")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestRefinerDoesNotRetryBadRequest(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"context too long","type":"invalid_request_error"}}`)
	})

	_, err := NewRefiner(client).Refine(context.Background(), "Some text with a question?", "a.txt")
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("bad request must not be temporary: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestVisionRecognizerSendsImage(t *testing.T) {
	var body string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		_, _ = io.WriteString(w, completionBody("  Question 1: Define entropy.\n  "))
	})

	got, err := NewVisionRecognizer(client).RecognizePage(context.Background(), []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("RecognizePage() error = %v", err)
	}
	if got != "Question 1: Define entropy." {
		t.Fatalf("unexpected text %q", got)
	}
	if !strings.Contains(body, "data:image/png;base64,iVBORw") || !strings.Contains(body, `"image_url"`) {
		t.Fatalf("request does not carry the page image: %s", body)
	}
}

func TestExtractJSONArray(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: `[{"a":1}]`, want: `[{"a":1}]`},
		{name: "surrounding prose", raw: "Here you go:\n[{\"a\":1}]\nThanks", want: `[{"a":1}]`},
		{name: "fenced", raw: "```json\n[{\"a\":1}]\n```", want: `[{"a":1}]`},
		{name: "truncated", raw: `[{"a":1},{"b":2},{"c":`, want: `[{"a":1},{"b":2}]`},
		{name: "no array", raw: `{"a":1}`, wantErr: true},
		{name: "truncated before object", raw: `[{"a":`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractJSONArray(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractJSONArray() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("extractJSONArray() = %q, want %q", got, tc.want)
			}
		})
	}
}
