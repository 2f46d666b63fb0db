package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/execsum/internal/model"
)

type testChoice = struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

func choiceWith(content, finish string) testChoice {
	var c testChoice
	c.Message.Content = content
	c.FinishReason = finish
	return c
}

func makeTestServer(t *testing.T, statusCode int, body any) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, srv.Client()
}

func newTestOpenAI(t *testing.T, url string, client *http.Client) *OpenAIProvider {
	t.Helper()
	p, err := NewOpenAIProvider(url, "test-key", "test-model", GenerationOptions{Temperature: 0.7, CandidateCount: 1}, client)
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}
	return p
}

func TestNewOpenAIProvider_MissingKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "", "m", GenerationOptions{}, http.DefaultClient)
	var cfgErr *model.ConfigError
	if !errors.As(err, &cfgErr) || !errors.Is(err, model.ErrMissingCredential) {
		t.Fatalf("err = %v, want ConfigError wrapping ErrMissingCredential", err)
	}
}

func TestComplete_Success(t *testing.T) {
	resp := chatResponse{Choices: []testChoice{choiceWith("Developmentally, scope exists...", "stop")}}
	srv, client := makeTestServer(t, http.StatusOK, resp)

	got, err := newTestOpenAI(t, srv.URL, client).Complete(context.Background(), "summarise this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Developmentally, scope exists..." {
		t.Errorf("got %q", got)
	}
}

func TestComplete_HTTPError(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusTooManyRequests, map[string]string{"error": "rate limited"})

	_, err := newTestOpenAI(t, srv.URL, client).Complete(context.Background(), "summarise this")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want HTTPError 429", err)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, chatResponse{})

	if _, err := newTestOpenAI(t, srv.URL, client).Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error when LLM returns no choices")
	}
}

func TestComplete_ContentFilter(t *testing.T) {
	resp := chatResponse{Choices: []testChoice{choiceWith("", "content_filter")}}
	srv, client := makeTestServer(t, http.StatusOK, resp)

	if _, err := newTestOpenAI(t, srv.URL, client).Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error for filtered response")
	}
}

func TestComplete_SendsPromptAndOptions(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse{Choices: []testChoice{choiceWith("ok", "stop")}})
	}))
	defer srv.Close()

	_, _ = newTestOpenAI(t, srv.URL, srv.Client()).Complete(context.Background(), "the prompt")

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" || gotReq.Messages[0].Content != "the prompt" {
		t.Errorf("messages = %+v, want the prompt as a single user message", gotReq.Messages)
	}
	if gotReq.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", gotReq.Temperature)
	}
	if gotReq.N != 1 {
		t.Errorf("n = %d, want 1", gotReq.N)
	}
}
