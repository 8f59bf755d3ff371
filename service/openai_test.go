package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/kevinaaaquil/digitallibrary/models"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

// fakeOpenAI answers /chat/completions with content and records the last request.
type fakeOpenAI struct {
	content string
	status  int
	calls   atomic.Int32
	last    completionRequest
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if r.URL.Path != "/chat/completions" {
		http.NotFound(w, r)
		return
	}
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &f.last)
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
		return
	}
	resp := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   f.last.Model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": f.content},
			"finish_reason": "stop",
		}},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestGenerator(t *testing.T, fake *fakeOpenAI) *OpenAIGenerator {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewOpenAIGenerator(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gpt-test",
		Timeout: 5 * time.Second,
		Breaker: BreakerConfig{Name: t.Name(), MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 2},
	})
}

func TestBookInfo(t *testing.T) {
	fake := &fakeOpenAI{content: `{"title":"Dune","author":"Frank Herbert","publication_date":"1965",
		"publisher":"Chilton","summary":"Spice.","categories":["Science Fiction"],"tags":"Desert"}`}
	g := newTestGenerator(t, fake)

	info, err := g.BookInfo(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", info.Author)
	assert.Equal(t, models.StringList{"Science Fiction"}, info.Categories)
	assert.Equal(t, models.StringList{"Desert"}, info.Tags)

	assert.Equal(t, "gpt-test", fake.last.Model)
	require.NotNil(t, fake.last.ResponseFormat)
	assert.Equal(t, "json_object", fake.last.ResponseFormat.Type)
	assert.Contains(t, fake.last.Messages[1].Content, `"dune"`)
}

func TestMalformedJSON(t *testing.T) {
	g := newTestGenerator(t, &fakeOpenAI{content: "Sure! Here is the book."})

	_, err := g.BookInfo(context.Background(), "dune")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = g.SearchParams(context.Background(), "something cosy")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestChatSendsHistory(t *testing.T) {
	fake := &fakeOpenAI{content: "It is set on Arrakis."}
	g := newTestGenerator(t, fake)
	book := models.BookContext{Title: "Dune", Author: "Frank Herbert", Summary: "Spice.", Categories: []string{"Science Fiction"}}
	history := []models.ChatMessage{
		{Role: models.ChatRoleUser, Content: "Who wrote it?"},
		{Role: models.ChatRoleAssistant, Content: "Frank Herbert."},
	}

	answer, err := g.Chat(context.Background(), book, "Where is it set?", history)
	require.NoError(t, err)
	assert.Equal(t, "It is set on Arrakis.", answer)

	require.Len(t, fake.last.Messages, 4)
	assert.Equal(t, "system", fake.last.Messages[0].Role)
	assert.Contains(t, fake.last.Messages[0].Content, "Science Fiction")
	assert.Equal(t, "assistant", fake.last.Messages[2].Role)
	assert.Equal(t, "Where is it set?", fake.last.Messages[3].Content)
	assert.Nil(t, fake.last.ResponseFormat)
}

func TestChatEmptyAnswer(t *testing.T) {
	g := newTestGenerator(t, &fakeOpenAI{content: "  "})
	_, err := g.Chat(context.Background(), models.BookContext{Title: "Dune"}, "hi", nil)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRecommendPromptAndDecoding(t *testing.T) {
	fake := &fakeOpenAI{content: `{"books":[{"title":"Emma","author":"Jane Austen","reason":"light comedy"}]}`}
	g := newTestGenerator(t, fake)
	prefs := &models.Preferences{PreferredAuthors: []string{"Jane Austen"}}

	got, err := g.Recommend(context.Background(), models.MoodTired, prefs)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "light comedy", got[0].Reason)
	assert.Contains(t, fake.last.Messages[1].Content, models.MoodTraits[models.MoodTired])
	assert.Contains(t, fake.last.Messages[1].Content, "Preferred authors: Jane Austen")
}

func TestDecodeSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"bare array", `[{"title":"A"},{"title":"B"}]`, 2, false},
		{"recommendations key", `{"note":"x","recommendations":[{"title":"A"}]}`, 1, false},
		{"other key", `{"items":[{"title":"A"},{"title":"B"},{"title":"C"}]}`, 3, false},
		{"no list", `{"note":"nothing"}`, 0, true},
		{"not json", `books!`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSuggestions([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestEnrichDecodesMoodMatches(t *testing.T) {
	fake := &fakeOpenAI{content: `{"enhanced_summary":"Longer.","themes":["Power"],"keywords":["Spice","Desert"],
		"mood_matches":{"curious":8,"calm":"3"},"similar_books":["Foundation"],"reading_level":"adult"}`}
	g := newTestGenerator(t, fake)

	e, err := g.Enrich(context.Background(), models.BookContext{Title: "Dune", Author: "Unknown"})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"Spice", "Desert"}, e.Keywords)
	assert.Equal(t, 8.0, e.MoodMatches["curious"])
	assert.Equal(t, "3", e.MoodMatches["calm"])
	assert.Contains(t, fake.last.Messages[1].Content, "Tags: None specified")
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	fake := &fakeOpenAI{status: http.StatusInternalServerError}
	g := newTestGenerator(t, fake)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.Chat(ctx, models.BookContext{Title: "Dune"}, "hi", nil)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, g.breaker.State())

	calls := fake.calls.Load()
	_, err := g.Chat(ctx, models.BookContext{Title: "Dune"}, "hi", nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, calls, fake.calls.Load(), "open breaker does not call upstream")
}
