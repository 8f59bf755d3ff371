package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/metrics"
	"github.com/kevinaaaquil/digitallibrary/models"
	openai "github.com/sashabaranov/go-openai"
)

// ErrMalformedResponse means the generator answered but not with the JSON that was asked for.
var ErrMalformedResponse = errors.New("malformed generator response")

// OpenAIConfig configures OpenAIGenerator.
type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for a compatible proxy.
	BaseURL string
	Model   string
	// Timeout bounds each completion call.
	Timeout time.Duration
	Breaker BreakerConfig
}

// OpenAIGenerator produces book metadata, search filters, chat answers, mood suggestions and
// enrichment through the chat completions API.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	breaker *Breaker
}

func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = DefaultBreakerConfig()
	}
	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: cfg.Timeout,
		breaker: NewBreaker(cfg.Breaker),
	}
}

func message(role, content string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: role, Content: content}
}

// complete sends one chat completion through the breaker and returns the first choice's text.
func (g *OpenAIGenerator) complete(ctx context.Context, op string, msgs []openai.ChatCompletionMessage, jsonMode bool) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	req := openai.ChatCompletionRequest{Model: g.model, Messages: msgs}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	content, err := g.breaker.Execute(func() (string, error) {
		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
		}
		return resp.Choices[0].Message.Content, nil
	})
	metrics.GeneratorDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GeneratorRequests.WithLabelValues(op, "error").Inc()
		logging.Ctx(ctx).Debug().Err(err).Str("operation", op).Msg("generator call failed")
		return "", fmt.Errorf("%s: %w", op, err)
	}
	metrics.GeneratorRequests.WithLabelValues(op, "ok").Inc()
	return content, nil
}

// completeJSON runs a JSON-mode completion and decodes it into out.
func (g *OpenAIGenerator) completeJSON(ctx context.Context, op string, msgs []openai.ChatCompletionMessage, out any) error {
	content, err := g.complete(ctx, op, msgs, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		metrics.GeneratorRequests.WithLabelValues(op, "malformed").Inc()
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	return nil
}

func (g *OpenAIGenerator) BookInfo(ctx context.Context, title string) (*models.BookInfo, error) {
	msgs := []openai.ChatCompletionMessage{
		message(openai.ChatMessageRoleSystem, "You give accurate bibliographic information about books. Respond with JSON only."),
		message(openai.ChatMessageRoleUser, fmt.Sprintf(`Describe the book %q as a JSON object with these fields:
{"title": "full title", "author": "author name", "publication_date": "year of publication",
 "publisher": "publisher name", "summary": "a 100 to 150 word summary",
 "categories": ["category"], "tags": ["tag"]}`, title)),
	}
	var info models.BookInfo
	if err := g.completeJSON(ctx, "book_info", msgs, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (g *OpenAIGenerator) SearchParams(ctx context.Context, query string) (*models.SearchParams, error) {
	msgs := []openai.ChatCompletionMessage{
		message(openai.ChatMessageRoleSystem, `You turn a reader's request into search filters for a library catalogue.
Look for titles or series, authors, genres, themes or topics, audience, tone and setting.`),
		message(openai.ChatMessageRoleUser, fmt.Sprintf(`Request: %q
Answer with a JSON object with the fields "title", "author", "genres", "themes" and "keywords".
Leave a string empty or a list empty when the request does not mention it.`, query)),
	}
	var params models.SearchParams
	if err := g.completeJSON(ctx, "search_params", msgs, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

func (g *OpenAIGenerator) Chat(ctx context.Context, book models.BookContext, question string, history []models.ChatMessage) (string, error) {
	system := fmt.Sprintf(`You answer questions about the book %q by %s.
Summary: %s
Categories: %s
Publication date: %s
Publisher: %s

Stay accurate to this information and do not invent details. Be conversational and keep answers
to two or three paragraphs. If the information above cannot answer the question, say so politely
and suggest what would help.`,
		book.Title, book.Author, book.Summary, strings.Join(book.Categories, ", "), book.PublicationDate, book.Publisher)

	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, message(openai.ChatMessageRoleSystem, system))
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, message(role, m.Content))
	}
	msgs = append(msgs, message(openai.ChatMessageRoleUser, question))

	answer, err := g.complete(ctx, "chat", msgs, false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("chat: %w: empty answer", ErrMalformedResponse)
	}
	return answer, nil
}

func (g *OpenAIGenerator) Recommend(ctx context.Context, mood string, prefs *models.Preferences) ([]models.Suggestion, error) {
	traits, ok := models.MoodTraits[mood]
	if !ok {
		traits = mood
	}
	var hints string
	if prefs != nil {
		if len(prefs.PreferredCategories) > 0 {
			hints += "Preferred categories: " + strings.Join(prefs.PreferredCategories, ", ") + ". "
		}
		if len(prefs.PreferredAuthors) > 0 {
			hints += "Preferred authors: " + strings.Join(prefs.PreferredAuthors, ", ") + ". "
		}
	}
	prompt := fmt.Sprintf("The reader is feeling %q, so they want books that are %s.\n", mood, traits)
	if hints != "" {
		prompt += "They have these preferences: " + hints + "\n"
	}
	prompt += `Suggest 5 books across different genres and authors, each with a short reason it fits the mood.
Answer with a JSON object: {"recommendations": [{"title": "", "author": "", "reason": ""}]}`

	msgs := []openai.ChatCompletionMessage{
		message(openai.ChatMessageRoleSystem, "You recommend books that suit a reader's mood and explain each choice."),
		message(openai.ChatMessageRoleUser, prompt),
	}
	content, err := g.complete(ctx, "recommend", msgs, true)
	if err != nil {
		return nil, err
	}
	suggestions, err := decodeSuggestions([]byte(content))
	if err != nil {
		metrics.GeneratorRequests.WithLabelValues("recommend", "malformed").Inc()
		return nil, fmt.Errorf("recommend: %w: %v", ErrMalformedResponse, err)
	}
	return suggestions, nil
}

// decodeSuggestions accepts a bare array or an object holding one. The "recommendations" key is
// tried first, then every other key in name order.
func decodeSuggestions(data []byte) ([]models.Suggestion, error) {
	var list []models.Suggestion
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		if k != "recommendations" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := obj["recommendations"]; ok {
		keys = append([]string{"recommendations"}, keys...)
	}
	for _, k := range keys {
		if err := json.Unmarshal(obj[k], &list); err == nil {
			return list, nil
		}
	}
	return nil, errors.New("no list of books in response")
}

func (g *OpenAIGenerator) Enrich(ctx context.Context, book models.BookContext) (*models.Enrichment, error) {
	orNone := func(list []string) string {
		if len(list) == 0 {
			return "None specified"
		}
		return strings.Join(list, ", ")
	}
	info := fmt.Sprintf(`Title: %s
Author: %s
Publication date: %s
Publisher: %s
Availability: %s
Categories: %s
Tags: %s
Summary: %s`,
		book.Title, book.Author, book.PublicationDate, book.Publisher, book.Availability,
		orNone(book.Categories), orNone(book.Tags), book.Summary)

	msgs := []openai.ChatCompletionMessage{
		message(openai.ChatMessageRoleSystem, "You are a literary analyst producing metadata for search, recommendations and chat about a book."),
		message(openai.ChatMessageRoleUser, fmt.Sprintf(`Analyse this book:
%s

Answer with a JSON object with these fields:
"enhanced_summary": a fuller summary if the one above is short or missing,
"themes": major themes,
"keywords": search keywords,
"mood_matches": an object scoring the fit for each of happy, down, calm, stressed, curious and tired from 0 to 10,
"similar_books": 3 to 5 similar titles,
"reading_level": children, young adult or adult,
"content_warnings": content warnings, if any.`, info)),
	}
	var e models.Enrichment
	if err := g.completeJSON(ctx, "enrich", msgs, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
