package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hn-discuss/internal/model"
	"hn-discuss/internal/render"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer condenses a page's HN discussion into a short digest.
type Summarizer interface {
	SummarizeDiscussion(ctx context.Context, pageURL string, res model.AggregateResult, language string) (string, error)
}

// OpenAIClient implements Summarizer using OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key must be specified")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openai: model must be specified")
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cc), model: cfg.Model}, nil
}

const (
	maxDigestComments = 30
	maxCommentRunes   = 600
)

// SummarizeDiscussion returns "" without calling the model when there is nothing to summarize.
func (o *OpenAIClient) SummarizeDiscussion(ctx context.Context, pageURL string, res model.AggregateResult, language string) (string, error) {
	input := DigestInput(res)
	if input == "" {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	sys := fmt.Sprintf(`
		You summarize Hacker News discussions about a web page. Write in %s.
		Return 3 ~ 5 sentences (60–200 words): what people think of the page, the main points of agreement
		and disagreement, and any notable corrections or links. Plain text, no headings.
		`, langOrDefault(language))
	user := fmt.Sprintf("Page: %s\n\n%s", pageURL, input)
	out, err := o.create(ctx, sys, user)
	if err != nil {
		slog.Error("openai: summarize discussion error", "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DigestInput flattens stories and comments into the prompt body.
func DigestInput(res model.AggregateResult) string {
	b := &strings.Builder{}
	n := 0
	addComment := func(c model.Comment, indent string) {
		if n >= maxDigestComments {
			return
		}
		text := render.CommentMarkdown(c.Text)
		text = render.Truncate(strings.Join(strings.Fields(text), " "), maxCommentRunes)
		fmt.Fprintf(b, "%s- %s (%d pts): %s\n", indent, c.Author, c.Points, text)
		n++
	}
	for _, s := range res.Stories {
		fmt.Fprintf(b, "Story: %s (%d points, %d comments)\n", s.Title, s.Points, s.NumComments)
		for _, c := range res.StoryComments[s.StoryID()] {
			addComment(c, "  ")
		}
	}
	if len(res.Comments) > 0 {
		b.WriteString("Other comments mentioning the page:\n")
		for _, c := range res.Comments {
			addComment(c, "  ")
		}
	}
	if len(res.Stories) == 0 && n == 0 {
		return ""
	}
	return b.String()
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}
