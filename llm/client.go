package llm

import (
	"context"
	"errors"
	"io"

	"github.com/definitelynotchirag/Fitlog/utils"
	openai "github.com/sashabaranov/go-openai"
)

// Generator is the contract the chat pipeline needs from the completion
// service: one-shot generation and incremental streaming. The production
// implementation talks to Groq; tests substitute a fake.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	// GenerateStream calls fn for every text delta and returns the full
	// response. A non-nil error from fn aborts the stream (the consumer
	// stopped pulling) and is returned as-is.
	GenerateStream(ctx context.Context, system, user string, fn func(delta string) error) (string, error)
}

type Client struct {
	api         *openai.Client
	model       string
	temperature float32
}

// NewClientFromEnv builds a client against Groq's OpenAI-compatible API.
// GROQ_API_KEY must be set; model and base URL are overridable.
func NewClientFromEnv() *Client {
	cfg := openai.DefaultConfig(utils.GetEnv("GROQ_API_KEY", ""))
	cfg.BaseURL = utils.GetEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1")

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       utils.GetEnv("GROQ_MODEL", "llama3-70b-8192"),
		temperature: 0.6,
	}
}

func (c *Client) messages(system, user string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})
	return msgs
}

func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    c.messages(system, user),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) GenerateStream(ctx context.Context, system, user string, fn func(delta string) error) (string, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    c.messages(system, user),
		Stream:      true,
	})
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var full string
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return full, nil
		}
		if err != nil {
			return full, err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full += delta
		if err := fn(delta); err != nil {
			return full, err
		}
	}
}
