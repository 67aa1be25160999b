// Package assistant wraps the hosted generative-text API used by the health
// chatbot. A primary model is tried first; on failure the backup model is
// attempted once, and if both fail a static apology string is returned so the
// chat surface never produces a hard error.
package assistant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// UnavailableMessage is returned when both models fail.
const UnavailableMessage = "Sorry, the system is currently unavailable. Please try again later."

const systemPrompt = "You are a helpful health assistant for a telehealth " +
	"platform. Answer general health questions clearly and briefly, and " +
	"recommend consulting a doctor for anything requiring diagnosis."

// Config holds the assistant's API credentials and model names. The client is
// constructed once at process start and passed to handlers; there is no
// package-level model state.
type Config struct {
	APIKey      string
	Model       string
	BackupModel string
}

// CompletionAPI is the subset of the OpenAI client used by the assistant.
// Satisfied by *openai.Client.
type CompletionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client answers prompts with a primary-then-backup model fallback chain.
type Client struct {
	api         CompletionAPI
	model       string
	backupModel string
	logger      zerolog.Logger
}

// New constructs an assistant Client backed by the OpenAI API.
func New(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		api:         openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		backupModel: cfg.BackupModel,
		logger:      logger,
	}
}

// NewWithAPI constructs a Client over an explicit CompletionAPI.
func NewWithAPI(api CompletionAPI, cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		api:         api,
		model:       cfg.Model,
		backupModel: cfg.BackupModel,
		logger:      logger,
	}
}

// Generate answers the prompt. The primary model is tried first; on failure
// the backup model is attempted, and if both fail UnavailableMessage is
// returned. Generate never returns an error to the caller.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	text, err := c.complete(ctx, c.model, prompt)
	if err == nil {
		return text
	}
	c.logger.Warn().Err(err).Str("model", c.model).Msg("primary model failed, attempting backup")

	text, err = c.complete(ctx, c.backupModel, prompt)
	if err == nil {
		return text
	}
	c.logger.Error().Err(err).Str("model", c.backupModel).Msg("backup model also failed")

	return UnavailableMessage
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", model)
	}
	return resp.Choices[0].Message.Content, nil
}
