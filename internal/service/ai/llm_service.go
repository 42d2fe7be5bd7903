// Package ai wraps the optional LLM capability behind a single Complete
// call. Callers must treat every failure here as recoverable.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/pcheng/weather-qna/backend/internal/analysis/forecast"
	"github.com/pcheng/weather-qna/backend/internal/config"
	"github.com/pcheng/weather-qna/backend/internal/model/chat"
)

// ErrUpstreamUnavailable marks any failure of the remote model. The
// orchestrator answers from the simulated forecast instead of surfacing it.
var ErrUpstreamUnavailable = errors.New("llm upstream unavailable")

const systemPrompt = "You are a helpful weather assistant. You have access to a trusted internal " +
	"weather tool that returns simulated but consistent forecasts. " +
	"Use the provided tool output to craft a concise, clear answer."

// historyLimit caps how many prior messages accompany a completion.
const historyLimit = 10

// Service runs weather answers through a compiled eino chain.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
	log   zerolog.Logger
}

// NewService builds the chat model and compiles the prompt chain once.
func NewService(ctx context.Context, cfg config.AIConfig, log zerolog.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chain: runnable,
		log:   log.With().Str("component", "ai").Logger(),
	}, nil
}

// Complete generates an answer grounded in the forecast tool result. Any
// chain failure, including context timeout, comes back as
// ErrUpstreamUnavailable.
func (s *Service) Complete(ctx context.Context, history []chat.Message, question string, fc forecast.Forecast) (string, error) {
	input := map[string]any{
		"system":  systemPrompt,
		"history": buildHistory(history),
		"query":   buildQuery(question, fc),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	answer := response.Content
	if answer == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstreamUnavailable)
	}

	s.log.Debug().Int("history", len(history)).Int("length", len(answer)).Msg("completion generated")
	return answer, nil
}

// buildQuery packs the question and the simulated tool output into the user
// turn, mirroring the tool-result contract the assistant is prompted for.
func buildQuery(question string, fc forecast.Forecast) string {
	return fmt.Sprintf(
		"User question: %s\n"+
			"Tool data (simulated weather tool): location=%s when=%s condition=%s high=%d°C low=%d°C advice=%s\n"+
			"Write a friendly, 2-3 sentence answer. Keep it factual and avoid mentioning that it's simulated.",
		question, fc.Location, fc.When, fc.Condition, fc.High, fc.Low, fc.Advice,
	)
}

func buildHistory(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
