// Package qa orchestrates ask turns: resolve the conversation, derive the
// simulated forecast, answer (LLM when available, deterministic template
// otherwise) and persist the user/assistant pair.
package qa

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pcheng/weather-qna/backend/internal/analysis/forecast"
	"github.com/pcheng/weather-qna/backend/internal/metrics"
	chatmodel "github.com/pcheng/weather-qna/backend/internal/model/chat"
	chatstore "github.com/pcheng/weather-qna/backend/internal/service/chat"
)

// ErrEmptyQuestion rejects blank questions before any side effect.
var ErrEmptyQuestion = errors.New("question must not be empty")

// titleLimit truncates the opening question into the conversation title.
const titleLimit = 50

// Responder is the injected LLM capability. A nil Responder selects
// fallback-only answering; a failing one degrades to it per turn.
type Responder interface {
	Complete(ctx context.Context, history []chatmodel.Message, question string, fc forecast.Forecast) (string, error)
}

// Service is the question-answering orchestrator.
type Service struct {
	store      chatstore.Store
	responder  Responder
	llmTimeout time.Duration
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewService wires the orchestrator. responder may be nil.
func NewService(store chatstore.Store, responder Responder, llmTimeout time.Duration, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		store:      store,
		responder:  responder,
		llmTimeout: llmTimeout,
		metrics:    m,
		log:        log.With().Str("component", "qa").Logger(),
	}
}

// AskResult is the outcome of one completed ask turn.
type AskResult struct {
	ConversationID int64  `json:"conversation_id"`
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	Created        bool   `json:"-"`
}

// Ask runs one question/answer turn for owner. When conversationID is nil a
// new conversation is created; otherwise the turn is appended to the
// existing one. A turn either fully commits both messages or fails with
// nothing persisted.
func (s *Service) Ask(ctx context.Context, owner, question string, conversationID *int64) (AskResult, error) {
	started := time.Now()

	question = strings.TrimSpace(question)
	if question == "" {
		return AskResult{}, ErrEmptyQuestion
	}

	var history []chatmodel.Message
	var convID int64
	created := conversationID == nil
	if !created {
		conv, err := s.store.Get(ctx, *conversationID, owner)
		if err != nil {
			return AskResult{}, err
		}
		convID = conv.ID
		history = conv.Messages
	}

	fc := forecast.Generate(question)
	answer, mode := s.answer(ctx, history, question, fc)

	if created {
		conv, err := s.store.Create(ctx, owner, titleFor(question))
		if err != nil {
			return AskResult{}, err
		}
		convID = conv.ID
		if s.metrics != nil {
			s.metrics.ConversationsCreatedTotal.Inc()
		}
	}

	userMsg := chatmodel.Message{Role: chatmodel.RoleUser, Content: question}
	assistantMsg := chatmodel.Message{Role: chatmodel.RoleAssistant, Content: answer}
	if err := s.store.AppendTurn(ctx, convID, userMsg, assistantMsg); err != nil {
		return AskResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordAsk(mode, time.Since(started))
	}
	s.log.Info().
		Int64("conversation", convID).
		Str("mode", mode).
		Bool("created", created).
		Msg("ask turn completed")

	return AskResult{
		ConversationID: convID,
		Question:       question,
		Answer:         answer,
		Created:        created,
	}, nil
}

// answer produces the assistant text and the mode that produced it. The LLM
// gets a single bounded attempt; every failure resolves to the forecast
// template.
func (s *Service) answer(ctx context.Context, history []chatmodel.Message, question string, fc forecast.Forecast) (string, string) {
	if s.responder == nil {
		return fc.Summary(), "fallback"
	}

	llmCtx := ctx
	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		llmCtx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	text, err := s.responder.Complete(llmCtx, history, question, fc)
	if err != nil {
		if s.metrics != nil {
			s.metrics.LLMFailuresTotal.Inc()
		}
		s.log.Warn().Err(err).Msg("llm attempt failed, using fallback answer")
		return fc.Summary(), "fallback"
	}
	return strings.TrimSpace(text), "llm"
}

// Conversations lists the owner's conversation summaries, newest first.
func (s *Service) Conversations(ctx context.Context, owner string) ([]chatmodel.Summary, error) {
	return s.store.List(ctx, owner)
}

// Conversation loads one owned conversation with its full message sequence.
func (s *Service) Conversation(ctx context.Context, owner string, id int64) (chatmodel.Conversation, error) {
	return s.store.Get(ctx, id, owner)
}

func titleFor(question string) string {
	runes := []rune(question)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit])
	}
	return question
}
