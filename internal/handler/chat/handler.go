package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pcheng/weather-qna/backend/internal/middleware"
	chatstore "github.com/pcheng/weather-qna/backend/internal/service/chat"
	"github.com/pcheng/weather-qna/backend/internal/service/qa"
	"github.com/pcheng/weather-qna/backend/pkg/utils"
)

// Handler exposes the question-answering endpoints.
type Handler struct {
	qaSvc *qa.Service
}

// New creates the chat handler.
func New(qaSvc *qa.Service) *Handler {
	return &Handler{qaSvc: qaSvc}
}

// RegisterRoutes mounts the chat routes. The router must run these behind
// the session middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/ask/", h.handleAsk)
	r.Get("/chat/conversations/", h.handleListConversations)
	r.Get("/chat/conversations/{conversationID}/", h.handleConversationDetail)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var payload struct {
		Question       string `json:"question"`
		ConversationID *int64 `json:"conversation_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.qaSvc.Ask(r.Context(), user.ID, payload.Question, payload.ConversationID)
	if err != nil {
		switch {
		case errors.Is(err, qa.ErrEmptyQuestion):
			utils.RespondError(w, http.StatusBadRequest, "question must not be empty")
		case errors.Is(err, chatstore.ErrConversationNotFound):
			utils.RespondError(w, http.StatusNotFound, "Conversation not found")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to answer question")
		}
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	utils.RespondJSON(w, status, result)
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	summaries, err := h.qaSvc.Conversations(r.Context(), user.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	utils.RespondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleConversationDetail(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "conversationID"), 10, 64)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Conversation not found")
		return
	}

	conv, err := h.qaSvc.Conversation(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, chatstore.ErrConversationNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	utils.RespondJSON(w, http.StatusOK, conv)
}
