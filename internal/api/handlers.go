package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/promptdesk/chat-backend/internal/core"
)

type APIHandler struct {
	users    *core.UserService
	chat     *core.ChatService
	history  *core.HistoryService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewAPIHandler(users *core.UserService, chat *core.ChatService, history *core.HistoryService, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		users:    users,
		chat:     chat,
		history:  history,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// decodeBody decodes a JSON body into dst and runs struct validation.
// Pointer fields tagged required must be present but may be empty.
func (h *APIHandler) decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "database is ready"})
}

func (h *APIHandler) ChatQueryHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("message") {
		writeError(w, http.StatusUnprocessableEntity, "message query parameter is required")
		return
	}
	userID, err := strconv.ParseInt(query.Get("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "user_id query parameter must be an integer")
		return
	}

	resp, err := h.chat.Query(r.Context(), query.Get("message"), userID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("chat query failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type SaveHistoryRequest struct {
	UserID   *int64  `json:"user_id" validate:"required"`
	Message  *string `json:"message" validate:"required"`
	Response *string `json:"response" validate:"required"`
}

func (h *APIHandler) SaveHistoryHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveHistoryRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}

	conv, err := h.history.Save(r.Context(), *req.UserID, *req.Message, *req.Response)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", *req.UserID).Msg("saving history failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *APIHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "user_id must be an integer")
		return
	}

	history, err := h.history.ListByUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrHistoryNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("loading history failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, history)
}

type SignupRequest struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
	Prompt   *string `json:"prompt,omitempty"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.users.CreateUser(r.Context(), *req.Username, *req.Password, req.Prompt)
	if err != nil {
		if errors.Is(err, core.ErrUsernameTaken) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("username", *req.Username).Msg("signup failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "user_id must be an integer")
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("loading user failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}
