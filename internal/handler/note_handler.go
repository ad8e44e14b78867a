package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"notemap-server/internal/domain"
	"notemap-server/internal/middleware"
	"notemap-server/internal/service"
	"notemap-server/pkg/response"

	"github.com/gorilla/mux"
)

type NoteHandler struct {
	service *service.NoteService
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	ownerID := middleware.GetUserID(r)

	note, err := h.service.Create(r.Context(), ownerID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create note")
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r)

	notes, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		response.InternalError(w, "Failed to list notes")
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	ownerID := middleware.GetUserID(r)

	note, err := h.service.GetByID(r.Context(), ownerID, noteID)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(w, "Note not found")
			return
		}
		response.InternalError(w, "Failed to fetch note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) GetByMark(w http.ResponseWriter, r *http.Request) {
	markKey := mux.Vars(r)["key"]
	if markKey == "" {
		response.BadRequest(w, "Mark key is required")
		return
	}

	ownerID := middleware.GetUserID(r)

	note, err := h.service.GetByMarkKey(r.Context(), ownerID, markKey)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(w, "Note not found")
			return
		}
		response.InternalError(w, "Failed to fetch note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	ownerID := middleware.GetUserID(r)

	note, err := h.service.Update(r.Context(), ownerID, noteID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(w, "Note not found")
			return
		}
		response.InternalError(w, "Failed to update note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	ownerID := middleware.GetUserID(r)
	deviceID := r.URL.Query().Get("device_id")

	cleanupErrs, err := h.service.Delete(r.Context(), ownerID, noteID, deviceID)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(w, "Note not found")
			return
		}
		response.InternalError(w, "Failed to delete note")
		return
	}

	response.Success(w, map[string]interface{}{
		"message":        "Note deleted successfully",
		"cleanup_errors": cleanupErrs,
	})
}
