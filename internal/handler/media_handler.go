package handler

import (
	"net/http"
	"path/filepath"

	"notemap-server/internal/media"
	"notemap-server/pkg/response"

	"github.com/gorilla/mux"
)

// 25 MB, matching the largest media the mobile clients produce.
const maxUploadBytes = 25 << 20

// MediaHandler stages media pushed by clients. Staged files are referenced
// by local refs until a note save uploads them to blob storage.
type MediaHandler struct {
	staging  *media.StagingStore
	recorder *media.Recorder
}

func NewMediaHandler(staging *media.StagingStore, recorder *media.Recorder) *MediaHandler {
	return &MediaHandler{
		staging:  staging,
		recorder: recorder,
	}
}

func (h *MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	h.stageUpload(w, r)
}

func (h *MediaHandler) UploadVoice(w http.ResponseWriter, r *http.Request) {
	h.stageUpload(w, r)
}

func (h *MediaHandler) stageUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "Invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	ref, err := h.staging.Stage(file, filepath.Ext(header.Filename))
	if err != nil {
		response.InternalError(w, "Failed to stage media")
		return
	}

	response.Created(w, map[string]string{"ref": ref.String()})
}

func (h *MediaHandler) StartRecording(w http.ResponseWriter, r *http.Request) {
	session, err := h.recorder.Start()
	if err != nil {
		response.InternalError(w, "Failed to start recording session")
		return
	}

	response.Created(w, map[string]string{"session_id": session.ID})
}

func (h *MediaHandler) AppendRecording(w http.ResponseWriter, r *http.Request) {
	session, err := h.recorder.Session(mux.Vars(r)["id"])
	if err != nil {
		response.NotFound(w, "Unknown recording session")
		return
	}

	buf := make([]byte, 32<<10)
	for {
		n, readErr := r.Body.Read(buf)
		if n > 0 {
			if _, err := session.Write(buf[:n]); err != nil {
				response.InternalError(w, "Failed to append audio chunk")
				return
			}
		}
		if readErr != nil {
			break
		}
	}

	response.Success(w, map[string]string{"session_id": session.ID})
}

func (h *MediaHandler) StopRecording(w http.ResponseWriter, r *http.Request) {
	session, err := h.recorder.Session(mux.Vars(r)["id"])
	if err != nil {
		response.NotFound(w, "Unknown recording session")
		return
	}

	ref, err := h.recorder.Stop(session)
	if err != nil {
		response.InternalError(w, "Failed to finalize recording")
		return
	}

	response.Success(w, map[string]string{"ref": ref.String()})
}

func (h *MediaHandler) DiscardRecording(w http.ResponseWriter, r *http.Request) {
	session, err := h.recorder.Session(mux.Vars(r)["id"])
	if err != nil {
		response.NotFound(w, "Unknown recording session")
		return
	}

	if err := h.recorder.Discard(session); err != nil {
		response.InternalError(w, "Failed to discard recording")
		return
	}

	response.Success(w, map[string]string{"message": "Recording discarded"})
}
