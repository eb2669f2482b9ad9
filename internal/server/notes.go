package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ppiankov/newsmania/internal/model"
	"github.com/ppiankov/newsmania/internal/notes"
)

const userHeader = "X-User-ID"

type userKey struct{}

// requireUser rejects requests without a user header
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(userHeader)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "Missing "+userHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, userID)))
	})
}

func userFrom(r *http.Request) string {
	userID, _ := r.Context().Value(userKey{}).(string)
	return userID
}

// writeStoreError maps store errors onto HTTP statuses
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notes.ErrNotFound):
		writeError(w, http.StatusNotFound, "Note not found")
	case errors.Is(err, notes.ErrInvalidNote):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("note store failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to access notes")
	}
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notes == nil {
		unavailable(w, "notes")
		return
	}
	q := r.URL.Query()
	list, err := s.deps.Notes.List(r.Context(), userFrom(r), model.NoteFilter{
		Topic:     q.Get("topic"),
		ArticleID: q.Get("articleId"),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notes == nil {
		unavailable(w, "notes")
		return
	}
	var note model.Note
	if err := decodeJSON(r, &note); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	note.UserID = userFrom(r)

	created, err := s.deps.Notes.Create(r.Context(), note)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notes == nil {
		unavailable(w, "notes")
		return
	}
	note, err := s.deps.Notes.Get(r.Context(), userFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notes == nil {
		unavailable(w, "notes")
		return
	}
	var update notes.Update
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	note, err := s.deps.Notes.Update(r.Context(), userFrom(r), chi.URLParam(r, "id"), update)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notes == nil {
		unavailable(w, "notes")
		return
	}
	if err := s.deps.Notes.Delete(r.Context(), userFrom(r), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notes == nil {
		unavailable(w, "notes")
		return
	}
	folders, err := s.deps.Notes.ListFolders(r.Context(), userFrom(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notes == nil {
		unavailable(w, "notes")
		return
	}
	var folder model.NoteFolder
	if err := decodeJSON(r, &folder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	folder.UserID = userFrom(r)

	created, err := s.deps.Notes.CreateFolder(r.Context(), folder)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleAddToFolder(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notes == nil {
		unavailable(w, "notes")
		return
	}
	var req struct {
		NoteID string `json:"noteId"`
	}
	if err := decodeJSON(r, &req); err != nil || req.NoteID == "" {
		writeError(w, http.StatusBadRequest, "noteId is required")
		return
	}
	if err := s.deps.Notes.AddToFolder(r.Context(), userFrom(r), chi.URLParam(r, "id"), req.NoteID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
