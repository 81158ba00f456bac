package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/hughgramel/readfluent/pkg/domain"
)

type setWordsRequest struct {
	Words []string        `json:"words"`
	Type  domain.WordType `json:"type"`
}

type setWordRequest struct {
	Type domain.WordType `json:"type"`
}

// /api/words
func (s *Server) handleWords(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		words, err := s.app.ListWords(userID)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"words": words})
	case http.MethodPut:
		var req setWordsRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(req.Words) == 0 {
			writeError(w, http.StatusBadRequest, "words is required")
			return
		}
		if err := s.app.SetWords(userID, req.Words, req.Type); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

// /api/words/{word}: the word itself is the record key, case-sensitive.
func (s *Server) handleWordByKey(w http.ResponseWriter, r *http.Request, userID string) {
	word := strings.TrimPrefix(r.URL.Path, "/api/words/")
	if word == "" || strings.Contains(word, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req setWordRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.app.SetWord(userID, word, req.Type); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := s.app.RemoveWord(userID, word); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

type addSentenceRequest struct {
	Text string `json:"text"`
}

// /api/sentences
func (s *Server) handleSentences(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		sentences, err := s.app.ListSentences(userID)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": sentences,
			"count": len(sentences),
		})
	case http.MethodPost:
		var req addSentenceRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}
		sentence, err := s.app.AddSentence(userID, req.Text)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, sentence)
	default:
		methodNotAllowed(w)
	}
}

// /api/sentences/{id}
func (s *Server) handleSentenceByID(w http.ResponseWriter, r *http.Request, userID string) {
	id := strings.TrimPrefix(r.URL.Path, "/api/sentences/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.app.RemoveSentence(userID, id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// /api/sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		sessions, err := s.app.ListReadingSessions(userID)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": sessions,
			"count": len(sessions),
		})
	case http.MethodPost:
		var sess domain.ReadingSession
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&sess); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		saved, err := s.app.AddReadingSession(userID, sess)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	default:
		methodNotAllowed(w)
	}
}

type savePreferencesRequest struct {
	Settings map[string]any `json:"settings"`
}

// /api/preferences
func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		prefs, err := s.app.GetPreferences(userID)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	case http.MethodPut:
		var req savePreferencesRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.app.SavePreferences(userID, req.Settings); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}
