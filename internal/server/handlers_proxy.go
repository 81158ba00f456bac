package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const (
	proxyTypeWordExplanation     = "wordExplanation"
	proxyTypeSentenceTranslation = "sentenceTranslation"
)

type aiProxyRequest struct {
	Type          string `json:"type"`
	Sentence      string `json:"sentence"`
	Word          string `json:"word"`
	TargetLang    string `json:"targetLang"`
	InterfaceLang string `json:"interfaceLang"`
}

// /api/gemini is a pass-through proxy to the generative/translation APIs so the
// API keys never reach the client. Upstream failures propagate with their
// original status code.
func (s *Server) handleAIProxy(w http.ResponseWriter, r *http.Request, userID string) {
	_ = userID
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r) {
		return
	}
	var req aiProxyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Type {
	case proxyTypeWordExplanation:
		if s.explainer == nil {
			writeError(w, http.StatusInternalServerError, "explanation service not configured")
			return
		}
		if strings.TrimSpace(req.Word) == "" || strings.TrimSpace(req.Sentence) == "" {
			writeError(w, http.StatusBadRequest, "word and sentence are required")
			return
		}
		text, err := s.explainer.ExplainWord(r.Context(), req.Sentence, req.Word, req.TargetLang, req.InterfaceLang)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	case proxyTypeSentenceTranslation:
		if s.translator == nil {
			writeError(w, http.StatusInternalServerError, "translation service not configured")
			return
		}
		if strings.TrimSpace(req.Sentence) == "" {
			writeError(w, http.StatusBadRequest, "sentence is required")
			return
		}
		text, err := s.translator.TranslateSentence(r.Context(), req.Sentence, req.TargetLang)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	default:
		writeError(w, http.StatusBadRequest, "Invalid type")
	}
}

// /api/speech-token exchanges the server-held subscription key for a
// short-lived token the browser can use directly.
func (s *Server) handleSpeechToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r) {
		return
	}
	if s.speechTokens == nil {
		writeError(w, http.StatusInternalServerError, "speech service not configured")
		return
	}
	token, err := s.speechTokens.IssueToken(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue speech token")
		return
	}
	writeJSON(w, http.StatusOK, token)
}
