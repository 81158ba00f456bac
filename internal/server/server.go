package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hughgramel/readfluent/internal/app"
	"github.com/hughgramel/readfluent/internal/epub"
	"github.com/hughgramel/readfluent/internal/ratelimit"
	"github.com/hughgramel/readfluent/internal/util"
	"github.com/hughgramel/readfluent/pkg/ai"
)

// SubjectVerifier validates a bearer token and returns the user ID.
type SubjectVerifier interface {
	VerifySubject(token string) (string, error)
}

// WordExplainer produces word-nuance explanations.
type WordExplainer interface {
	ExplainWord(ctx context.Context, sentence, word, targetLang, interfaceLang string) (string, error)
}

// SentenceTranslator translates sentences.
type SentenceTranslator interface {
	TranslateSentence(ctx context.Context, sentence, targetLang string) (string, error)
}

// SpeechTokenIssuer exchanges the server-held key for short-lived tokens.
type SpeechTokenIssuer interface {
	IssueToken(ctx context.Context) (ai.SpeechToken, error)
}

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	TokenVerifier  SubjectVerifier
	Explainer      WordExplainer
	Translator     SentenceTranslator
	SpeechTokens   SpeechTokenIssuer
	ProxyLimiter   *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
	MaxUploadBytes int64
}

// Server exposes the HTTP API for the reading application.
type Server struct {
	app            *app.App
	tokenVerifier  SubjectVerifier
	explainer      WordExplainer
	translator     SentenceTranslator
	speechTokens   SpeechTokenIssuer
	proxyLimiter   *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
	mux            *http.ServeMux
	maxUploadBytes int64
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("app required")
	}
	if cfg.TokenVerifier == nil {
		return nil, fmt.Errorf("token verifier required")
	}
	s := &Server{
		app:            cfg.App,
		tokenVerifier:  cfg.TokenVerifier,
		explainer:      cfg.Explainer,
		translator:     cfg.Translator,
		speechTokens:   cfg.SpeechTokens,
		proxyLimiter:   cfg.ProxyLimiter,
		trustedProxies: cfg.TrustedProxies,
		mux:            http.NewServeMux(),
		maxUploadBytes: normalizeMaxBytes(cfg.MaxUploadBytes),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with the middleware chain applied.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestLogging(s.mux)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// library
	s.mux.Handle("/api/books", s.authenticated(s.handleBooks))
	s.mux.Handle("/api/books/", s.authenticated(s.handleBookByID))

	// word & sentence tracking
	s.mux.Handle("/api/words", s.authenticated(s.handleWords))
	s.mux.Handle("/api/words/", s.authenticated(s.handleWordByKey))
	s.mux.Handle("/api/sentences", s.authenticated(s.handleSentences))
	s.mux.Handle("/api/sentences/", s.authenticated(s.handleSentenceByID))

	// reading sessions & preferences
	s.mux.Handle("/api/sessions", s.authenticated(s.handleSessions))
	s.mux.Handle("/api/preferences", s.authenticated(s.handlePreferences))

	// external-service proxies
	s.mux.Handle("/api/gemini", s.authenticated(s.handleAIProxy))
	s.mux.HandleFunc("/api/speech-token", s.handleSpeechToken)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authHandler receives the authenticated user's ID explicitly; handlers never
// read identity from ambient state.
type authHandler func(http.ResponseWriter, *http.Request, string)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		userID, err := s.tokenVerifier.VerifySubject(token)
		if err != nil {
			slog.Warn("token rejected", "path", r.URL.Path, "err", err)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, userID)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request) bool {
	if s.proxyLimiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if s.proxyLimiter.Allow(r.Context(), key) {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(s.proxyLimiter.Window().Seconds())))
	writeError(w, http.StatusTooManyRequests, "too many requests")
	return false
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps application failures onto HTTP statuses, always as a
// structured {error} body rather than an unhandled fault.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, epub.ErrInvalidEPUB):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidWordType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		var upstream *ai.UpstreamError
		if errors.As(err, &upstream) {
			writeError(w, upstream.Status, upstream.Error())
			return
		}
		util.LoggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func normalizeMaxBytes(value int64) int64 {
	if value <= 0 {
		return 50 * 1024 * 1024
	}
	return value
}
