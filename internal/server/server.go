package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"travel-planner-backend/internal/chat"
	"travel-planner-backend/internal/config"
	"travel-planner-backend/internal/types"
)

const serviceName = "Travel Planning Chatbot API"

type Server struct {
	router *chi.Mux
	chat   *chat.Service
	cfg    config.Config
	log    *zap.Logger
}

func NewServer(cfg config.Config, svc *chat.Service, log *zap.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Session-Id"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router: r,
		chat:   svc,
		cfg:    cfg,
		log:    log.Named("server"),
	}
	r.Use(s.logRequests)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/chat", s.handleChat)
	s.router.Post("/api/clear", s.handleClear)
	// Session introspection
	s.router.Get("/api/sessions", s.handleSessionCount)
	s.router.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.handleSessionInfo)
		r.Delete("/", s.handleSessionDelete)
		r.Put("/preferences", s.handleSavePreference)
		r.Get("/preferences/{key}", s.handleGetPreference)
		r.Patch("/context", s.handleMergeContext)
		r.Get("/context", s.handleGetContext)
	})
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, types.HealthResponse{Status: "healthy", Service: serviceName})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	sid := strings.TrimSpace(req.SessionID)
	if sid == "" {
		sid = s.getOrCreateSessionID(r, w)
	}

	reply, err := s.chat.Send(r.Context(), req.Message, sid)
	if err != nil {
		s.log.Error("chat failed", zap.String("session_id", sid), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, types.DetailResponse{
			Detail: "Error processing message: " + err.Error(),
		})
		return
	}
	w.Header().Set("X-Session-Id", sid)
	s.writeJSON(w, http.StatusOK, types.ChatResponse{Response: reply, SessionID: sid})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req types.ClearRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	sid := strings.TrimSpace(req.SessionID)
	if sid == "" {
		sid = getSessionID(r)
	}
	if err := s.chat.Clear(sid); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, types.StatusResponse{Status: "success", Message: "Conversation cleared"})
}

func (s *Server) handleSessionCount(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, types.SessionCount{Count: s.chat.Count()})
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.chat.Info(chi.URLParam(r, "id"))
	if errors.Is(err, chat.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, types.SessionInfo{
		SessionID:    info.SessionID,
		MessageCount: info.MessageCount,
		CreatedAt:    info.CreatedAt,
		LastUpdated:  info.LastUpdated,
	})
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted := s.chat.Delete(id)
	if sid, err := GetSessionCookie(r); err == nil && sid == id {
		ClearSessionCookie(w)
	}
	s.writeJSON(w, http.StatusOK, types.DeleteResponse{Deleted: deleted})
}

func (s *Server) handleSavePreference(w http.ResponseWriter, r *http.Request) {
	var req types.Preference
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.chat.SavePreference(chi.URLParam(r, "id"), req.Key, req.Value); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.writeJSON(w, http.StatusOK, types.Preference{
		Key:   key,
		Value: s.chat.Preference(chi.URLParam(r, "id"), key),
	})
}

func (s *Server) handleMergeContext(w http.ResponseWriter, r *http.Request) {
	var partial map[string]any
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		s.writeError(w, http.StatusBadRequest, "context must be a JSON object")
		return
	}
	s.writeJSON(w, http.StatusOK, s.chat.MergeContext(chi.URLParam(r, "id"), partial))
}

func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.chat.Context(chi.URLParam(r, "id")))
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// getSessionID retrieves the session ID from cookie, header or query parameter
func getSessionID(r *http.Request) string {
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	return r.URL.Query().Get("sessionId")
}

// getOrCreateSessionID falls back to a fresh uuid and sets the cookie for it.
func (s *Server) getOrCreateSessionID(r *http.Request, w http.ResponseWriter) string {
	sid := getSessionID(r)
	if sid == "" {
		sid = uuid.NewString()
		s.log.Debug("creating session", zap.String("session_id", sid), zap.String("path", r.URL.Path))
		SetSessionCookie(w, r, sid)
	}
	return sid
}
