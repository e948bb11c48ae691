package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/yavens/rig-chat-client/internal/broadcast"
	"github.com/yavens/rig-chat-client/internal/config"
	"github.com/yavens/rig-chat-client/internal/conversation"
	"github.com/yavens/rig-chat-client/internal/observability"
	"github.com/yavens/rig-chat-client/internal/render"
)

// Coordinator is the streaming core as seen from the HTTP layer.
type Coordinator interface {
	SubmitPrompt(prompt string) error
	Snapshot() []conversation.Message
}

// Transcriber converts recorded audio into prompt text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type Server struct {
	cfg         config.Config
	coordinator Coordinator
	broadcaster *broadcast.Broadcaster
	renderer    *render.Renderer
	transcriber Transcriber
	metrics     *observability.Metrics
	upgrader    websocket.Upgrader
	static      http.Handler
}

func New(cfg config.Config, coordinator Coordinator, broadcaster *broadcast.Broadcaster, renderer *render.Renderer, transcriber Transcriber, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:         cfg,
		coordinator: coordinator,
		broadcaster: broadcaster,
		renderer:    renderer,
		transcriber: transcriber,
		metrics:     metrics,
		static:      newStaticHandler(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browsers may attach the push channel unless
				// explicitly opened up; a foreign page must not be able to
				// observe the conversation.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleIndex)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/prompt", s.handlePrompt)
	r.Get("/api/connect", s.handleConnect)
	r.Get("/api/recording", s.handleRecordingWidget)
	r.Post("/api/recording", s.handleRecording)

	// Generated images land on disk next to the embedded assets, so they get
	// their own more specific file server.
	r.Handle("/static/temp/images/*",
		http.StripPrefix("/static/temp/images/", http.FileServer(http.Dir(s.cfg.ImageDir))))
	r.Handle("/static/*", http.StripPrefix("/static/", s.static))

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := s.renderer.Index(s.coordinator.Snapshot())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"provider": s.cfg.BackendProvider,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}
	prompt := r.PostFormValue("prompt")
	if err := s.coordinator.SubmitPrompt(prompt); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_prompt", err.Error())
		return
	}
	// The reply streams over the push channel; the POST itself has nothing to
	// say.
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleRecordingWidget(w http.ResponseWriter, _ *http.Request) {
	widget, err := s.renderer.Recording()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(widget))
}

func (s *Server) handleRecording(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}

	// The recorder posts the audio as a JSON array of bytes in the data field.
	var audio []byte
	if err := json.Unmarshal([]byte(r.PostFormValue("data")), &audio); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_audio", err.Error())
		return
	}

	text, err := s.transcriber.Transcribe(r.Context(), audio)
	if err != nil {
		respondError(w, http.StatusBadGateway, "transcription_failed", err.Error())
		return
	}

	filled, err := s.renderer.FilledPrompt(text)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(filled))
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
