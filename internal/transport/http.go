package transport

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/avvvet/concierge-intent/internal/config"
	"github.com/avvvet/concierge-intent/internal/handlers"
	xlog "github.com/avvvet/concierge-intent/internal/log"
	"github.com/avvvet/concierge-intent/internal/metrics"
	"github.com/avvvet/concierge-intent/internal/models"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 64 << 10
)

//go:embed page.html
var pageHTML string

var pageTemplate = template.Must(template.New("chat").Parse(pageHTML))

// ChatHandler is the pipeline both transports call into
type ChatHandler interface {
	Handle(ctx context.Context, message string, params models.RequestParams) (*models.ChatResponse, error)
}

type HTTPServer struct {
	config  *config.Config
	handler ChatHandler
	router  chi.Router
	server  *http.Server
	logger  zerolog.Logger
}

func NewHTTPServer(cfg *config.Config, handler ChatHandler, logger zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		config:  cfg,
		handler: handler,
		logger:  logger,
	}
	s.router = s.routes()
	s.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware())
	r.Use(xlog.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/chat", s.handlePage)

	chat := r.With()
	if s.config.RateLimitPerMinute > 0 {
		chat = r.With(httprate.Limit(
			s.config.RateLimitPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests, models.ErrorResponse{Error: "rate_limit_exceeded"})
			}),
		))
	}
	chat.Post("/chat", s.handleChat)

	return r
}

// requestID propagates or assigns a request id for logs and transcripts
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(xlog.ContextWithRequestID(r.Context(), id)))
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, struct{ Hotel string }{s.config.HotelName}); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render chat page")
	}
}

func (s *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger := xlog.WithContext(r.Context(), s.logger)
		logger.Warn().Err(err).Msg("Invalid chat payload")
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: models.ErrorInvalidRequest})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	resp, err := s.handler.Handle(ctx, req.Message, req.Params())
	if err != nil {
		status, body := errorResponse(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// errorResponse maps a pipeline error to its status and body. Details stay in the logs.
func errorResponse(err error) (int, models.ErrorResponse) {
	code := handlers.ErrorCode(err)
	switch code {
	case models.ErrorMessageRequired:
		return http.StatusBadRequest, models.ErrorResponse{Error: code}
	case models.ErrorCredentialsMissing:
		return http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   code,
			Message: "Completion service credentials are not configured.",
		}
	case models.ErrorEmptyModelResponse:
		return http.StatusInternalServerError, models.ErrorResponse{Error: code}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{Error: models.ErrorInternal}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Start serves until Shutdown is called
func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.config.HTTPAddr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
