package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/BetterCallFirewall/SecurityCenter/internal/config"
	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
	"github.com/BetterCallFirewall/SecurityCenter/internal/storage"
	"github.com/BetterCallFirewall/SecurityCenter/internal/subscription"
	"github.com/BetterCallFirewall/SecurityCenter/internal/websocket"
	"golang.org/x/time/rate"
)

// HeaderUserID carries the authenticated user id set by the frontend
const HeaderUserID = "X-User-ID"

// HeaderProgressChannel names the websocket channel (/ws?channel=) that
// receives the progress events of this analysis
const HeaderProgressChannel = "X-Progress-Channel"

// Analyzer is the analysis surface exposed over HTTP
type Analyzer interface {
	PerformAnalysis(ctx context.Context, req models.AnalysisRequest, isPremium bool) *models.AnalysisResult
	AskAssistant(ctx context.Context, in models.GeneralQueryInput) string
}

type Server struct {
	config   config.WebConfig
	analyzer Analyzer
	storage  storage.Store
	resolver subscription.Resolver
	hub      *websocket.Hub
	limiter  *rate.Limiter
	server   *http.Server
}

// NewServer wires the API. resolver and hub may be nil.
func NewServer(cfg config.WebConfig, analyzer Analyzer, store storage.Store, resolver subscription.Resolver, hub *websocket.Hub) *Server {
	s := &Server{
		config:   cfg,
		analyzer: analyzer,
		storage:  store,
		resolver: resolver,
		hub:      hub,
		limiter:  newLimiter(cfg.RateLimit, cfg.RateBurst),
	}
	s.server = &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		// analyses run for minutes
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
	}
	return s
}

// Handler returns the routed API with middlewares applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Analysis
	mux.HandleFunc("POST /api/analyze", RateLimit(s.limiter, s.handleAnalyze))
	mux.HandleFunc("POST /api/assistant", s.handleAssistant)
	mux.HandleFunc("POST /api/export", s.handleExport)

	// History
	mux.HandleFunc("GET /api/analyses", s.handleListAnalyses)
	mux.HandleFunc("GET /api/analyses/{id}", s.handleGetAnalysis)
	mux.HandleFunc("GET /api/analyses/{id}/export", s.handleExportAnalysis)

	// JSON schemas of the request/response types
	mux.HandleFunc("GET /api/schema/{name}", s.handleSchema)

	// WebSocket endpoint для live-обновлений
	if s.hub != nil {
		mux.HandleFunc("/ws", s.hub.ServeWS)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "security-center-api",
		})
	})

	return CORS(Logging(mux))
}

func (s *Server) Start() error {
	log.Printf("📊 API server listening on %s", s.config.ListenAddr)
	log.Println("📡 Endpoints:")
	log.Println("   POST /api/analyze              - Run a security analysis")
	log.Println("   POST /api/assistant            - Ask the security assistant")
	log.Println("   POST /api/export?format=       - Export findings (json, markdown)")
	log.Println("   GET  /api/analyses             - Caller's analysis history (X-User-ID)")
	log.Println("   GET  /api/analyses/{id}        - Stored analysis")
	log.Println("   GET  /api/analyses/{id}/export - Export stored findings")
	log.Println("   GET  /api/schema/{name}        - JSON schema of API types")
	log.Println("   WS   /ws?channel=              - Live analysis progress")
	log.Println("   GET  /health                   - Health check")

	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
