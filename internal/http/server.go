package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moodjournal/internal/log"
	"moodjournal/internal/report"
	"moodjournal/internal/services"
)

// Options tunes a Server. Zero values pick the defaults.
type Options struct {
	ChartWindow int
	// RateLimit is the number of mutating requests a client may send per minute.
	RateLimit int
	Logger    *log.Logger
}

type Server struct {
	http.Server
	journal     *services.JournalService
	chartWindow int
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	logger      *log.Logger
	startedAt   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, journal *services.JournalService, opts Options) *Server {
	if opts.ChartWindow <= 0 {
		opts.ChartWindow = report.DefaultWindow
	}
	if opts.Logger == nil {
		opts.Logger = log.FromSlog(nil, log.ComponentHTTP)
	}

	mux := http.NewServeMux()
	s := &Server{
		journal:     journal,
		chartWindow: opts.ChartWindow,
		rateLimiter: newRateLimiter(opts.RateLimit),
		metrics:     &securityMetrics{},
		logger:      opts.Logger.WithComponent(log.ComponentHTTP),
		startedAt:   time.Now(),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler: log.Middleware(s.logger)(
			s.withSecurityHeaders(log.RequestIDMiddleware(requestIDOf)(mux)),
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/moods", s.handleMoods)
	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("DELETE /api/entries", s.handleClearEntries)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)

	mux.HandleFunc("GET /api/reports", s.handleReports)
	mux.HandleFunc("GET /api/reports/summary", s.handleSummary)
	mux.HandleFunc("GET /api/reports/chart", s.handleChart)
	mux.HandleFunc("GET /api/reports/distribution", s.handleDistribution)

	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting of mutating
// requests and request logging.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		r.Header.Set(requestIDHeader, requestID)

		ctx := r.Context()
		logger := log.FromContext(ctx).With(log.FieldRequestID, requestID)

		logger.DebugContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
		}

		w.Header().Set(requestIDHeader, requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		if (r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	})
}

const requestIDHeader = "X-Request-ID"

// requestIDOf reads the ID withSecurityHeaders stamped on the request.
func requestIDOf(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
