// Package api exposes the public portal endpoints and the admin API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kisangi1/The-SOL-NEW/internal/config"
	"github.com/Kisangi1/The-SOL-NEW/internal/database"
	"github.com/Kisangi1/The-SOL-NEW/internal/domain"
	"github.com/Kisangi1/The-SOL-NEW/internal/media"
	"github.com/Kisangi1/The-SOL-NEW/internal/metrics"
	"github.com/Kisangi1/The-SOL-NEW/internal/models"
	"github.com/Kisangi1/The-SOL-NEW/internal/service"
)

// HTTPServer wires the portal handlers: public reads and submissions,
// admin mutations behind API-key auth, blog mutations behind a token.
type HTTPServer struct {
	cfg         config.Config
	bookings    *service.BookingService
	catalog     *service.CatalogService
	subscribers *service.SubscriberService
	blogs       domain.BlogRepository
	uploader    media.Uploader
	server      *http.Server
	auth        *HTTPAuth
	logger      *zerolog.Logger
}

func NewHTTPServer(
	cfg config.Config,
	bookings *service.BookingService,
	catalog *service.CatalogService,
	subscribers *service.SubscriberService,
	blogs domain.BlogRepository,
	uploader media.Uploader,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:         cfg,
		bookings:    bookings,
		catalog:     catalog,
		subscribers: subscribers,
		blogs:       blogs,
		uploader:    uploader,
		auth:        NewHTTPAuth(cfg.API),
		logger:      logger,
	}

	mux := http.NewServeMux()

	// Публичные эндпоинты портала
	mux.HandleFunc("/api/v1/bookings", srv.handleSubmitBooking)
	mux.HandleFunc("/api/v1/subscribe", srv.handleSubscribe)
	mux.HandleFunc("/api/v1/destinations", srv.handleDestinations)
	mux.HandleFunc("/api/v1/destinations/", srv.handleDestinationByID)
	mux.HandleFunc("/api/v1/packages", srv.handlePackages)
	mux.HandleFunc("/api/v1/packages/", srv.handlePackageByID)
	mux.HandleFunc("/api/v1/blogs", srv.handleBlogs)
	mux.HandleFunc("/api/v1/blogs/", srv.handleBlogByID)
	mux.HandleFunc("/healthz", srv.handleHealth)

	// Админка за API-ключами
	admin := http.NewServeMux()
	admin.HandleFunc("/api/v1/admin/bookings", srv.handleAdminBookings)
	admin.HandleFunc("/api/v1/admin/bookings/export", srv.handleExportBookings)
	admin.HandleFunc("/api/v1/admin/bookings/", srv.handleAdminBookingByID)
	admin.HandleFunc("/api/v1/admin/destinations", srv.handleAdminDestinations)
	admin.HandleFunc("/api/v1/admin/destinations/", srv.handleAdminDestinationByID)
	admin.HandleFunc("/api/v1/admin/packages", srv.handleAdminPackages)
	admin.HandleFunc("/api/v1/admin/packages/", srv.handleAdminPackageByID)
	admin.HandleFunc("/api/v1/admin/subscribers", srv.handleAdminSubscribers)
	mux.Handle("/api/v1/admin/", srv.auth.Wrap(admin))

	handler := srv.loggingMiddleware(mux)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, database.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrDuplicateSubscriber):
		writeError(w, http.StatusConflict, "email is already subscribed")
	case errors.Is(err, database.ErrInvalidTransition), errors.Is(err, database.ErrStatusConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// pathTail returns the path segment after prefix, rejecting nested paths.
func pathTail(path, prefix string) (string, bool) {
	tail := strings.TrimPrefix(path, prefix)
	tail = strings.TrimSpace(tail)
	if tail == "" || strings.Contains(tail, "/") {
		return "", false
	}
	return tail, true
}

func totalPages(total, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func queryPage(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = models.DefaultPageSize
	}
	return page, pageSize
}
