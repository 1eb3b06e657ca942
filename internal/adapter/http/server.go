// Package http exposes the recommendation API plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/sparkpark/parking-recommender/internal/recommend"
)

// Recommender computes ranked parking recommendations.
type Recommender interface {
	Recommend(ctx context.Context, q recommend.Query) (*recommend.Response, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the recommendation, health, readiness, and metrics HTTP endpoints.
type Server struct {
	httpServer  *http.Server
	recommender Recommender
	logger      *slog.Logger
}

// NewServer creates an HTTP server with /recommend, /healthz, /readyz, and
// /metrics routes, wrapped in CORS for the cross-origin mobile client.
func NewServer(addr string, rec Recommender, ready ReadinessChecker, allowedOrigins []string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      corsHandler.Handler(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		recommender: rec,
		logger:      logger,
	}

	mux.HandleFunc("POST /recommend", s.handleRecommend)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// recommendRequest is the wire form of one query. time_of_day is optional
// and defaults to the server's current hour.
type recommendRequest struct {
	UserLat   *float64 `json:"user_lat"`
	UserLng   *float64 `json:"user_lng"`
	TimeOfDay *int     `json:"time_of_day"`
}

type userLocationJSON struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	TimeOfDay int     `json:"time_of_day"`
}

type recommendationJSON struct {
	Index         int      `json:"index"`
	Name          string   `json:"name"`
	Details       string   `json:"details,omitempty"`
	Address       string   `json:"address,omitempty"`
	Link          string   `json:"link,omitempty"`
	City          string   `json:"city,omitempty"`
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	DistanceKm    float64  `json:"distance_km"`
	OpenNow       int      `json:"open_now"`
	Opening       string   `json:"opening,omitempty"`
	Closing       string   `json:"closing,omitempty"`
	Guards        int      `json:"guards"`
	CCTVs         int      `json:"cctvs"`
	InitialRate   float64  `json:"initial_rate"`
	PWDDiscount   int      `json:"pwd_discount"`
	StreetParking int      `json:"street_parking"`
	Score         *float64 `json:"score"`
}

type recommendResponse struct {
	UserLocation      userLocationJSON     `json:"user_location"`
	GeneratedAt       time.Time            `json:"generated_at"`
	SkippedFacilities int                  `json:"skipped_facilities"`
	Recommendations   []recommendationJSON `json:"recommendations"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserLat == nil || req.UserLng == nil {
		writeError(w, http.StatusBadRequest, "user_lat and user_lng are required")
		return
	}

	hour := recommend.HourNow
	if req.TimeOfDay != nil {
		hour = *req.TimeOfDay
	}

	topK := 0
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			topK = n
		}
	}

	resp, err := s.recommender.Recommend(r.Context(), recommend.Query{
		Lat:  *req.UserLat,
		Lng:  *req.UserLng,
		Hour: hour,
		TopK: topK,
	})
	if err != nil {
		s.writeRecommendError(w, err)
		return
	}

	out := recommendResponse{
		UserLocation: userLocationJSON{
			Lat:       *req.UserLat,
			Lng:       *req.UserLng,
			TimeOfDay: resp.Hour,
		},
		GeneratedAt:       resp.GeneratedAt,
		SkippedFacilities: resp.Skipped,
		Recommendations:   make([]recommendationJSON, len(resp.Results)),
	}
	for i, res := range resp.Results {
		out.Recommendations[i] = recommendationJSON{
			Index:         i,
			Name:          res.Facility.Name,
			Details:       res.Facility.Details,
			Address:       res.Facility.Address,
			Link:          res.Facility.Link,
			City:          res.Facility.City,
			Lat:           res.Facility.Lat,
			Lng:           res.Facility.Lng,
			DistanceKm:    res.DistanceKm,
			OpenNow:       res.OpenNow,
			Opening:       res.Facility.Opening,
			Closing:       res.Facility.Closing,
			Guards:        res.Guards,
			CCTVs:         res.CCTVs,
			InitialRate:   res.InitialRate,
			PWDDiscount:   res.PWDDiscount,
			StreetParking: res.StreetParking,
			Score:         res.Score,
		}
	}

	writeJSON(w, http.StatusOK, out)
}

// writeRecommendError maps pipeline failures to statuses a caller can act
// on: 503 for a misconfigured service, 500 for request-level failures.
func (s *Server) writeRecommendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrNoCatalog), errors.Is(err, recommend.ErrNoScorer):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, recommend.ErrNoCandidates):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error("recommendation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "scoring failed: "+err.Error())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
