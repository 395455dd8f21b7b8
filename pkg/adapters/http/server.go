// Package http exposes the project service over REST with a server-sent event stream
// per project, routed with chi.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/unitgrid"
	"github.com/aretw0/unitgrid/internal/logging"
	"github.com/aretw0/unitgrid/pkg/auth"
	"github.com/aretw0/unitgrid/pkg/broadcast"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultHeartbeat is the interval between keep-alive comments on event streams.
const DefaultHeartbeat = 15 * time.Second

// Service defines what the transport needs from the project service.
type Service interface {
	Create(ctx context.Context, name, companyID string) (*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	ListByCompany(ctx context.Context, companyID string) ([]*domain.Project, error)
	UpdateInputData(ctx context.Context, id string, in unitgrid.UpdateInput) (*domain.Project, error)
	CreateRestorePoint(ctx context.Context, id string) (*domain.Project, error)
	Restore(ctx context.Context, id string, index int) (*domain.Project, error)
	SetStatus(ctx context.Context, id string, status domain.ProjectStatus) (*domain.Project, error)
}

// Verifier checks bearer tokens.
type Verifier interface {
	Verify(token string) (auth.Identity, error)
}

// Server holds the handlers' collaborators.
type Server struct {
	Service  Service
	Hub      *broadcast.Hub
	Verifier Verifier
	Metrics  *Metrics

	heartbeat time.Duration
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHeartbeat sets the event-stream keep-alive interval.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.heartbeat = d
		}
	}
}

// WithMetrics enables /metrics and request counting.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// NewServer creates a Server. hub is the local subscriber hub event streams read from.
func NewServer(svc Service, hub *broadcast.Hub, verifier Verifier, opts ...Option) *Server {
	s := &Server{
		Service:   svc,
		Hub:       hub,
		Verifier:  verifier,
		heartbeat: DefaultHeartbeat,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for svc.
func NewHandler(svc Service, hub *broadcast.Hub, verifier Verifier, opts ...Option) http.Handler {
	return NewServer(svc, hub, verifier, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	r.Route("/api/project", func(r chi.Router) {
		// EventSource cannot set headers, so the stream authenticates from the query.
		r.Get("/events/{id}", s.SubscribeEvents)

		r.Group(func(r chi.Router) {
			r.Use(s.requireBearer)
			r.Post("/", s.CreateProject)
			r.Get("/{companyID}", s.ListProjects)
			r.Get("/project/{id}", s.GetProject)
			r.Put("/{id}/inputData", s.UpdateInputData)
			r.Put("/{id}/status", s.SetStatus)
			r.Post("/{id}/restorePoints", s.CreateRestorePoint)
			r.Post("/{id}/restorePoints/{index}/restore", s.Restore)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	if s.Metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.Metrics.Requests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			token = ""
		}
		id, err := s.Verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": strings.TrimSpace(unitgrid.Version),
	})
}

type createRequest struct {
	Name      string `json:"name"`
	CompanyID string `json:"companyId"`
}

// CreateProject handles POST /api/project.
func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := s.Service.Create(r.Context(), body.Name, body.CompanyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user, _ := auth.FromContext(r.Context())
	s.logger.Info("Project created", "project_id", p.ID, "company", p.Company, "user", user.UserID)
	writeJSON(w, http.StatusCreated, p)
}

// ListProjects handles GET /api/project/{companyID}.
func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.Service.ListByCompany(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetProject handles GET /api/project/project/{id}.
func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateInputData handles PUT /api/project/{id}/inputData.
// Either field may be omitted; the result is saved and broadcast.
func (s *Server) UpdateInputData(w http.ResponseWriter, r *http.Request) {
	var body unitgrid.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	id := chi.URLParam(r, "id")
	p, err := s.Service.UpdateInputData(r.Context(), id, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("Input data updated", "project_id", id, "rows", len(p.InputData), "subscribers", s.Hub.Count(id))
	writeJSON(w, http.StatusOK, p)
}

type statusRequest struct {
	Status domain.ProjectStatus `json:"status"`
}

// SetStatus handles PUT /api/project/{id}/status.
func (s *Server) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body statusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := s.Service.SetStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateRestorePoint handles POST /api/project/{id}/restorePoints.
func (s *Server) CreateRestorePoint(w http.ResponseWriter, r *http.Request) {
	p, err := s.Service.CreateRestorePoint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Restore handles POST /api/project/{id}/restorePoints/{index}/restore.
func (s *Server) Restore(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid restore point index")
		return
	}
	p, err := s.Service.Restore(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SubscribeEvents handles GET /api/project/events/{id}?token=... (SSE).
// Every update message for the project is written as one "data:" event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if _, err := s.Verifier.Verify(r.URL.Query().Get("token")); err != nil {
		s.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeMessage(w, http.StatusInternalServerError, "Streaming not supported")
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := s.Hub.Subscribe(projectID)
	defer sub.Close()
	if s.Metrics != nil {
		s.Metrics.Subscribers.Inc()
		defer s.Metrics.Subscribers.Dec()
	}
	s.logger.Info("SSE: Subscribed", "project_id", projectID, "subscriber_id", sub.ID, "total", s.Hub.Count(projectID))

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "project_id", projectID, "subscriber_id", sub.ID)
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Warn("Failed to marshal update", "project_id", projectID, "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
