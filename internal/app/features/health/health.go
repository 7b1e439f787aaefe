// internal/app/features/health/health.go
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/jsonutil"
	"github.com/dalemusser/coconsult/internal/app/system/tasks"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// pingTimeout bounds each dependency ping.
const pingTimeout = 3 * time.Second

// Overall statuses reported by Check.
const (
	StatusOK          = "ok"
	StatusDegraded    = "degraded"    // an optional service is down
	StatusUnavailable = "unavailable" // a critical service is down
)

// Dependency is a downstream service reported by the full health check.
// Only critical dependencies make the check fail.
type Dependency struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
}

// Handler provides health check endpoints.
type Handler struct {
	mongoClient *mongo.Client
	deps        []Dependency
	jobs        func() []tasks.JobStatus
	logger      *zap.Logger
}

// NewHandler creates a health Handler. MongoDB is always a critical
// dependency and the only one readiness looks at.
func NewHandler(mongoClient *mongo.Client, logger *zap.Logger, deps ...Dependency) *Handler {
	h := &Handler{mongoClient: mongoClient, logger: logger}
	h.deps = append([]Dependency{{Name: "mongodb", Critical: true, Ping: h.pingMongo}}, deps...)
	return h
}

// ReportJobs adds background job status to the full check.
func (h *Handler) ReportJobs(fn func() []tasks.JobStatus) {
	h.jobs = fn
}

// ServiceStatus is the result of one dependency ping.
type ServiceStatus struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Critical  bool   `json:"critical,omitempty"`
}

// Response is the full health check body.
type Response struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	Jobs     []tasks.JobStatus        `json:"jobs,omitempty"`
}

// Routes returns a chi.Router with /health (full check), /health/ready and
// /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the conventional probe paths to the root router.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// Check pings every dependency concurrently. It answers 503 only when a
// critical dependency is down; an optional one only degrades the status.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	results := make([]ServiceStatus, len(h.deps))
	var wg sync.WaitGroup
	for i, d := range h.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = h.ping(r.Context(), d)
		}()
	}
	wg.Wait()

	resp := Response{Status: StatusOK, Services: make(map[string]ServiceStatus, len(h.deps))}
	for i, d := range h.deps {
		resp.Services[d.Name] = results[i]
		if results[i].Status == StatusOK {
			continue
		}
		if d.Critical {
			resp.Status = StatusUnavailable
		} else if resp.Status == StatusOK {
			resp.Status = StatusDegraded
		}
	}
	if h.jobs != nil {
		resp.Jobs = h.jobs()
	}

	status := http.StatusOK
	if resp.Status == StatusUnavailable {
		status = http.StatusServiceUnavailable
	}
	jsonutil.JSON(w, status, resp)
}

func (h *Handler) ping(ctx context.Context, d Dependency) ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := d.Ping(ctx)
	s := ServiceStatus{Status: StatusOK, LatencyMS: time.Since(start).Milliseconds(), Critical: d.Critical}
	if err != nil {
		s.Status = StatusUnavailable
		h.logger.Warn("health check: ping failed", zap.String("service", d.Name), zap.Error(err))
	}
	return s
}

func (h *Handler) pingMongo(ctx context.Context) error {
	return h.mongoClient.Ping(ctx, readpref.Primary())
}

// Ready reports whether MongoDB answers.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.pingMongo(ctx); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	jsonutil.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Live always answers while the process is serving.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
