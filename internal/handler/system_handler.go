package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/sitesafe-learn/internal/database"
	"github.com/stemsi/sitesafe-learn/internal/response"
)

const healthTimeout = 2 * time.Second

// SystemHandler reports liveness and dependency health.
type SystemHandler struct {
	probes    []database.Probe
	pages     int
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a SystemHandler checking the given probes.
func NewSystemHandler(pages int, log zerolog.Logger, probes ...database.Probe) *SystemHandler {
	return &SystemHandler{
		probes:    probes,
		pages:     pages,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Pages      int               `json:"pages"`
	Failures   map[string]string `json:"failures,omitempty"`
	Goroutines int               `json:"goroutines"`
	HeapAlloc  uint64            `json:"heap_alloc"`
	GoVersion  string            `json:"go_version"`
}

// Health godoc
// GET /health
// Returns 200 when every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	report := healthReport{
		Status:     "ok",
		Uptime:     formatDuration(time.Since(h.startTime)),
		Pages:      h.pages,
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	report.HeapAlloc = ms.HeapAlloc

	status := http.StatusOK
	if failures := database.Health(ctx, h.probes...); len(failures) > 0 {
		report.Status = "degraded"
		report.Failures = failures
		status = http.StatusServiceUnavailable
		h.log.Warn().Interface("failures", failures).Msg("Health check failed")
	}

	response.Success(c, status, report)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
