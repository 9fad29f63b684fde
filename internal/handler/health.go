package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/memo-service/internal/repository"
	"github.com/maxviazov/memo-service/pkg/response"
)

// readinessTimeout caps a single storage ping.
const readinessTimeout = 2 * time.Second

// Pinger is satisfied by both storage adapters' pingers.
type Pinger = repository.Pinger

// HealthHandler serves liveness and storage readiness.
type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Liveness reports the process is up without touching storage.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness pings the memo store. Any ping failure is reported as 503 with
// the shared error payload.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		if !errors.Is(err, repository.ErrUnavailable) {
			err = repository.Unavailable(err)
		}
		response.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
