package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maxviazov/memo-service/internal/service"
)

// Register mounts health probes, docs and the memo API on r.
func Register(r *gin.Engine, store Pinger, memoSvc service.MemoService) {
	h := NewHealthHandler(store)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group(healthPath)
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewMemoHandler(memoSvc).Register(api)
	}
}
