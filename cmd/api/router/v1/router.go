package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/queue/port"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/realtime"
	httpHandler "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, queue qport.Client, registry *realtime.Registry, relay *realtime.Relay) {
	v1 := r.Group("/api/v1")
	// Pass the DB connection, queue client and realtime plumbing down to the HTTP layer
	httpHandler.RegisterRoutes(v1, pool, queue, registry, relay)
}
