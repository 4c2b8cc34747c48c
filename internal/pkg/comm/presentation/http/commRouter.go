package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/queue/port"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/realtime"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/presentation/controller"
)

// RegisterRoutes registers communication endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, queue qport.Client, registry *realtime.Registry, relay *realtime.Relay) {
	sendMsgCtl := controller.NewSendMessageController(pool, relay, queue)
	historyCtl := controller.NewGetHistoryController(pool)
	markReadCtl := controller.NewMarkReadController(pool)
	conversationsCtl := controller.NewListConversationsController(pool, registry)
	phoneCtl := controller.NewRequestPhoneController(pool)
	socketCtl := controller.NewCommSocketController(pool, registry, relay, queue)

	// POST /api/v1/messages -> send a message (direct, booking or admin channel)
	g.POST("/messages", sendMsgCtl.Handle())

	// GET /api/v1/messages -> fetch a channel's history by peer_id or booking_id
	g.GET("/messages", historyCtl.Handle())

	// POST /api/v1/messages/read -> mark a channel's inbound messages as read
	g.POST("/messages/read", markReadCtl.Handle())

	// GET /api/v1/conversations -> one summary per distinct channel
	g.GET("/conversations", conversationsCtl.Handle())

	// GET /api/v1/contact/:targetId -> phone disclosure, gated by role and booking
	g.GET("/contact/:targetId", phoneCtl.Handle())

	// GET /api/v1/ws -> websocket endpoint for realtime chat and call signaling
	g.GET("/ws", socketCtl.Handle())
}
