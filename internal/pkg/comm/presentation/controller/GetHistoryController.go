package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/usecase"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/adapter"
)

// GetHistoryController pages one conversation's messages (one controller per endpoint)
type GetHistoryController struct {
	UC *usecase.GetHistoryUseCase
}

func NewGetHistoryController(pool *pgxpool.Pool) *GetHistoryController {
	dir := adapter.NewPgDirectoryRepository(pool)
	repo := adapter.NewPgMessageRepository(pool)
	return &GetHistoryController{UC: usecase.NewGetHistoryUseCase(dir, repo)}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Defaults
		limit := 100
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		in := usecase.GetHistoryInput{
			IdentityID: identityID(c),
			PeerID:     c.Query("peer_id"),
			BookingID:  c.Query("booking_id"),
			Limit:      limit,
			Offset:     offset,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		msgs, err := h.UC.Execute(ctx, in)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, gin.H{
				"id":          m.ID,
				"sender_id":   m.SenderID,
				"receiver_id": m.ReceiverID,
				"booking_id":  m.BookingID,
				"content":     m.Content,
				"chat_type":   m.ChatType,
				"is_read":     m.IsRead,
				"created_at":  m.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": out,
			"limit":    limit,
			"offset":   offset,
			"count":    len(out),
		})
	}
}
