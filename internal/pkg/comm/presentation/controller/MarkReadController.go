package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/usecase"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/adapter"
)

// MarkReadController flips a conversation's unread messages for the caller
// (one controller per endpoint)
type MarkReadController struct {
	UC *usecase.MarkReadUseCase
}

func NewMarkReadController(pool *pgxpool.Pool) *MarkReadController {
	repo := adapter.NewPgMessageRepository(pool)
	return &MarkReadController{UC: usecase.NewMarkReadUseCase(repo)}
}

type markReadRequest struct {
	PeerID    string `json:"peer_id"`
	BookingID string `json:"booking_id"`
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req markReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		count, err := h.UC.Execute(ctx, usecase.MarkReadInput{
			IdentityID: identityID(c),
			PeerID:     req.PeerID,
			BookingID:  req.BookingID,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"updated": count})
	}
}
