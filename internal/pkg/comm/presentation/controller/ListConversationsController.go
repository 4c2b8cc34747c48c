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

// ListConversationsController returns the caller's inbox: one summary per
// distinct peer or booking (one controller per endpoint)
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(pool *pgxpool.Pool, presence usecase.PresenceChecker) *ListConversationsController {
	repo := adapter.NewPgMessageRepository(pool)
	return &ListConversationsController{UC: usecase.NewListConversationsUseCase(repo, presence)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		summaries, err := h.UC.Execute(ctx, usecase.ListConversationsInput{IdentityID: identityID(c)})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"conversations": summaries,
			"count":         len(summaries),
		})
	}
}
