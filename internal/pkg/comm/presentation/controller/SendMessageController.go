package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/queue/port"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/usecase"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/adapter"
)

// SendMessageController handles the send-message endpoint only (one controller per endpoint)
type SendMessageController struct {
	UC *usecase.SendMessageUseCase
}

func NewSendMessageController(pool *pgxpool.Pool, notifier usecase.Notifier, queue qport.Client) *SendMessageController {
	dir := adapter.NewPgDirectoryRepository(pool)
	repo := adapter.NewPgMessageRepository(pool)
	uc := usecase.NewSendMessageUseCase(dir, repo, notifier, queue)
	return &SendMessageController{UC: uc}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	ReceiverID *string `json:"receiver_id"`
	BookingID  *string `json:"booking_id"`
	Content    string  `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		in := usecase.SendMessageInput{
			SenderID:   identityID(c),
			ReceiverID: req.ReceiverID,
			BookingID:  req.BookingID,
			Content:    req.Content,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		msg, err := h.UC.Execute(ctx, in)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":          msg.ID,
			"sender_id":   msg.SenderID,
			"receiver_id": msg.ReceiverID,
			"booking_id":  msg.BookingID,
			"content":     msg.Content,
			"chat_type":   msg.ChatType,
			"is_read":     msg.IsRead,
			"created_at":  msg.CreatedAt,
		})
	}
}
