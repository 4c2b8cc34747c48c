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

// RequestPhoneController discloses a contact number when roles and booking
// activity permit it (one controller per endpoint)
type RequestPhoneController struct {
	UC *usecase.RequestPhoneUseCase
}

func NewRequestPhoneController(pool *pgxpool.Pool) *RequestPhoneController {
	dir := adapter.NewPgDirectoryRepository(pool)
	return &RequestPhoneController{UC: usecase.NewRequestPhoneUseCase(dir)}
}

func (h *RequestPhoneController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID := c.Param("targetId")
		if targetID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "targetId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		phone, err := h.UC.Execute(ctx, usecase.RequestPhoneInput{
			RequesterID: identityID(c),
			TargetID:    targetID,
			BookingID:   c.Query("booking_id"),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"target_id": targetID, "phone": phone})
	}
}
