package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/usecase"
)

// identityID extracts the authenticated identity resolved by the auth
// middleware upstream. An empty value is mapped to Unauthorized downstream,
// not here, so the use cases own that semantics.
func identityID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

// respondError maps the comm error taxonomy onto HTTP. Forbidden carries its
// specific reason so clients can show it verbatim.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, comm.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, comm.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "reason": comm.DenyReason(err)})
	case errors.Is(err, comm.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, comm.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, comm.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipient has no open connection"})
	case errors.Is(err, usecase.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
