package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messagely/internal/domain"
)

// statusFor is the single place where error kinds become HTTP statuses.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindDuplicateUsername, domain.KindInvalidCredentials:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)

	if kind == domain.KindInternal {
		h.log.WithError(err).WithField("request_id", c.GetString(contextRequestIDKey)).Error("request failed")
		c.JSON(status, gin.H{"error": domain.ErrInternal.Message})
		return
	}

	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	c.JSON(status, gin.H{"error": msg})
}
