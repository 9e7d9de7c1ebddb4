package handlers

import (
	"errors"
	"net/http"

	"bloodlink/services/scheduling"
	"bloodlink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusForKind maps scheduling error kinds to HTTP status codes.
func statusForKind(kind scheduling.Kind) int {
	switch kind {
	case scheduling.KindNotFound:
		return http.StatusNotFound
	case scheduling.KindSlotConflict, scheduling.KindConflict:
		return http.StatusConflict
	case scheduling.KindForbidden:
		return http.StatusForbidden
	case scheduling.KindIneligibleDonor,
		scheduling.KindInvalidDate,
		scheduling.KindValidation,
		scheduling.KindInvalidTransition,
		scheduling.KindRescheduleLimitExceeded:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a scheduling error. Internal details are logged, not returned.
func respondError(c *gin.Context, err error, action string) {
	kind := scheduling.KindOf(err)
	status := statusForKind(kind)
	if status == http.StatusInternalServerError {
		utils.GetLogger().Error("Server error while "+action, zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(status, utils.ErrorResponse{
			Message: "Server error while " + action,
			Code:    string(scheduling.KindInternal),
		})
		return
	}
	msg := err.Error()
	var se *scheduling.Error
	if errors.As(err, &se) {
		msg = se.Message
	}
	utils.JSONError(c, status, string(kind), msg)
}
