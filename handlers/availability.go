package handlers

import (
	"net/http"
	"strconv"

	"bloodlink/models"
	"bloodlink/services/scheduling"
	"bloodlink/utils"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler lists open slots at a blood bank for ?date=YYYY-MM-DD&duration=minutes.
func (h *AppointmentHandler) AvailabilityHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, string(scheduling.KindValidation), "Date is required")
		return
	}
	duration := 0
	if raw := c.Query("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, string(scheduling.KindValidation), "Duration must be a number of minutes")
			return
		}
		duration = d
		if duration <= 0 || duration > scheduling.MaxSlotMinutes {
			utils.JSONError(c, http.StatusBadRequest, string(scheduling.KindValidation), "Duration must be between 1 and 1440 minutes")
			return
		}
	}

	res, err := h.Service.AvailableSlots(c.Request.Context(), c.Param("bloodBankId"), date, duration)
	if err != nil {
		respondError(c, err, "checking availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}

// EligibilityHandler reports whether a donor may book now. Donors may only ask about themselves.
func (h *AppointmentHandler) EligibilityHandler(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	donorID := c.Param("id")
	if caller.Role == models.RoleDonor && caller.UserID != donorID {
		utils.JSONError(c, http.StatusForbidden, string(scheduling.KindForbidden), "Access denied")
		return
	}

	status, err := h.Service.CheckEligibility(c.Request.Context(), donorID)
	if err != nil {
		respondError(c, err, "checking eligibility")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": status})
}
