package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"bloodlink/models"
	"bloodlink/services/scheduling"
	"bloodlink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler serves the appointment, availability and eligibility endpoints.
type AppointmentHandler struct {
	Service  scheduling.AppointmentService
	Now      func() time.Time
	Location *time.Location
}

func NewAppointmentHandler(svc scheduling.AppointmentService, loc *time.Location) *AppointmentHandler {
	return &AppointmentHandler{Service: svc, Now: time.Now, Location: loc}
}

type timeSlotInput struct {
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

type createAppointmentRequest struct {
	BloodBank           string                      `json:"bloodBank" binding:"required"`
	AppointmentDate     string                      `json:"appointmentDate" binding:"required"`
	TimeSlot            timeSlotInput               `json:"timeSlot"`
	DonationType        string                      `json:"donationType"`
	Priority            string                      `json:"priority"`
	Notes               string                      `json:"notes"`
	SpecialRequirements *models.SpecialRequirements `json:"specialRequirements"`
	PreScreening        map[string]any              `json:"preScreening"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type rescheduleRequest struct {
	AppointmentDate string        `json:"appointmentDate" binding:"required"`
	TimeSlot        timeSlotInput `json:"timeSlot"`
	Reason          string        `json:"reason"`
}

type updateDetailsRequest struct {
	Notes               *string                     `json:"notes"`
	InternalNotes       *string                     `json:"internalNotes"`
	SpecialRequirements *models.SpecialRequirements `json:"specialRequirements"`
	PreScreening        map[string]any              `json:"preScreening"`
	AssignedStaff       *models.AssignedStaff       `json:"assignedStaff"`
	CheckIn             *models.CheckIn             `json:"checkIn"`
	FollowUp            *models.FollowUp            `json:"followUp"`
	ConsentForms        *models.ConsentForms        `json:"consentForms"`
	Feedback            *models.Feedback            `json:"feedback"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// callerFrom reads the identity set by JWTAuthMiddleware.
func callerFrom(c *gin.Context) (scheduling.Caller, bool) {
	id := c.GetString(utils.ContextUserID)
	roleVal, exists := c.Get(utils.ContextRole)
	role, ok := roleVal.(models.Role)
	if id == "" || !exists || !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Insufficient authorization")
		return scheduling.Caller{}, false
	}
	return scheduling.Caller{UserID: id, Role: role}, true
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorResponse{
		Message: "Validation failed",
		Code:    string(scheduling.KindValidation),
		Details: err.Error(),
	})
}

func (h *AppointmentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *AppointmentHandler) view(a *models.Appointment) models.AppointmentView {
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	return models.NewAppointmentView(*a, h.now(), loc)
}

// CreateAppointmentHandler books an appointment for the authenticated donor.
func (h *AppointmentHandler) CreateAppointmentHandler(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	appt, err := h.Service.CreateAppointment(c.Request.Context(), scheduling.CreateRequest{
		DonorID:             caller.UserID,
		BloodBankID:         req.BloodBank,
		Date:                req.AppointmentDate,
		StartTime:           req.TimeSlot.StartTime,
		EndTime:             req.TimeSlot.EndTime,
		DonationType:        req.DonationType,
		Priority:            req.Priority,
		Notes:               req.Notes,
		SpecialRequirements: req.SpecialRequirements,
		PreScreening:        req.PreScreening,
	})
	if err != nil {
		respondError(c, err, "creating appointment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Appointment scheduled successfully",
		"data":    gin.H{"appointment": h.view(appt)},
	})
}

// ListAppointmentsHandler pages through the caller's appointments.
func (h *AppointmentHandler) ListAppointmentsHandler(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	filter := models.AppointmentFilter{
		DonorID:     c.Query("donor"),
		BloodBankID: c.Query("bloodBank"),
		Status:      models.AppointmentStatus(c.Query("status")),
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
	}
	var err error
	if filter.Page, err = queryInt(c, "page", 1); err != nil {
		badRequest(c, err)
		return
	}
	if filter.Limit, err = queryInt(c, "limit", 10); err != nil {
		badRequest(c, err)
		return
	}

	appts, page, err := h.Service.ListAppointments(c.Request.Context(), filter, caller)
	if err != nil {
		respondError(c, err, "fetching appointments")
		return
	}
	views := make([]models.AppointmentView, 0, len(appts))
	for i := range appts {
		views = append(views, h.view(&appts[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"appointments": views,
			"pagination":   page,
		},
	})
}

// GetAppointmentHandler returns one appointment.
func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	appt, err := h.Service.GetAppointment(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		respondError(c, err, "fetching appointment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"appointment": h.view(appt)}})
}

// UpdateAppointmentHandler edits descriptive fields.
func (h *AppointmentHandler) UpdateAppointmentHandler(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req updateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	appt, err := h.Service.UpdateDetails(c.Request.Context(), c.Param("id"), scheduling.DetailsRequest{
		Notes:               req.Notes,
		InternalNotes:       req.InternalNotes,
		SpecialRequirements: req.SpecialRequirements,
		PreScreening:        req.PreScreening,
		AssignedStaff:       req.AssignedStaff,
		CheckIn:             req.CheckIn,
		FollowUp:            req.FollowUp,
		ConsentForms:        req.ConsentForms,
		Feedback:            req.Feedback,
	}, caller)
	if err != nil {
		respondError(c, err, "updating appointment")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Appointment updated successfully",
		"data":    gin.H{"appointment": h.view(appt)},
	})
}

// UpdateStatusHandler moves an appointment through its lifecycle.
func (h *AppointmentHandler) UpdateStatusHandler(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	appt, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), models.AppointmentStatus(req.Status), caller)
	if err != nil {
		respondError(c, err, "updating appointment status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Appointment status updated successfully",
		"data":    gin.H{"appointment": h.view(appt)},
	})
}

// RescheduleAppointmentHandler moves an appointment to a new date and time.
func (h *AppointmentHandler) RescheduleAppointmentHandler(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	appt, err := h.Service.Reschedule(c.Request.Context(), c.Param("id"), scheduling.RescheduleRequest{
		Date:      req.AppointmentDate,
		StartTime: req.TimeSlot.StartTime,
		EndTime:   req.TimeSlot.EndTime,
		Reason:    req.Reason,
	}, caller)
	if err != nil {
		respondError(c, err, "rescheduling appointment")
		return
	}

	utils.GetLogger().Debug("Reschedule accepted", zap.String("appointmentId", appt.ID), zap.String("by", string(caller.Actor())))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Appointment rescheduled successfully",
		"data":    gin.H{"appointment": h.view(appt)},
	})
}

// CancelAppointmentHandler cancels an appointment. The body is optional.
func (h *AppointmentHandler) CancelAppointmentHandler(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if req.Reason == "" {
		req.Reason = c.Query("reason")
	}

	appt, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), req.Reason, caller)
	if err != nil {
		respondError(c, err, "cancelling appointment")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Appointment cancelled successfully",
		"data":    gin.H{"appointment": h.view(appt)},
	})
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return v, nil
}
