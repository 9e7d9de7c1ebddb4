package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	JWTSecret []byte

	// Appointment endpoints
	CreateAppointmentHandler     gin.HandlerFunc
	ListAppointmentsHandler      gin.HandlerFunc
	GetAppointmentHandler        gin.HandlerFunc
	UpdateAppointmentHandler     gin.HandlerFunc
	UpdateStatusHandler          gin.HandlerFunc
	RescheduleAppointmentHandler gin.HandlerFunc
	CancelAppointmentHandler     gin.HandlerFunc

	// Availability & eligibility endpoints
	AvailabilityHandler gin.HandlerFunc
	EligibilityHandler  gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires every handler of h into a bundle.
func NewHandlerBundle(h *AppointmentHandler, secret []byte) *HandlerBundle {
	return &HandlerBundle{
		JWTSecret:                    secret,
		CreateAppointmentHandler:     h.CreateAppointmentHandler,
		ListAppointmentsHandler:      h.ListAppointmentsHandler,
		GetAppointmentHandler:        h.GetAppointmentHandler,
		UpdateAppointmentHandler:     h.UpdateAppointmentHandler,
		UpdateStatusHandler:          h.UpdateStatusHandler,
		RescheduleAppointmentHandler: h.RescheduleAppointmentHandler,
		CancelAppointmentHandler:     h.CancelAppointmentHandler,
		AvailabilityHandler:          h.AvailabilityHandler,
		EligibilityHandler:           h.EligibilityHandler,
		HealthHandler:                HealthHandler,
	}
}
