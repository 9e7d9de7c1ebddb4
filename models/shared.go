package models

// ReminderPayload is the body of an appointment reminder task.
type ReminderPayload struct {
	AppointmentID   string `json:"appointmentId"`
	DonorID         string `json:"donorId"`
	BloodBankID     string `json:"bloodBankId"`
	AppointmentDate string `json:"appointmentDate"` // date the reminder was scheduled against
	StartTime       string `json:"startTime"`
	FireDate        string `json:"fireDate"`
}

