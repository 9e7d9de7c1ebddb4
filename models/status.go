package models

import "fmt"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusReminded    AppointmentStatus = "reminded"
	StatusCheckedIn   AppointmentStatus = "checked_in"
	StatusInProgress  AppointmentStatus = "in_progress"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusNoShow      AppointmentStatus = "no_show"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

// AllStatuses lists every valid status in lifecycle order.
var AllStatuses = []AppointmentStatus{
	StatusScheduled, StatusConfirmed, StatusReminded, StatusCheckedIn, StatusInProgress,
	StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled,
}

// ActiveStatuses hold a booked interval on the blood bank's calendar.
var ActiveStatuses = []AppointmentStatus{
	StatusScheduled, StatusConfirmed, StatusReminded, StatusCheckedIn, StatusInProgress,
}

// OccupyingStatuses are the statuses that block a slot for other donors.
// A rescheduled appointment still holds its new interval.
var OccupyingStatuses = append(append([]AppointmentStatus{}, ActiveStatuses...), StatusRescheduled)

// UpcomingStatuses have not yet reached check-in.
var UpcomingStatuses = []AppointmentStatus{StatusScheduled, StatusConfirmed, StatusReminded}

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

func (s AppointmentStatus) in(set []AppointmentStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) Valid() bool { return s.in(AllStatuses) }

func (s AppointmentStatus) Active() bool { return s.in(ActiveStatuses) }

func (s AppointmentStatus) Occupies() bool { return s.in(OccupyingStatuses) }

func (s AppointmentStatus) Upcoming() bool { return s.in(UpcomingStatuses) }

// Terminal statuses end the lifecycle. Rescheduled is deliberately not one.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// DonationType is the kind of donation the appointment is for.
type DonationType string

const (
	DonationWholeBlood     DonationType = "whole_blood"
	DonationPlasma         DonationType = "plasma"
	DonationPlatelets      DonationType = "platelets"
	DonationDoubleRedCells DonationType = "double_red_cells"
)

// ParseDonationType defaults the empty string to whole blood.
func ParseDonationType(s string) (DonationType, error) {
	switch DonationType(s) {
	case "":
		return DonationWholeBlood, nil
	case DonationWholeBlood, DonationPlasma, DonationPlatelets, DonationDoubleRedCells:
		return DonationType(s), nil
	}
	return "", fmt.Errorf("unknown donation type %q", s)
}

// Priority is the triage priority of an appointment.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority defaults the empty string to normal.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case "":
		return PriorityNormal, nil
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return Priority(s), nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Actor identifies who issued a lifecycle change.
type Actor string

const (
	ActorDonor     Actor = "donor"
	ActorBloodBank Actor = "blood_bank"
	ActorSystem    Actor = "system"
)

// ActorForRole maps an authenticated user role onto a lifecycle actor.
// Administrators act as the system.
func ActorForRole(role Role) Actor {
	switch role {
	case RoleDonor:
		return ActorDonor
	case RoleBloodBank:
		return ActorBloodBank
	default:
		return ActorSystem
	}
}
