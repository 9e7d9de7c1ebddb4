// models/user.go
package models

import "time"

// Role is the platform role of a user account.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleBloodBank Role = "bloodBank"
	RoleAdmin     Role = "admin"
)

// User represents a platform user. Blood banks are users acting as providers.
type User struct {
	ID               string            `bson:"id" json:"id"`
	Role             Role              `bson:"role" json:"role"`
	IsActive         bool              `bson:"isActive" json:"isActive"`
	FirstName        string            `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName         string            `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Email            string            `bson:"email" json:"email"`
	Phone            string            `bson:"phone,omitempty" json:"phone,omitempty"`
	BloodType        string            `bson:"bloodType,omitempty" json:"bloodType,omitempty"`
	MedicalHistory   *MedicalHistory   `bson:"medicalHistory,omitempty" json:"medicalHistory,omitempty"`
	OrganizationInfo *OrganizationInfo `bson:"organizationInfo,omitempty" json:"organizationInfo,omitempty"`
	Location         *Location         `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt        time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time         `bson:"updatedAt" json:"updatedAt"`
}

type MedicalHistory struct {
	EligibleToDonate bool       `bson:"eligibleToDonate" json:"eligibleToDonate"`
	LastDonationDate *time.Time `bson:"lastDonationDate,omitempty" json:"lastDonationDate,omitempty"`
}

type OrganizationInfo struct {
	Name           string      `bson:"name" json:"name"`
	OperatingHours WeeklyHours `bson:"operatingHours" json:"operatingHours"`
}

// IsActiveBloodBank reports whether the user can accept bookings.
func (u *User) IsActiveBloodBank() bool {
	return u != nil && u.Role == RoleBloodBank && u.IsActive
}

// HoursOn returns the blood bank's window for the weekday of day, nil when closed.
func (u *User) HoursOn(day time.Weekday) *DayHours {
	if u == nil || u.OrganizationInfo == nil {
		return nil
	}
	return u.OrganizationInfo.OperatingHours.For(day)
}

// EligibilityStatus is the read-only answer to "may this donor book now".
type EligibilityStatus struct {
	DonorID          string     `json:"donorId"`
	Eligible         bool       `json:"eligible"`
	Reasons          []string   `json:"reasons,omitempty"`
	LastDonationDate *time.Time `json:"lastDonationDate,omitempty"`
	NextEligibleDate *time.Time `json:"nextEligibleDate,omitempty"`
}
