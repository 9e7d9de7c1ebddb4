package scheduling

import (
	"context"
	"errors"
	"time"

	userRepo "bloodlink/database/repository/user"
	"bloodlink/models"
)

// Eligibility evaluates a donor profile against the donation window at now.
func Eligibility(donor *models.User, now time.Time, windowMonths int) models.EligibilityStatus {
	status := models.EligibilityStatus{DonorID: donor.ID, Eligible: true}

	if donor.Role != models.RoleDonor {
		status.Eligible = false
		status.Reasons = append(status.Reasons, "user is not a donor")
	}
	if !donor.IsActive {
		status.Eligible = false
		status.Reasons = append(status.Reasons, "account is inactive")
	}

	mh := donor.MedicalHistory
	if mh == nil || !mh.EligibleToDonate {
		status.Eligible = false
		status.Reasons = append(status.Reasons, "not medically cleared to donate")
	}
	if mh != nil && mh.LastDonationDate != nil {
		last := *mh.LastDonationDate
		next := last.AddDate(0, windowMonths, 0)
		status.LastDonationDate = &last
		if next.After(now) {
			status.Eligible = false
			status.NextEligibleDate = &next
			status.Reasons = append(status.Reasons, "last donation is within the waiting period")
		}
	}
	return status
}

// CheckEligibility loads the donor and reports whether they may book now.
func (s *Service) CheckEligibility(ctx context.Context, donorID string) (*models.EligibilityStatus, error) {
	donor, err := s.loadUser(ctx, donorID, "donor not found")
	if err != nil {
		return nil, err
	}
	status := Eligibility(donor, s.now(), s.eligibilityWindow())
	return &status, nil
}

func (s *Service) loadUser(ctx context.Context, id, notFoundMsg string) (*models.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, newError(KindNotFound, notFoundMsg)
		}
		return nil, internal("failed to load user", err)
	}
	return u, nil
}
