package service

import (
	"errors"
	"sort"

	"gorm.io/gorm"
)

// QualificationResult reports whether a user passes the 40/40/20 incentive
// balance rule over their direct referral legs.
type QualificationResult struct {
	Qualified bool   `json:"qualified"`
	Message   string `json:"message"`
}

// QualificationService evaluates incentive qualification. Pure read; calling
// it twice without intervening writes yields the same result.
type QualificationService struct {
	users UserStore
}

func NewQualificationService(users UserStore) *QualificationService {
	return &QualificationService{users: users}
}

// CheckQualification applies the 40/40/20 rule: with at least three direct
// referrals ranked by BV, the top leg and second leg may each contribute at
// most 40% of the total downline BV and the third leg must contribute at
// least 20%.
func (s *QualificationService) CheckQualification(username string) (QualificationResult, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return QualificationResult{Qualified: false, Message: "User not found"}, nil
		}
		return QualificationResult{}, err
	}

	referrals, err := s.users.ListReferrals(user.Username)
	if err != nil {
		return QualificationResult{}, err
	}
	if len(referrals) < 3 {
		return QualificationResult{Qualified: false, Message: "Not enough downlines (minimum 3 required)"}, nil
	}

	legs := make([]float64, len(referrals))
	total := 0.0
	for i, ref := range referrals {
		legs[i] = ref.BV
		total += ref.BV
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(legs)))

	if total == 0 {
		return QualificationResult{Qualified: false, Message: "No business volume in downline legs"}, nil
	}

	highest := legs[0] / total * 100
	second := legs[1] / total * 100
	third := legs[2] / total * 100

	switch {
	case highest > 40:
		return QualificationResult{Qualified: false, Message: "One leg contributes more than 40%"}, nil
	case second > 40:
		return QualificationResult{Qualified: false, Message: "Second leg contributes more than 40%"}, nil
	case third < 20:
		return QualificationResult{Qualified: false, Message: "Lowest leg must contribute at least 20%"}, nil
	}
	return QualificationResult{Qualified: true, Message: "User qualifies for incentives"}, nil
}
