package referrals

import "time"

// ReferralResponse is the outward-facing representation of a referral.
type ReferralResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"nome"`
	Phone      string    `json:"telefone"`
	Position   string    `json:"posto"`
	Consent    bool      `json:"regras"`
	ResumePath *string   `json:"resumePath"`
	CreatedAt  time.Time `json:"createdAt"`
	Status     string    `json:"status"`
}

func toResponse(ref Referral) ReferralResponse {
	resp := ReferralResponse{
		ID:        ref.ID,
		Name:      ref.Name,
		Phone:     ref.Phone,
		Position:  ref.Position,
		Consent:   ref.Consent,
		CreatedAt: ref.CreatedAt,
		Status:    ref.Status,
	}
	if ref.HasResume() {
		path := ref.ResumePath
		resp.ResumePath = &path
	}
	return resp
}

func toResponses(refs []Referral) []ReferralResponse {
	out := make([]ReferralResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, toResponse(ref))
	}
	return out
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
}
