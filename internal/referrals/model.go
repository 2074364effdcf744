package referrals

import "time"

// DefaultStatus is assigned to every new referral until an administrator triages it.
const DefaultStatus = "Sem status"

// consentChecked is the value browsers send for a ticked checkbox.
const consentChecked = "on"

// Referral is a candidate referral submitted through the public form.
type Referral struct {
	ID         string
	Name       string
	Phone      string
	Position   string
	Consent    bool
	ResumePath string
	CreatedAt  time.Time
	Status     string
}

// HasResume reports whether a résumé file was attached on submission.
func (r Referral) HasResume() bool {
	return r.ResumePath != ""
}

// ConsentFromForm converts the form value of the rules checkbox. Only the
// checkbox "on" value counts as consent.
func ConsentFromForm(value string) bool {
	return value == consentChecked
}
