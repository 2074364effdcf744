package referrals

import "errors"

var (
	ErrNotFound      = errors.New("referral not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrResumeMissing = errors.New("resume not found")
)
