package referrals

import "context"

// Repo defines persistence operations for referrals.
//
// Create assigns ID and CreatedAt and returns the stored record. List returns
// every referral ordered by CreatedAt, newest first. Lookups and mutations of
// an unknown id return ErrNotFound.
type Repo interface {
	Create(ctx context.Context, ref Referral) (Referral, error)
	List(ctx context.Context) ([]Referral, error)
	GetByID(ctx context.Context, id string) (Referral, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}
