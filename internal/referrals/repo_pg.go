package referrals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, nome, telefone, posto, regras, curriculo, created_at, status`

// Create inserts a new referral. ID and created_at come from column defaults.
func (r *PGRepo) Create(ctx context.Context, ref Referral) (Referral, error) {
	const query = `
INSERT INTO referrals (
    nome,
    telefone,
    posto,
    regras,
    curriculo,
    status
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`

	if ref.Status == "" {
		ref.Status = DefaultStatus
	}

	var resume sql.NullString
	if ref.ResumePath != "" {
		resume = sql.NullString{String: ref.ResumePath, Valid: true}
	}

	err := r.DB.QueryRowContext(
		ctx,
		query,
		ref.Name,
		ref.Phone,
		ref.Position,
		ref.Consent,
		resume,
		ref.Status,
	).Scan(&ref.ID, &ref.CreatedAt)
	if err != nil {
		return Referral{}, fmt.Errorf("insert referral: %w", err)
	}
	ref.CreatedAt = ref.CreatedAt.UTC()
	return ref, nil
}

// List returns every referral ordered newest-first.
func (r *PGRepo) List(ctx context.Context) ([]Referral, error) {
	query := `
SELECT ` + selectColumns + `
FROM referrals
ORDER BY created_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	defer rows.Close()

	out := []Referral{}
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, fmt.Errorf("scan referral: %w", err)
		}
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	return out, nil
}

// GetByID fetches a referral by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Referral, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Referral{}, ErrNotFound
	}

	query := `
SELECT ` + selectColumns + `
FROM referrals
WHERE id = $1
LIMIT 1`

	ref, err := scanReferral(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Referral{}, ErrNotFound
		}
		return Referral{}, fmt.Errorf("get referral: %w", err)
	}
	return ref, nil
}

// UpdateStatus sets the status column only.
func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	const query = `UPDATE referrals SET status = $1 WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update referral status: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a referral row.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	const query = `DELETE FROM referrals WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete referral: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReferral(row rowScanner) (Referral, error) {
	var ref Referral
	var name sql.NullString
	var phone sql.NullString
	var position sql.NullString
	var resume sql.NullString
	if err := row.Scan(
		&ref.ID,
		&name,
		&phone,
		&position,
		&ref.Consent,
		&resume,
		&ref.CreatedAt,
		&ref.Status,
	); err != nil {
		return Referral{}, err
	}
	if name.Valid {
		ref.Name = name.String
	}
	if phone.Valid {
		ref.Phone = phone.String
	}
	if position.Valid {
		ref.Position = position.String
	}
	if resume.Valid {
		ref.ResumePath = resume.String
	}
	ref.CreatedAt = ref.CreatedAt.UTC()
	return ref, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
