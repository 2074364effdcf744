package referrals

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"referral-intake/internal/shared/metrics"
	"referral-intake/internal/shared/storage/object"
	"referral-intake/internal/shared/telemetry"
)

// Service contains business logic for referrals.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	// DeleteResumeFiles removes the stored résumé when its referral is deleted.
	DeleteResumeFiles bool
}

// Submission is a referral as sent by the public form.
type Submission struct {
	Name     string
	Phone    string
	Position string
	Consent  bool
	Resume   *Upload
}

// Upload is an attached file.
type Upload struct {
	FileName string
	Body     io.Reader
}

// Submit stores the résumé (if any) and then records the referral. When the
// record cannot be created the stored file is removed on a best-effort basis.
func (s *Service) Submit(ctx context.Context, sub Submission) (Referral, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Phone = strings.TrimSpace(sub.Phone)
	sub.Position = strings.TrimSpace(sub.Position)
	if sub.Name == "" {
		return Referral{}, fmt.Errorf("%w: nome is required", ErrInvalidInput)
	}

	ref := Referral{
		Name:     sub.Name,
		Phone:    sub.Phone,
		Position: sub.Position,
		Consent:  sub.Consent,
		Status:   DefaultStatus,
	}

	if sub.Resume != nil {
		if strings.TrimSpace(sub.Resume.FileName) == "" {
			return Referral{}, fmt.Errorf("%w: resume file name is required", ErrInvalidInput)
		}
		key, size, _, err := s.Store.Save(ctx, sub.Resume.FileName, sub.Resume.Body)
		if err != nil {
			return Referral{}, fmt.Errorf("save resume: %w", err)
		}
		metrics.ObserveUploadBytes(float64(size))
		ref.ResumePath = key
	}

	created, err := s.Repo.Create(ctx, ref)
	if err != nil {
		if ref.ResumePath != "" {
			s.discardResume(ctx, ref.ResumePath, "submit.compensate")
		}
		return Referral{}, err
	}

	metrics.IncReferralSubmitted()
	return created, nil
}

// List returns all referrals, newest first.
func (s *Service) List(ctx context.Context) ([]Referral, error) {
	return s.Repo.List(ctx)
}

// Get returns one referral.
func (s *Service) Get(ctx context.Context, id string) (Referral, error) {
	if strings.TrimSpace(id) == "" {
		return Referral{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// UpdateStatus replaces the triage status. Any non-blank value is stored as given.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidInput)
	}
	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	metrics.IncStatusUpdated()
	return nil
}

// Delete removes a referral and, when configured, its stored résumé. The
// record goes first; a failure to remove the file is logged and ignored.
func (s *Service) Delete(ctx context.Context, id string) error {
	ref, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.IncReferralDeleted()

	if s.DeleteResumeFiles && ref.HasResume() {
		s.discardResume(ctx, ref.ResumePath, "delete.resume")
	}
	return nil
}

// OpenResume returns the stored résumé of a referral and the name it was
// uploaded with. ErrResumeMissing covers both "never uploaded" and "gone from
// storage".
func (s *Service) OpenResume(ctx context.Context, id string) (io.ReadCloser, string, error) {
	ref, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !ref.HasResume() {
		return nil, "", ErrResumeMissing
	}

	rc, err := s.Store.Open(ctx, ref.ResumePath)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, "", ErrResumeMissing
		}
		return nil, "", fmt.Errorf("open resume: %w", err)
	}
	metrics.IncResumeDownloaded()
	return rc, object.OriginalName(ref.ResumePath), nil
}

func (s *Service) discardResume(ctx context.Context, key, reason string) {
	err := s.Store.Delete(context.WithoutCancel(ctx), key)
	if err == nil || errors.Is(err, object.ErrNotFound) {
		return
	}
	telemetry.Error("resume.discard_failed", map[string]any{
		"reason":      reason,
		"storage_key": key,
		"error":       err.Error(),
	})
}
