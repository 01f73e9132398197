package service

import (
	"context"
	"errors"
	"fmt"

	"edvault/cert-portal/internal/domain"
	"edvault/cert-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
)

// --- Service Interface ---
type VerificationService interface {
	// Verify applies an admin decision to a certificate. Re-verifying an
	// already-decided record is allowed; the new decision overwrites the old.
	Verify(ctx context.Context, adminID, certificateID primitive.ObjectID, decision domain.CertificateStatus, comments string) (*domain.Certificate, error)

	// ListAll returns every certificate, most recent first. Optional status
	// filtering is applied in memory after retrieval.
	ListAll(ctx context.Context, statusFilter string) ([]domain.Certificate, error)

	// Stats aggregates status counts over the full record set.
	Stats(ctx context.Context) (domain.StatusCounts, error)
}

// --- Service Implementation ---

// verificationService implements the VerificationService interface.
type verificationService struct {
	certificateRepo repository.CertificateRepository
}

// NewVerificationService creates a new instance of verificationService.
func NewVerificationService(certificateRepo repository.CertificateRepository) VerificationService {
	return &verificationService{
		certificateRepo: certificateRepo,
	}
}

// Verify loads the target record, writes the decision as a partial update, and
// only after the store write succeeds mirrors the same changes into the copy
// it returns. A failed update therefore never produces a stale-success view.
func (s *verificationService) Verify(ctx context.Context, adminID, certificateID primitive.ObjectID, decision domain.CertificateStatus, comments string) (*domain.Certificate, error) {
	if adminID == primitive.NilObjectID || certificateID == primitive.NilObjectID {
		return nil, errors.New("admin ID and certificate ID are required")
	}
	if !decision.IsDecision() {
		return nil, ErrInvalidDecision
	}

	cert, err := s.certificateRepo.GetByID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}

	update := domain.NewVerificationUpdate(decision, adminID, comments)
	if err := s.certificateRepo.UpdateVerification(ctx, certificateID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	update.Apply(cert)
	return cert, nil
}

// ListAll retrieves every certificate for the admin queue.
func (s *verificationService) ListAll(ctx context.Context, statusFilter string) ([]domain.Certificate, error) {
	certs, err := s.certificateRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortBySubmittedAtDesc(certs)
	return domain.FilterByStatus(certs, statusFilter), nil
}

// Stats folds status counts over the full record set.
func (s *verificationService) Stats(ctx context.Context) (domain.StatusCounts, error) {
	certs, err := s.certificateRepo.GetAll(ctx)
	if err != nil {
		return domain.StatusCounts{}, err
	}
	return domain.CountsByStatus(certs), nil
}
