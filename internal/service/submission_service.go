package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"edvault/cert-portal/internal/domain"
	"edvault/cert-portal/internal/repository"
	"edvault/cert-portal/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrValidation          = errors.New("invalid submission")
	ErrUpload              = errors.New("certificate file upload failed")
	ErrPersist             = errors.New("failed to persist certificate record")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrCertificateAccess   = errors.New("access denied to this certificate")
	ErrDownloadURLError    = errors.New("failed to generate download URL")
)

// Accepted file extensions for certificate uploads.
var allowedFileExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SubmissionInput carries everything a student provides when submitting a
// certificate. The payload is validated at the boundary before any store call.
type SubmissionInput struct {
	CertificateName string
	CertificateType domain.CertificateType
	Institution     string
	IssueDate       time.Time
	ExpiryDate      *time.Time
	Grade           string
	FileName        string
	ContentType     string
	File            io.Reader
}

// --- Service Interface ---
type SubmissionService interface {
	// Submit validates the payload, uploads the file, and creates the record.
	Submit(ctx context.Context, studentID primitive.ObjectID, input SubmissionInput) (*domain.Certificate, error)

	// ListMine returns the student's certificates, most recent first.
	ListMine(ctx context.Context, studentID primitive.ObjectID) ([]domain.Certificate, error)

	// FileDownloadURL returns a temporary preview URL for the stored file.
	// Only the owning student or an admin may request it.
	FileDownloadURL(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, certificateID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

// submissionService implements the SubmissionService interface.
type submissionService struct {
	certificateRepo repository.CertificateRepository
	userRepo        repository.UserRepository
	fileStorage     storage.FileStorage
}

// NewSubmissionService creates a new instance of submissionService.
func NewSubmissionService(
	certificateRepo repository.CertificateRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
) SubmissionService {
	return &submissionService{
		certificateRepo: certificateRepo,
		userRepo:        userRepo,
		fileStorage:     fileStorage,
	}
}

// Submit orchestrates a certificate submission: validate, upload the file,
// then insert the record. The two store writes are not atomic; if the insert
// fails after a successful upload the blob is orphaned. Orphaned blobs are
// inert and are not reconciled.
func (s *submissionService) Submit(ctx context.Context, studentID primitive.ObjectID, input SubmissionInput) (*domain.Certificate, error) {
	if studentID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: student ID is required", ErrValidation)
	}
	if err := validateSubmission(input); err != nil {
		return nil, err
	}

	// Snapshot the submitter's name and email. Later profile changes must not
	// rewrite historical records.
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: submitting user not found", ErrValidation)
		}
		return nil, err
	}

	// Key layout: certificates/{studentId}/{epochMillis}_{fileName}. The
	// timestamp prefix keeps concurrent uploads by the same student from
	// colliding.
	objectKey := path.Join(
		"certificates",
		studentID.Hex(),
		fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitizeFileName(input.FileName)),
	)

	if err := s.fileStorage.Upload(ctx, objectKey, input.ContentType, input.File); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	cert := &domain.Certificate{
		StudentID:       studentID,
		StudentName:     student.Name,
		StudentEmail:    student.Email,
		CertificateName: input.CertificateName,
		CertificateType: input.CertificateType,
		Institution:     input.Institution,
		IssueDate:       input.IssueDate,
		ExpiryDate:      input.ExpiryDate,
		Grade:           input.Grade,
		FileURL:         s.fileStorage.ObjectURL(objectKey),
		FileName:        input.FileName,
		S3ObjectKey:     objectKey,
		// ID, Status, SubmittedAt set by the repository
	}

	certID, err := s.certificateRepo.Create(ctx, cert)
	if err != nil {
		// The uploaded object is now orphaned. Accepted: unreferenced blobs
		// are harmless, and deleting here could race a retry.
		log.Printf("WARN: certificate insert failed after upload, orphaned object %q: %v", objectKey, err)
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	cert.ID = certID

	return cert, nil
}

// ListMine retrieves the student's certificates sorted most recent first.
func (s *submissionService) ListMine(ctx context.Context, studentID primitive.ObjectID) ([]domain.Certificate, error) {
	if studentID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: student ID is required", ErrValidation)
	}
	certs, err := s.certificateRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	domain.SortBySubmittedAtDesc(certs)
	return certs, nil
}

// FileDownloadURL generates a temporary URL for viewing the certificate file.
func (s *submissionService) FileDownloadURL(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, certificateID primitive.ObjectID) (string, error) {
	cert, err := s.certificateRepo.GetByID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrCertificateNotFound
		}
		return "", err
	}

	if cert.StudentID != requesterID && requesterRole != domain.RoleAdmin {
		return "", ErrCertificateAccess
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, cert.S3ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return url, nil
}

// validateSubmission rejects the payload before any store interaction.
func validateSubmission(input SubmissionInput) error {
	if input.File == nil {
		return fmt.Errorf("%w: certificate file is required", ErrValidation)
	}
	if strings.TrimSpace(input.CertificateName) == "" {
		return fmt.Errorf("%w: certificate name is required", ErrValidation)
	}
	if !input.CertificateType.IsValid() {
		return fmt.Errorf("%w: unknown certificate type %q", ErrValidation, input.CertificateType)
	}
	if strings.TrimSpace(input.Institution) == "" {
		return fmt.Errorf("%w: institution is required", ErrValidation)
	}
	if input.IssueDate.IsZero() {
		return fmt.Errorf("%w: issue date is required", ErrValidation)
	}
	if input.ExpiryDate != nil && input.ExpiryDate.Before(input.IssueDate) {
		return fmt.Errorf("%w: expiry date must not be before issue date", ErrValidation)
	}
	if input.FileName == "" {
		return fmt.Errorf("%w: file name is required", ErrValidation)
	}
	ext := strings.ToLower(path.Ext(input.FileName))
	if !allowedFileExtensions[ext] {
		return fmt.Errorf("%w: unsupported file type %q (accepted: pdf, jpg, png)", ErrValidation, ext)
	}
	return nil
}

// sanitizeFileName strips path separators so user-provided names cannot
// escape the per-student key prefix.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return name
}
