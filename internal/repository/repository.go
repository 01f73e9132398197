package repository

import (
	"context"

	"edvault/cert-portal/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// CertificateRepository defines the interface for interacting with certificate records.
type CertificateRepository interface {
	Create(ctx context.Context, cert *domain.Certificate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Certificate, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Certificate, error)
	GetAll(ctx context.Context) ([]domain.Certificate, error)
	// UpdateVerification applies the decision fields as a partial update.
	// No other fields on the record are touched.
	UpdateVerification(ctx context.Context, id primitive.ObjectID, update domain.VerificationUpdate) error
}
