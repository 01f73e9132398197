package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"edvault/cert-portal/internal/domain"
	"edvault/cert-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Repository fakes ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, errors.New("user with this email already exists")
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

type fakeCertificateRepo struct {
	certs map[primitive.ObjectID]*domain.Certificate

	createErr error
	updateErr error

	createCalls int
	updateCalls int
	lastUpdate  domain.VerificationUpdate
}

func newFakeCertificateRepo(certs ...*domain.Certificate) *fakeCertificateRepo {
	repo := &fakeCertificateRepo{certs: map[primitive.ObjectID]*domain.Certificate{}}
	for _, c := range certs {
		repo.certs[c.ID] = c
	}
	return repo
}

func (r *fakeCertificateRepo) Create(ctx context.Context, cert *domain.Certificate) (primitive.ObjectID, error) {
	r.createCalls++
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	cert.ID = primitive.NewObjectID()
	cert.Status = domain.StatusPending
	cert.SubmittedAt = time.Now().UTC()
	cert.VerifiedBy = nil
	cert.VerifiedAt = nil
	cert.AdminComments = ""
	stored := *cert
	r.certs[cert.ID] = &stored
	return cert.ID, nil
}

func (r *fakeCertificateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Certificate, error) {
	c, ok := r.certs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCertificateRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Certificate, error) {
	result := []domain.Certificate{}
	for _, c := range r.certs {
		if c.StudentID == studentID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (r *fakeCertificateRepo) GetAll(ctx context.Context) ([]domain.Certificate, error) {
	result := []domain.Certificate{}
	for _, c := range r.certs {
		result = append(result, *c)
	}
	return result, nil
}

func (r *fakeCertificateRepo) UpdateVerification(ctx context.Context, id primitive.ObjectID, update domain.VerificationUpdate) error {
	r.updateCalls++
	if r.updateErr != nil {
		return r.updateErr
	}
	c, ok := r.certs[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.lastUpdate = update
	update.Apply(c)
	return nil
}

// --- Storage fake ---

type fakeStorage struct {
	uploadErr  error
	presignErr error

	uploadedKeys  []string
	uploadedTypes []string
}

func (s *fakeStorage) Upload(ctx context.Context, objectKey string, contentType string, body io.Reader) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	if body != nil {
		_, _ = io.Copy(io.Discard, body)
	}
	s.uploadedKeys = append(s.uploadedKeys, objectKey)
	s.uploadedTypes = append(s.uploadedTypes, contentType)
	return nil
}

func (s *fakeStorage) ObjectURL(objectKey string) string {
	return fmt.Sprintf("https://files.example.com/%s", objectKey)
}

func (s *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return fmt.Sprintf("https://files.example.com/%s?signed=1", objectKey), nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, objectKey string) error {
	return nil
}
