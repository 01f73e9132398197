package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"edvault/cert-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validInput() SubmissionInput {
	return SubmissionInput{
		CertificateName: "BSc Physics",
		CertificateType: domain.TypeDegree,
		Institution:     "MIT",
		IssueDate:       time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		FileName:        "diploma.pdf",
		ContentType:     "application/pdf",
		File:            strings.NewReader("%PDF-1.4 fake"),
	}
}

func newSubmissionFixture() (SubmissionService, *fakeCertificateRepo, *fakeUserRepo, *fakeStorage, *domain.User) {
	student := &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Role:  domain.RoleStudent,
	}
	certRepo := newFakeCertificateRepo()
	userRepo := newFakeUserRepo(student)
	store := &fakeStorage{}
	svc := NewSubmissionService(certRepo, userRepo, store)
	return svc, certRepo, userRepo, store, student
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a pending record with snapshot and no verification fields", func(t *testing.T) {
		svc, _, _, store, student := newSubmissionFixture()

		cert, err := svc.Submit(ctx, student.ID, validInput())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, cert.Status)
		assert.Nil(t, cert.VerifiedBy)
		assert.Nil(t, cert.VerifiedAt)
		assert.Empty(t, cert.AdminComments)
		assert.Equal(t, student.ID, cert.StudentID)
		assert.Equal(t, "Ada Lovelace", cert.StudentName)
		assert.Equal(t, "ada@example.com", cert.StudentEmail)
		assert.Equal(t, "diploma.pdf", cert.FileName)
		assert.WithinDuration(t, time.Now().UTC(), cert.SubmittedAt, time.Second)

		require.Len(t, store.uploadedKeys, 1)
		key := store.uploadedKeys[0]
		assert.True(t, strings.HasPrefix(key, "certificates/"+student.ID.Hex()+"/"), key)
		assert.True(t, strings.HasSuffix(key, "_diploma.pdf"), key)
		assert.Equal(t, store.ObjectURL(key), cert.FileURL)
	})

	t.Run("Should reject missing institution before any store call", func(t *testing.T) {
		svc, certRepo, _, store, student := newSubmissionFixture()
		input := validInput()
		input.Institution = ""

		_, err := svc.Submit(ctx, student.ID, input)

		require.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, store.uploadedKeys)
		assert.Zero(t, certRepo.createCalls)
	})

	t.Run("Should reject a missing file", func(t *testing.T) {
		svc, _, _, store, student := newSubmissionFixture()
		input := validInput()
		input.File = nil

		_, err := svc.Submit(ctx, student.ID, input)

		require.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, store.uploadedKeys)
	})

	t.Run("Should reject an unknown certificate type", func(t *testing.T) {
		svc, _, _, _, student := newSubmissionFixture()
		input := validInput()
		input.CertificateType = domain.CertificateType("badge")

		_, err := svc.Submit(ctx, student.ID, input)

		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Should reject an expiry date before the issue date", func(t *testing.T) {
		svc, _, _, _, student := newSubmissionFixture()
		input := validInput()
		expired := input.IssueDate.AddDate(-1, 0, 0)
		input.ExpiryDate = &expired

		_, err := svc.Submit(ctx, student.ID, input)

		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Should reject an unsupported file extension", func(t *testing.T) {
		svc, _, _, store, student := newSubmissionFixture()
		input := validInput()
		input.FileName = "diploma.exe"

		_, err := svc.Submit(ctx, student.ID, input)

		require.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, store.uploadedKeys)
	})

	t.Run("Should map a blob write failure to ErrUpload and skip the insert", func(t *testing.T) {
		svc, certRepo, _, store, student := newSubmissionFixture()
		store.uploadErr = errors.New("connection reset")

		_, err := svc.Submit(ctx, student.ID, validInput())

		require.ErrorIs(t, err, ErrUpload)
		assert.Zero(t, certRepo.createCalls)
	})

	t.Run("Should map an insert failure to ErrPersist and leave the blob orphaned", func(t *testing.T) {
		svc, certRepo, _, store, student := newSubmissionFixture()
		certRepo.createErr = errors.New("write concern timeout")

		_, err := svc.Submit(ctx, student.ID, validInput())

		require.ErrorIs(t, err, ErrPersist)
		assert.Len(t, store.uploadedKeys, 1) // uploaded, never referenced
	})

	t.Run("Should reject a submitter that does not exist", func(t *testing.T) {
		svc, _, _, _, _ := newSubmissionFixture()

		_, err := svc.Submit(ctx, primitive.NewObjectID(), validInput())

		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestListMine(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return only own records sorted most recent first", func(t *testing.T) {
		svc, certRepo, _, _, student := newSubmissionFixture()
		other := primitive.NewObjectID()
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		for i, owner := range []primitive.ObjectID{student.ID, other, student.ID, student.ID} {
			id := primitive.NewObjectID()
			certRepo.certs[id] = &domain.Certificate{
				ID:          id,
				StudentID:   owner,
				SubmittedAt: base.Add(time.Duration(i) * time.Hour),
				Status:      domain.StatusPending,
			}
		}

		certs, err := svc.ListMine(ctx, student.ID)

		require.NoError(t, err)
		require.Len(t, certs, 3)
		for _, c := range certs {
			assert.Equal(t, student.ID, c.StudentID)
		}
		for i := 0; i < len(certs)-1; i++ {
			assert.False(t, certs[i].SubmittedAt.Before(certs[i+1].SubmittedAt))
		}
	})
}

func TestFileDownloadURL(t *testing.T) {
	ctx := context.Background()

	newCert := func(owner primitive.ObjectID) *domain.Certificate {
		return &domain.Certificate{
			ID:          primitive.NewObjectID(),
			StudentID:   owner,
			S3ObjectKey: "certificates/" + owner.Hex() + "/1700000000000_diploma.pdf",
			Status:      domain.StatusPending,
			SubmittedAt: time.Now(),
		}
	}

	t.Run("Should return a presigned URL for the owner", func(t *testing.T) {
		svc, certRepo, _, _, student := newSubmissionFixture()
		cert := newCert(student.ID)
		certRepo.certs[cert.ID] = cert

		url, err := svc.FileDownloadURL(ctx, student.ID, domain.RoleStudent, cert.ID)

		require.NoError(t, err)
		assert.Contains(t, url, cert.S3ObjectKey)
	})

	t.Run("Should allow admins regardless of ownership", func(t *testing.T) {
		svc, certRepo, _, _, student := newSubmissionFixture()
		cert := newCert(student.ID)
		certRepo.certs[cert.ID] = cert

		_, err := svc.FileDownloadURL(ctx, primitive.NewObjectID(), domain.RoleAdmin, cert.ID)

		require.NoError(t, err)
	})

	t.Run("Should deny other students", func(t *testing.T) {
		svc, certRepo, _, _, student := newSubmissionFixture()
		cert := newCert(student.ID)
		certRepo.certs[cert.ID] = cert

		_, err := svc.FileDownloadURL(ctx, primitive.NewObjectID(), domain.RoleStudent, cert.ID)

		require.ErrorIs(t, err, ErrCertificateAccess)
	})

	t.Run("Should report a missing certificate", func(t *testing.T) {
		svc, _, _, _, student := newSubmissionFixture()

		_, err := svc.FileDownloadURL(ctx, student.ID, domain.RoleStudent, primitive.NewObjectID())

		require.ErrorIs(t, err, ErrCertificateNotFound)
	})
}
