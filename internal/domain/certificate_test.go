package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func certWithStatus(status CertificateStatus, submittedAt time.Time) Certificate {
	return Certificate{
		ID:          primitive.NewObjectID(),
		Status:      status,
		SubmittedAt: submittedAt,
	}
}

func TestCountsByStatus(t *testing.T) {
	now := time.Now()

	t.Run("Should count each status and total", func(t *testing.T) {
		certs := []Certificate{
			certWithStatus(StatusPending, now),
			certWithStatus(StatusApproved, now),
			certWithStatus(StatusApproved, now),
			certWithStatus(StatusRejected, now),
		}

		counts := CountsByStatus(certs)

		assert.Equal(t, 4, counts.Total)
		assert.Equal(t, 1, counts.Pending)
		assert.Equal(t, 2, counts.Approved)
		assert.Equal(t, 1, counts.Rejected)
	})

	t.Run("Should satisfy total = pending + approved + rejected", func(t *testing.T) {
		certs := []Certificate{
			certWithStatus(StatusPending, now),
			certWithStatus(StatusRejected, now),
			certWithStatus(StatusApproved, now),
			certWithStatus(StatusPending, now),
			certWithStatus(StatusPending, now),
		}

		counts := CountsByStatus(certs)

		assert.Equal(t, counts.Total, counts.Pending+counts.Approved+counts.Rejected)
	})

	t.Run("Should return zeros for an empty slice", func(t *testing.T) {
		counts := CountsByStatus(nil)
		assert.Equal(t, StatusCounts{}, counts)
	})
}

func TestFilterByStatus(t *testing.T) {
	now := time.Now()
	certs := []Certificate{
		certWithStatus(StatusPending, now),
		certWithStatus(StatusApproved, now),
		certWithStatus(StatusPending, now),
		certWithStatus(StatusRejected, now),
	}

	t.Run("Should return all records unchanged for the all filter", func(t *testing.T) {
		filtered := FilterByStatus(certs, "all")
		assert.Equal(t, certs, filtered)
	})

	t.Run("Should return exactly the matching subsequence in order", func(t *testing.T) {
		filtered := FilterByStatus(certs, "pending")

		require.Len(t, filtered, 2)
		assert.Equal(t, certs[0].ID, filtered[0].ID)
		assert.Equal(t, certs[2].ID, filtered[1].ID)
	})

	t.Run("Should return empty slice when nothing matches", func(t *testing.T) {
		filtered := FilterByStatus(certs[:1], "rejected")
		assert.Empty(t, filtered)
	})
}

func TestSortBySubmittedAtDesc(t *testing.T) {
	t.Run("Should order most recent first", func(t *testing.T) {
		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		certs := []Certificate{
			certWithStatus(StatusPending, base),
			certWithStatus(StatusPending, base.Add(2*time.Hour)),
			certWithStatus(StatusPending, base.Add(time.Hour)),
		}

		SortBySubmittedAtDesc(certs)

		for i := 0; i < len(certs)-1; i++ {
			assert.False(t, certs[i].SubmittedAt.Before(certs[i+1].SubmittedAt))
		}
	})
}

func TestVerificationUpdate(t *testing.T) {
	t.Run("Should derive decision fields and apply them to a copy", func(t *testing.T) {
		adminID := primitive.NewObjectID()
		update := NewVerificationUpdate(StatusRejected, adminID, "Illegible scan")

		assert.Equal(t, StatusRejected, update.Status)
		assert.Equal(t, adminID, update.VerifiedBy)
		assert.WithinDuration(t, time.Now().UTC(), update.VerifiedAt, time.Second)

		cert := certWithStatus(StatusPending, time.Now())
		update.Apply(&cert)

		assert.Equal(t, StatusRejected, cert.Status)
		assert.Equal(t, "Illegible scan", cert.AdminComments)
		require.NotNil(t, cert.VerifiedBy)
		assert.Equal(t, adminID, *cert.VerifiedBy)
		require.NotNil(t, cert.VerifiedAt)
	})

	t.Run("Should allow overwriting a previous decision", func(t *testing.T) {
		firstAdmin := primitive.NewObjectID()
		secondAdmin := primitive.NewObjectID()

		cert := certWithStatus(StatusPending, time.Now())
		NewVerificationUpdate(StatusApproved, firstAdmin, "").Apply(&cert)
		NewVerificationUpdate(StatusRejected, secondAdmin, "Revoked by issuer").Apply(&cert)

		assert.Equal(t, StatusRejected, cert.Status)
		assert.Equal(t, secondAdmin, *cert.VerifiedBy)
		assert.Equal(t, "Revoked by issuer", cert.AdminComments)
	})
}

func TestCertificateType(t *testing.T) {
	t.Run("Should accept all known type tags", func(t *testing.T) {
		for _, typ := range []CertificateType{TypeDegree, TypeDiploma, TypeCourse, TypeProfessional, TypeSkill, TypeOther} {
			assert.True(t, typ.IsValid(), string(typ))
		}
	})

	t.Run("Should reject unknown tags", func(t *testing.T) {
		assert.False(t, CertificateType("badge").IsValid())
		assert.False(t, CertificateType("").IsValid())
	})
}

func TestCertificateStatusIsDecision(t *testing.T) {
	assert.True(t, StatusApproved.IsDecision())
	assert.True(t, StatusRejected.IsDecision())
	assert.False(t, StatusPending.IsDecision())
}
