package domain

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CertificateStatus type for the certificate verification lifecycle
type CertificateStatus string

const (
	StatusPending  CertificateStatus = "pending"
	StatusApproved CertificateStatus = "approved"
	StatusRejected CertificateStatus = "rejected"
)

// IsDecision reports whether the status is one an admin may set during verification.
func (s CertificateStatus) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// CertificateType tags what kind of credential was submitted.
type CertificateType string

const (
	TypeDegree       CertificateType = "degree"
	TypeDiploma      CertificateType = "diploma"
	TypeCourse       CertificateType = "course"
	TypeProfessional CertificateType = "professional"
	TypeSkill        CertificateType = "skill"
	TypeOther        CertificateType = "other"
)

// IsValid reports whether the type is one of the known tags.
func (t CertificateType) IsValid() bool {
	switch t {
	case TypeDegree, TypeDiploma, TypeCourse, TypeProfessional, TypeSkill, TypeOther:
		return true
	}
	return false
}

// Certificate is a submitted credential record. The actual file resides in S3;
// FileURL is a durable link to it and S3ObjectKey is the bucket key used for
// presigned previews.
//
// StudentName and StudentEmail are snapshots taken at submission time. Later
// profile changes do not retroactively update historical records.
type Certificate struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID       primitive.ObjectID  `bson:"studentId" json:"studentId"` // Immutable after creation
	StudentName     string              `bson:"studentName" json:"studentName"`
	StudentEmail    string              `bson:"studentEmail" json:"studentEmail"`
	CertificateName string              `bson:"certificateName" json:"certificateName"`
	CertificateType CertificateType     `bson:"certificateType" json:"certificateType"`
	Institution     string              `bson:"institution" json:"institution"`
	IssueDate       time.Time           `bson:"issueDate" json:"issueDate"`
	ExpiryDate      *time.Time          `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"` // Must be >= IssueDate when present
	Grade           string              `bson:"grade,omitempty" json:"grade,omitempty"`
	FileURL         string              `bson:"fileUrl" json:"fileUrl"`
	FileName        string              `bson:"fileName" json:"fileName"` // Original filename, drives preview rendering
	S3ObjectKey     string              `bson:"s3ObjectKey" json:"-"`     // Internal use only
	Status          CertificateStatus   `bson:"status" json:"status"`
	AdminComments   string              `bson:"adminComments,omitempty" json:"adminComments,omitempty"` // Set only by verification
	VerifiedBy      *primitive.ObjectID `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`       // Admin who decided
	VerifiedAt      *time.Time          `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	SubmittedAt     time.Time           `bson:"submittedAt" json:"submittedAt"` // Immutable after creation
}

// VerificationUpdate is the exact set of fields a verification decision touches.
// Everything else on the record is left alone.
type VerificationUpdate struct {
	Status     CertificateStatus
	Comments   string // Empty means the adminComments field is removed
	VerifiedBy primitive.ObjectID
	VerifiedAt time.Time
}

// NewVerificationUpdate derives the partial update for an admin decision.
// Re-verifying an already-decided record is allowed on purpose: every call
// overwrites the decision fields, so an admin can overturn a prior decision.
func NewVerificationUpdate(decision CertificateStatus, adminID primitive.ObjectID, comments string) VerificationUpdate {
	return VerificationUpdate{
		Status:     decision,
		Comments:   comments,
		VerifiedBy: adminID,
		VerifiedAt: time.Now().UTC(),
	}
}

// Apply mirrors the update into an in-memory copy of the record. Callers must
// only do this after the store write has succeeded.
func (u VerificationUpdate) Apply(cert *Certificate) {
	cert.Status = u.Status
	cert.AdminComments = u.Comments
	verifiedBy := u.VerifiedBy
	verifiedAt := u.VerifiedAt
	cert.VerifiedBy = &verifiedBy
	cert.VerifiedAt = &verifiedAt
}

// StatusCounts aggregates certificates by verification status.
type StatusCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// CountsByStatus folds over the given records. The counts reflect the loaded
// set, not the store; a stale slice gives stale counts until re-fetched.
func CountsByStatus(certs []Certificate) StatusCounts {
	counts := StatusCounts{Total: len(certs)}
	for _, c := range certs {
		switch c.Status {
		case StatusPending:
			counts.Pending++
		case StatusApproved:
			counts.Approved++
		case StatusRejected:
			counts.Rejected++
		}
	}
	return counts
}

// FilterByStatus returns the subsequence of certs with the given status,
// preserving order. The special value "all" returns the input unchanged.
func FilterByStatus(certs []Certificate, status string) []Certificate {
	if status == "" || status == "all" {
		return certs
	}
	filtered := make([]Certificate, 0, len(certs))
	for _, c := range certs {
		if string(c.Status) == status {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// SortBySubmittedAtDesc orders certificates most recent first. The store does
// not guarantee ordering, so listing code sorts after retrieval.
func SortBySubmittedAtDesc(certs []Certificate) {
	sort.SliceStable(certs, func(i, j int) bool {
		return certs[i].SubmittedAt.After(certs[j].SubmittedAt)
	})
}
