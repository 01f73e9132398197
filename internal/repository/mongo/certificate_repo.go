package mongo

import (
	"context"
	"errors"
	"time"

	"edvault/cert-portal/internal/domain"
	"edvault/cert-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const certificateCollectionName = "certificates"

// mongoCertificateRepository implements repository.CertificateRepository
type mongoCertificateRepository struct {
	collection *mongo.Collection
}

// NewMongoCertificateRepository creates a new Certificate repository backed by MongoDB.
func NewMongoCertificateRepository(db *mongo.Database) repository.CertificateRepository {
	return &mongoCertificateRepository{
		collection: db.Collection(certificateCollectionName),
	}
}

// Create inserts a new certificate record into the database.
// Every record starts pending with no verification fields set.
func (r *mongoCertificateRepository) Create(ctx context.Context, cert *domain.Certificate) (primitive.ObjectID, error) {
	if cert.StudentID == primitive.NilObjectID ||
		cert.CertificateName == "" ||
		cert.Institution == "" ||
		cert.FileURL == "" ||
		cert.FileName == "" {
		return primitive.NilObjectID, errors.New("certificate requires studentId, certificateName, institution, fileUrl, and fileName")
	}

	cert.ID = primitive.NewObjectID()
	cert.Status = domain.StatusPending
	cert.SubmittedAt = time.Now().UTC()
	cert.VerifiedBy = nil
	cert.VerifiedAt = nil
	cert.AdminComments = ""

	result, err := r.collection.InsertOne(ctx, cert)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a certificate by its ID.
func (r *mongoCertificateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Certificate, error) {
	var cert domain.Certificate
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&cert)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// GetByStudentID retrieves all certificates owned by the given student.
// An equality filter is pushed down to the store; ordering is the caller's job.
func (r *mongoCertificateRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Certificate, error) {
	filter := bson.M{"studentId": studentID}
	return r.findCertificates(ctx, filter)
}

// GetAll retrieves every certificate record. Used by the admin review queue.
func (r *mongoCertificateRepository) GetAll(ctx context.Context) ([]domain.Certificate, error) {
	return r.findCertificates(ctx, bson.M{})
}

func (r *mongoCertificateRepository) findCertificates(ctx context.Context, filter bson.M) ([]domain.Certificate, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	certs := []domain.Certificate{}
	if err := cursor.All(ctx, &certs); err != nil {
		return nil, err
	}
	return certs, nil
}

// UpdateVerification applies an admin decision as a partial update touching
// exactly status, adminComments, verifiedBy, and verifiedAt. An empty comment
// removes the adminComments field rather than storing an empty string.
func (r *mongoCertificateRepository) UpdateVerification(ctx context.Context, id primitive.ObjectID, update domain.VerificationUpdate) error {
	if !update.Status.IsDecision() {
		return errors.New("verification status must be approved or rejected")
	}

	set := bson.M{
		"status":     update.Status,
		"verifiedBy": update.VerifiedBy,
		"verifiedAt": update.VerifiedAt,
	}
	changes := bson.M{}
	if update.Comments != "" {
		set["adminComments"] = update.Comments
	} else {
		changes["$unset"] = bson.M{"adminComments": ""}
	}
	changes["$set"] = set

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, changes)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureCertificateIndexes creates necessary indexes for the certificates collection.
func EnsureCertificateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Student dashboard lookup
			Keys:    bson.D{{Key: "studentId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Admin queue filtering by status
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			// Most-recent-first listings
			Keys:    bson.D{{Key: "submittedAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
