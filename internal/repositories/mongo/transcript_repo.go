package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crisphq/crisp-interview/internal/models"
	"github.com/crisphq/crisp-interview/internal/utils"
)

type TranscriptRepository interface {
	Archive(ctx context.Context, t *models.Transcript) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Transcript, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Transcript, error)
}

type transcriptRepo struct {
	col *mongo.Collection
}

func NewTranscriptRepo(db *mongo.Database) TranscriptRepository {
	return &transcriptRepo{col: db.Collection("transcripts")}
}

func (r *transcriptRepo) Archive(ctx context.Context, t *models.Transcript) error {
	if t.ArchivedAt.IsZero() {
		t.ArchivedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *transcriptRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Transcript, error) {
	var t models.Transcript
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &t, err
}

func (r *transcriptRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.Transcript, error) {
	cur, err := r.col.Find(ctx, bson.M{"candidate_id": candidateID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Transcript
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
