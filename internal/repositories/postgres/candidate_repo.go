package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crisphq/crisp-interview/internal/models"
	"github.com/crisphq/crisp-interview/internal/utils"
)

type CandidateRepository interface {
	Insert(ctx context.Context, c *models.Candidate) error
	GetByID(ctx context.Context, candidateID string) (*models.Candidate, error)
	List(ctx context.Context) ([]models.Candidate, error)
	SearchByName(ctx context.Context, nameSubstring string) ([]models.Candidate, error)

	// CompletePending and AbortPending only touch rows still in the
	// Pending Interview status, so a terminal status is never
	// overwritten: whichever session-end path lands first wins.
	CompletePending(ctx context.Context, candidateID string, score int, summary string, answers datatypes.JSON) (bool, error)
	AbortPending(ctx context.Context, candidateID string) (bool, error)
}

type candidateRepo struct {
	db *gorm.DB
}

func NewCandidateRepo(db *gorm.DB) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) Insert(ctx context.Context, c *models.Candidate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *candidateRepo) GetByID(ctx context.Context, candidateID string) (*models.Candidate, error) {
	var c models.Candidate
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *candidateRepo) List(ctx context.Context) ([]models.Candidate, error) {
	var rows []models.Candidate
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *candidateRepo) SearchByName(ctx context.Context, nameSubstring string) ([]models.Candidate, error) {
	var rows []models.Candidate
	pattern := "%" + strings.ToLower(nameSubstring) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *candidateRepo) CompletePending(ctx context.Context, candidateID string, score int, summary string, answers datatypes.JSON) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("candidate_id = ? AND status = ?", candidateID, models.CandidatePending).
		Updates(map[string]any{
			"status":  models.CandidateCompleted,
			"score":   score,
			"summary": summary,
			"answers": answers,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *candidateRepo) AbortPending(ctx context.Context, candidateID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("candidate_id = ? AND status = ?", candidateID, models.CandidatePending).
		Updates(map[string]any{
			"status":  models.CandidateAborted,
			"score":   gorm.Expr("NULL"),
			"summary": models.AbortedSummary,
		})
	return res.RowsAffected > 0, res.Error
}
