package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/crisphq/crisp-interview/internal/models"
	pgrepo "github.com/crisphq/crisp-interview/internal/repositories/postgres"
	"github.com/crisphq/crisp-interview/internal/utils"
)

// RegistryService is the durable candidate registry. Candidates are
// created when a session starts and mutated exactly once to a terminal
// status; terminal statuses are never overwritten.
type RegistryService interface {
	Add(ctx context.Context, c *models.Candidate) error
	MarkCompleted(ctx context.Context, candidateID string, finalScore int, summary string, answers []models.Answer) error
	MarkAborted(ctx context.Context, candidateID string) error
	Search(ctx context.Context, nameSubstring string) ([]models.Candidate, error)
	Get(ctx context.Context, candidateID string) (*models.Candidate, error)
	List(ctx context.Context) ([]models.Candidate, error)
}

type registryService struct {
	repo pgrepo.CandidateRepository
	log  *logrus.Logger
}

func NewRegistryService(repo pgrepo.CandidateRepository, log *logrus.Logger) RegistryService {
	return &registryService{repo: repo, log: log}
}

func (s *registryService) Add(ctx context.Context, c *models.Candidate) error {
	const op = "RegistryService.Add"

	if c == nil || c.CandidateID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}

	if _, err := s.repo.GetByID(ctx, c.CandidateID); err == nil {
		// duplicate ids are a programming error, not user input
		return utils.E(utils.CodeConflict, op, "candidate already exists", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeInternal, op, "failed to check candidate", err)
	}

	if c.Status == "" {
		c.Status = models.CandidatePending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Answers == nil {
		c.Answers = datatypes.JSON([]byte("[]"))
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to insert candidate", err)
	}
	return nil
}

func (s *registryService) MarkCompleted(ctx context.Context, candidateID string, finalScore int, summary string, answers []models.Answer) error {
	const op = "RegistryService.MarkCompleted"

	if candidateID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}

	raw, err := json.Marshal(answers)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to serialize answers", err)
	}

	updated, err := s.repo.CompletePending(ctx, candidateID, finalScore, summary, datatypes.JSON(raw))
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to mark candidate completed", err)
	}
	if !updated && s.log != nil {
		// missing or already terminal: a no-op by design of the registry
		s.log.WithField("candidate_id", candidateID).Debug("mark completed was a no-op")
	}
	return nil
}

func (s *registryService) MarkAborted(ctx context.Context, candidateID string) error {
	const op = "RegistryService.MarkAborted"

	if candidateID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}

	updated, err := s.repo.AbortPending(ctx, candidateID)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to mark candidate aborted", err)
	}
	if !updated && s.log != nil {
		s.log.WithField("candidate_id", candidateID).Debug("mark aborted was a no-op")
	}
	return nil
}

func (s *registryService) Search(ctx context.Context, nameSubstring string) ([]models.Candidate, error) {
	const op = "RegistryService.Search"

	if nameSubstring == "" {
		return s.List(ctx)
	}
	rows, err := s.repo.SearchByName(ctx, nameSubstring)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to search candidates", err)
	}
	return rows, nil
}

func (s *registryService) Get(ctx context.Context, candidateID string) (*models.Candidate, error) {
	const op = "RegistryService.Get"

	if candidateID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}
	c, err := s.repo.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get candidate", err)
	}
	return c, nil
}

func (s *registryService) List(ctx context.Context) ([]models.Candidate, error) {
	const op = "RegistryService.List"

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list candidates", err)
	}
	return rows, nil
}
