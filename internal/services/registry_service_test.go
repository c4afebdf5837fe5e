package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/crisphq/crisp-interview/internal/models"
	"github.com/crisphq/crisp-interview/internal/utils"
)

// memCandidateRepo reproduces the repository contract in memory,
// including the pending-only terminal updates.
type memCandidateRepo struct {
	rows  map[string]*models.Candidate
	order []string
}

func newMemCandidateRepo() *memCandidateRepo {
	return &memCandidateRepo{rows: map[string]*models.Candidate{}}
}

func (r *memCandidateRepo) Insert(_ context.Context, c *models.Candidate) error {
	cp := *c
	r.rows[c.CandidateID] = &cp
	r.order = append(r.order, c.CandidateID)
	return nil
}

func (r *memCandidateRepo) GetByID(_ context.Context, id string) (*models.Candidate, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCandidateRepo) List(_ context.Context) ([]models.Candidate, error) {
	out := make([]models.Candidate, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.rows[id])
	}
	return out, nil
}

func (r *memCandidateRepo) SearchByName(_ context.Context, nameSubstring string) ([]models.Candidate, error) {
	needle := strings.ToLower(nameSubstring)
	var out []models.Candidate
	for _, id := range r.order {
		c := r.rows[id]
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCandidateRepo) CompletePending(_ context.Context, id string, score int, summary string, answers datatypes.JSON) (bool, error) {
	c, ok := r.rows[id]
	if !ok || c.Status != models.CandidatePending {
		return false, nil
	}
	c.Status = models.CandidateCompleted
	c.Score = &score
	c.Summary = summary
	c.Answers = answers
	return true, nil
}

func (r *memCandidateRepo) AbortPending(_ context.Context, id string) (bool, error) {
	c, ok := r.rows[id]
	if !ok || c.Status != models.CandidatePending {
		return false, nil
	}
	c.Status = models.CandidateAborted
	c.Score = nil
	c.Summary = models.AbortedSummary
	return true, nil
}

func newRegistry() (RegistryService, *memCandidateRepo) {
	repo := newMemCandidateRepo()
	return NewRegistryService(repo, nil), repo
}

func pending(id, name string) *models.Candidate {
	return &models.Candidate{
		CandidateID: id,
		Name:        name,
		Email:       strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Phone:       "N/A",
		Status:      models.CandidatePending,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestRegistryAdd(t *testing.T) {
	reg, _ := newRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Add(ctx, pending("c1", "Jane Doe")))

	got, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CandidatePending, got.Status)
	assert.Nil(t, got.Score, "score stays null until completion")
	assert.JSONEq(t, "[]", string(got.Answers))
}

func TestRegistryAddRejectsDuplicate(t *testing.T) {
	reg, _ := newRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Add(ctx, pending("c1", "Jane Doe")))
	err := reg.Add(ctx, pending("c1", "Jane Doe"))
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
}

func TestRegistryMarkCompleted(t *testing.T) {
	reg, _ := newRegistry()
	ctx := context.Background()
	require.NoError(t, reg.Add(ctx, pending("c1", "Jane Doe")))

	answers := []models.Answer{{AnswerID: "a1", QuestionID: "q1", AnswerText: "x", Score: 8}}
	require.NoError(t, reg.MarkCompleted(ctx, "c1", 8, "strong candidate", answers))

	got, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CandidateCompleted, got.Status)
	require.NotNil(t, got.Score)
	assert.Equal(t, 8, *got.Score)
	assert.Equal(t, "strong candidate", got.Summary)
	assert.Contains(t, string(got.Answers), `"a1"`)
}

func TestRegistryMarkAborted(t *testing.T) {
	reg, _ := newRegistry()
	ctx := context.Background()
	require.NoError(t, reg.Add(ctx, pending("c1", "Jane Doe")))

	require.NoError(t, reg.MarkAborted(ctx, "c1"))

	got, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CandidateAborted, got.Status)
	assert.Nil(t, got.Score, "an aborted candidate has no score")
	assert.Equal(t, models.AbortedSummary, got.Summary)
}

func TestRegistryTerminalStatusWins(t *testing.T) {
	ctx := context.Background()

	t.Run("completed then aborted", func(t *testing.T) {
		reg, _ := newRegistry()
		require.NoError(t, reg.Add(ctx, pending("c1", "Jane Doe")))
		require.NoError(t, reg.MarkCompleted(ctx, "c1", 7, "fine", nil))
		require.NoError(t, reg.MarkAborted(ctx, "c1"))

		got, err := reg.Get(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, models.CandidateCompleted, got.Status)
	})

	t.Run("aborted then completed", func(t *testing.T) {
		reg, _ := newRegistry()
		require.NoError(t, reg.Add(ctx, pending("c1", "Jane Doe")))
		require.NoError(t, reg.MarkAborted(ctx, "c1"))
		require.NoError(t, reg.MarkCompleted(ctx, "c1", 7, "fine", nil))

		got, err := reg.Get(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, models.CandidateAborted, got.Status)
		assert.Nil(t, got.Score)
	})
}

func TestRegistryMarkUnknownCandidateIsNoop(t *testing.T) {
	reg, _ := newRegistry()
	ctx := context.Background()

	assert.NoError(t, reg.MarkCompleted(ctx, "ghost", 5, "x", nil))
	assert.NoError(t, reg.MarkAborted(ctx, "ghost"))
}

func TestRegistrySearch(t *testing.T) {
	reg, _ := newRegistry()
	ctx := context.Background()
	require.NoError(t, reg.Add(ctx, pending("c1", "Jane Doe")))
	require.NoError(t, reg.Add(ctx, pending("c2", "John Smith")))
	require.NoError(t, reg.Add(ctx, pending("c3", "Janet Jones")))

	rows, err := reg.Search(ctx, "jan")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane Doe", rows[0].Name)
	assert.Equal(t, "Janet Jones", rows[1].Name)

	// empty query lists everyone
	rows, err = reg.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRegistryGetUnknown(t *testing.T) {
	reg, _ := newRegistry()
	_, err := reg.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}
