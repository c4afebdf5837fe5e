package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisphq/crisp-interview/internal/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	score := 8
	state := models.SessionState{
		SessionID:   "s1",
		CandidateID: "c1",
		Status:      models.StatusInProgress,
		ExtractedData: &models.Contact{
			Name:  "Jane Doe",
			Email: "jane@example.com",
			Phone: "555-123-4567",
		},
		Questions: []models.Question{
			{QuestionID: "q1", QuestionText: "what is a goroutine", Difficulty: models.DifficultyEasy, TimeLimit: 20},
		},
		Answers: []models.Answer{
			{AnswerID: "a1", QuestionID: "q1", QuestionText: "what is a goroutine", AnswerText: "a lightweight thread", Score: 8, Feedback: "ok"},
		},
		CurrentQuestionIndex: 1,
		TimerSeconds:         14,
		Draft:                "half an answer",
		FinalScore:           &score,
		AISummary:            "promising",
	}
	require.NoError(t, s.Save(ctx, &state))

	got, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state, *got, "every field survives the round trip")

	require.NoError(t, s.Clear(ctx))
	_, ok, err = s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
