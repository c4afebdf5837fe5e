package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transcript is the archived copy of a finished session, written once
// when a session reaches a terminal outcome.
type Transcript struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   string             `bson:"session_id" json:"session_id"`
	CandidateID string             `bson:"candidate_id" json:"candidate_id"`
	Outcome     string             `bson:"outcome" json:"outcome"` // completed|aborted

	Questions []Question `bson:"questions" json:"questions"`
	Answers   []Answer   `bson:"answers" json:"answers"`

	FinalScore *int   `bson:"final_score,omitempty" json:"final_score,omitempty"`
	Summary    string `bson:"summary,omitempty" json:"summary,omitempty"`

	ArchivedAt time.Time `bson:"archived_at" json:"archived_at"`
}
