package models

import (
	"time"

	"gorm.io/datatypes"
)

// CandidateStatus is the durable outcome of a candidate's attempt.
type CandidateStatus string

const (
	CandidatePending   CandidateStatus = "Pending Interview"
	CandidateCompleted CandidateStatus = "Completed"
	CandidateAborted   CandidateStatus = "Aborted"
)

// AbortedSummary is the fixed summary written when a session is ended early.
const AbortedSummary = "Session was ended prematurely by the user."

// Candidate is the durable projection of a finished or aborted session.
// Rows are never deleted and a terminal status is never overwritten.
//
// Score is nullable numeric: NULL until the session completes and NULL
// for aborted candidates (rendered as "N/A" at the API boundary).
type Candidate struct {
	CandidateID string          `gorm:"column:candidate_id;type:uuid;primaryKey" json:"candidateId"`
	Name        string          `gorm:"column:name;type:text;index" json:"name"`
	Email       string          `gorm:"column:email;type:text" json:"email"`
	Phone       string          `gorm:"column:phone;type:text" json:"phone"`
	Status      CandidateStatus `gorm:"column:status;type:text" json:"status"`

	Score   *int           `gorm:"column:score" json:"score"`
	Summary string         `gorm:"column:summary;type:text" json:"summary"`
	Answers datatypes.JSON `gorm:"column:answers;type:jsonb" json:"answers"`

	ResumeObject string `gorm:"column:resume_object;type:text" json:"resumeObject,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"createdAt"`
}

func (Candidate) TableName() string { return "candidates" }
