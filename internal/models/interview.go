package models

// Status is the interview session lifecycle state.
type Status string

const (
	StatusIdle                 Status = "idle"
	StatusParsing              Status = "parsing"
	StatusAwaitingConfirmation Status = "awaiting-confirmation"
	StatusLoading              Status = "loading"
	StatusInProgress           Status = "in-progress"
	StatusCompleted            Status = "completed"
	StatusError                Status = "error"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is immutable once fetched for a session.
type Question struct {
	QuestionID   string     `json:"questionId"`
	QuestionText string     `json:"questionText"`
	Difficulty   Difficulty `json:"difficulty"`
	TimeLimit    int        `json:"timeLimit"` // seconds: 20 easy, 60 medium, 120 hard
}

// Answer is created exactly once per question and never mutated after.
type Answer struct {
	AnswerID     string `json:"answerId"`
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
	AnswerText   string `json:"answerText"` // serialized rich-text markup
	Score        int    `json:"score"`      // 0-10
	Feedback     string `json:"feedback"`
}

// Contact is the best-effort record recovered from an uploaded resume.
// Any field may be empty if not found.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SessionState is the full state of the single active interview attempt.
// Invariants:
//   - len(Answers) == CurrentQuestionIndex while in-progress
//   - len(Answers) == len(Questions) once completed
//   - TimerSeconds resets to the new question's limit exactly when
//     CurrentQuestionIndex advances and never goes negative
type SessionState struct {
	SessionID    string `json:"sessionId,omitempty"`
	CandidateID  string `json:"candidateId,omitempty"`
	Status       Status `json:"status"`
	IsSubmitting bool   `json:"isSubmitting"`
	Error        string `json:"error,omitempty"`

	ExtractedData *Contact `json:"extractedData,omitempty"`
	ResumeObject  string   `json:"resumeObject,omitempty"` // storage object key

	Questions            []Question `json:"questions"`
	Answers              []Answer   `json:"answers"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	TimerSeconds         int        `json:"timerSeconds"`
	Draft                string     `json:"draft"`

	FinalScore *int   `json:"finalScore,omitempty"`
	AISummary  string `json:"aiSummary,omitempty"`
}

// NewSessionState returns the initial empty session.
func NewSessionState() SessionState {
	return SessionState{
		Status:    StatusIdle,
		Questions: []Question{},
		Answers:   []Answer{},
	}
}

// CurrentQuestion returns the pending question, or false when the
// session is not on a question.
func (s *SessionState) CurrentQuestion() (Question, bool) {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}
