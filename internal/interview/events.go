package interview

import "github.com/crisphq/crisp-interview/internal/models"

// The session only changes through these events, applied by reduce.
// Keeping the transition table in one pure function makes the
// invariants (answer/index lockstep, timer reset on advance) visible
// in one place.
type event interface{ isEvent() }

type parseStarted struct{}

type parseSucceeded struct {
	Contact      models.Contact
	ResumeObject string
}

type parseFailed struct{ Message string }

type loadingStarted struct{}

type sessionStarted struct {
	SessionID   string
	CandidateID string
	Questions   []models.Question
}

type startFailed struct{ Message string }

type submitStarted struct{}

type answerRecorded struct{ Answer models.Answer }

type submitFailed struct{ Message string }

type draftSaved struct{ Text string }

type timerTicked struct{}

type summaryReady struct {
	FinalScore int
	Summary    string
}

type sessionReset struct{}

func (parseStarted) isEvent()   {}
func (parseSucceeded) isEvent() {}
func (parseFailed) isEvent()    {}
func (loadingStarted) isEvent() {}
func (sessionStarted) isEvent() {}
func (startFailed) isEvent()    {}
func (submitStarted) isEvent()  {}
func (answerRecorded) isEvent() {}
func (submitFailed) isEvent()   {}
func (draftSaved) isEvent()     {}
func (timerTicked) isEvent()    {}
func (summaryReady) isEvent()   {}
func (sessionReset) isEvent()   {}

// reduce applies one event to the session state. It is the only place
// session fields are written.
func reduce(s models.SessionState, ev event) models.SessionState {
	switch ev := ev.(type) {
	case parseStarted:
		s.Status = models.StatusParsing
		s.Error = ""

	case parseSucceeded:
		s.Status = models.StatusAwaitingConfirmation
		contact := ev.Contact
		s.ExtractedData = &contact
		s.ResumeObject = ev.ResumeObject

	case parseFailed:
		s.Status = models.StatusError
		s.Error = ev.Message

	case loadingStarted:
		s.Status = models.StatusLoading
		s.Error = ""

	case sessionStarted:
		s.Status = models.StatusInProgress
		s.SessionID = ev.SessionID
		s.CandidateID = ev.CandidateID
		s.Questions = ev.Questions
		s.Answers = []models.Answer{}
		s.CurrentQuestionIndex = 0
		s.TimerSeconds = ev.Questions[0].TimeLimit

	case startFailed:
		s.Status = models.StatusError
		s.Error = ev.Message

	case submitStarted:
		s.IsSubmitting = true

	case answerRecorded:
		s.Answers = append(s.Answers, ev.Answer)
		if s.CurrentQuestionIndex >= len(s.Questions)-1 {
			s.Status = models.StatusCompleted
		} else {
			s.CurrentQuestionIndex++
			s.TimerSeconds = s.Questions[s.CurrentQuestionIndex].TimeLimit
		}
		s.IsSubmitting = false
		s.Draft = ""
		s.Error = ""

	case submitFailed:
		s.IsSubmitting = false
		s.Error = ev.Message

	case draftSaved:
		s.Draft = ev.Text

	case timerTicked:
		if s.TimerSeconds > 0 {
			s.TimerSeconds--
		}

	case summaryReady:
		score := ev.FinalScore
		s.FinalScore = &score
		s.AISummary = ev.Summary

	case sessionReset:
		return models.NewSessionState()
	}
	return s
}
