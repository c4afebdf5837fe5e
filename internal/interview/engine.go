package interview

import (
	"context"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crisphq/crisp-interview/internal/gateway"
	"github.com/crisphq/crisp-interview/internal/models"
	mongorepo "github.com/crisphq/crisp-interview/internal/repositories/mongo"
	"github.com/crisphq/crisp-interview/internal/services"
	"github.com/crisphq/crisp-interview/internal/store"
	"github.com/crisphq/crisp-interview/internal/utils"
)

// NoAnswerPlaceholder is submitted when the timer expires on an empty
// draft. A user-initiated send never substitutes it.
const NoAnswerPlaceholder = "(No answer provided)"

const aiCallTimeout = 90 * time.Second

// Config wires the engine's collaborators. Store and Registry are
// required; Transcripts is optional archival.
type Config struct {
	Gateway     gateway.Gateway
	Resumes     services.ResumeService
	Registry    services.RegistryService
	Transcripts mongorepo.TranscriptRepository
	Store       store.Store
	Logger      *logrus.Logger

	// TickInterval drives the countdown; 0 means no background ticker
	// (ticks are then delivered by the caller, as the tests do).
	TickInterval time.Duration
}

// Engine owns the single active interview session. All state changes
// go through reduce under the mutex; AI calls run outside the lock with
// an epoch captured at dispatch, and a completion whose epoch no longer
// matches the current one is discarded as stale.
type Engine struct {
	mu    sync.Mutex
	state models.SessionState
	epoch uint64

	// welcomeBack blocks everything except continue/end after a
	// restart restored an in-progress session.
	welcomeBack bool
	summarizing bool

	tickStop chan struct{}

	subs    map[int]chan models.SessionState
	nextSub int

	cfg Config
	log *logrus.Logger
}

func NewEngine(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		state: models.NewSessionState(),
		subs:  map[int]chan models.SessionState{},
		cfg:   cfg,
		log:   log,
	}
}

// Restore loads the persisted snapshot on startup. An in-progress
// session puts the engine in welcome-back mode: the countdown stays
// paused and every action except ContinueSession and EndSession is
// rejected until the user decides. Transient statuses whose in-flight
// work died with the old process fall back to idle.
func (e *Engine) Restore(ctx context.Context) error {
	snap, ok, err := e.cfg.Store.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// a persisted submission guard is always stale: the in-flight
	// evaluation died with the old process and its completion will
	// never arrive
	snap.IsSubmitting = false

	switch snap.Status {
	case models.StatusParsing, models.StatusLoading:
		e.state = models.NewSessionState()
	case models.StatusInProgress:
		e.state = *snap
		e.welcomeBack = true
	default:
		e.state = *snap
	}
	return nil
}

// NeedsWelcomeBack reports whether the continue-or-end prompt is
// pending.
func (e *Engine) NeedsWelcomeBack() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.welcomeBack
}

// Snapshot returns a copy of the current session state.
func (e *Engine) Snapshot() models.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyState(e.state)
}

// Subscribe registers a snapshot listener. Every applied event fans
// out one snapshot; slow listeners miss intermediate states rather
// than block the engine.
func (e *Engine) Subscribe() (<-chan models.SessionState, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSub
	e.nextSub++
	ch := make(chan models.SessionState, 8)
	e.subs[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// UploadResume runs the idle -> parsing -> awaiting-confirmation leg.
func (e *Engine) UploadResume(ctx context.Context, fileName, mimeType string, r io.Reader) error {
	const op = "Engine.UploadResume"

	e.mu.Lock()
	if e.welcomeBack {
		e.mu.Unlock()
		return errWelcomeBackPending(op)
	}
	if e.state.Status != models.StatusIdle {
		e.mu.Unlock()
		return utils.E(utils.CodeConflict, op, "a session is already underway", nil)
	}
	e.apply(parseStarted{})
	epoch := e.epoch
	e.mu.Unlock()

	contact, objectKey, err := e.cfg.Resumes.Process(ctx, fileName, mimeType, r)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch {
		e.log.WithField("file_name", fileName).Debug("discarding stale resume extraction")
		return nil
	}
	if err != nil {
		e.apply(parseFailed{Message: utils.Message(err)})
		return err
	}
	e.apply(parseSucceeded{Contact: contact, ResumeObject: objectKey})
	return nil
}

// Confirm takes the user-confirmed contact details, registers the
// candidate, and starts the interview. The registry is only mutated
// once the question fetch has succeeded, so a fetch failure leaves no
// trace beyond the error status.
func (e *Engine) Confirm(ctx context.Context, contact models.Contact) error {
	const op = "Engine.Confirm"

	e.mu.Lock()
	if e.welcomeBack {
		e.mu.Unlock()
		return errWelcomeBackPending(op)
	}
	if e.state.Status != models.StatusAwaitingConfirmation {
		e.mu.Unlock()
		return utils.E(utils.CodeConflict, op, "no details awaiting confirmation", nil)
	}
	if strings.TrimSpace(contact.Name) == "" || strings.TrimSpace(contact.Email) == "" {
		e.mu.Unlock()
		return utils.E(utils.CodeInvalidArgument, op, "name and email are required", nil)
	}
	resumeObject := e.state.ResumeObject
	e.apply(loadingStarted{})
	epoch := e.epoch
	e.mu.Unlock()

	questions, err := e.cfg.Gateway.FetchQuestions(ctx)

	if err == nil && len(questions) == 0 {
		err = utils.E(utils.CodeUpstream, op, "The AI service returned no questions.", nil)
	}

	var candidateID string
	if err == nil {
		phone := strings.TrimSpace(contact.Phone)
		if phone == "" {
			phone = "N/A"
		}
		candidateID = uuid.NewString()
		err = e.cfg.Registry.Add(ctx, &models.Candidate{
			CandidateID:  candidateID,
			Name:         strings.TrimSpace(contact.Name),
			Email:        strings.TrimSpace(contact.Email),
			Phone:        phone,
			Status:       models.CandidatePending,
			ResumeObject: resumeObject,
			CreatedAt:    time.Now().UTC(),
		})
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch {
		e.log.Debug("discarding stale question fetch")
		return nil
	}
	if err != nil {
		e.apply(startFailed{Message: utils.Message(err)})
		return err
	}

	e.apply(sessionStarted{
		SessionID:   uuid.NewString(),
		CandidateID: candidateID,
		Questions:   questions,
	})
	e.startTickerLocked()
	return nil
}

// SaveDraft keeps the in-progress answer text server-side so a timeout
// submission can use it.
func (e *Engine) SaveDraft(text string) error {
	const op = "Engine.SaveDraft"

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.welcomeBack {
		return errWelcomeBackPending(op)
	}
	if e.state.Status != models.StatusInProgress {
		return utils.E(utils.CodeConflict, op, "no interview in progress", nil)
	}
	e.apply(draftSaved{Text: text})
	return nil
}

// SubmitAnswer is the user-initiated send. Empty content is rejected;
// the placeholder substitution only exists on the timeout path.
func (e *Engine) SubmitAnswer(ctx context.Context, answerText string) error {
	const op = "Engine.SubmitAnswer"

	if strings.TrimSpace(answerText) == "" {
		return utils.E(utils.CodeInvalidArgument, op, "answer must not be empty", nil)
	}
	return e.submit(ctx, op, answerText)
}

// submit is the single submission routine both the user path and the
// timer-expiry path converge on.
func (e *Engine) submit(ctx context.Context, op, answerText string) error {
	e.mu.Lock()
	if e.welcomeBack {
		e.mu.Unlock()
		return errWelcomeBackPending(op)
	}
	if e.state.Status != models.StatusInProgress {
		e.mu.Unlock()
		return utils.E(utils.CodeConflict, op, "no interview in progress", nil)
	}
	if e.state.IsSubmitting {
		e.mu.Unlock()
		return utils.E(utils.CodeConflict, op, "a submission is already in flight", nil)
	}
	question, ok := e.state.CurrentQuestion()
	if !ok {
		e.mu.Unlock()
		return utils.E(utils.CodeInternal, op, "no pending question", nil)
	}
	e.apply(submitStarted{})
	epoch := e.epoch
	e.mu.Unlock()

	eval, err := e.cfg.Gateway.EvaluateAnswer(ctx, answerText, question.QuestionText)

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		e.log.WithField("question_id", question.QuestionID).Debug("discarding stale evaluation")
		return nil
	}
	if err != nil {
		// stay on the current question; the guard must never be left set
		e.apply(submitFailed{Message: utils.Message(err)})
		e.mu.Unlock()
		return err
	}

	e.apply(answerRecorded{Answer: models.Answer{
		AnswerID:     uuid.NewString(),
		QuestionID:   question.QuestionID,
		QuestionText: question.QuestionText,
		AnswerText:   answerText,
		Score:        eval.Score,
		Feedback:     eval.Feedback,
	}})

	completed := e.state.Status == models.StatusCompleted
	if completed {
		e.stopTickerLocked()
		e.maybeSummarizeLocked()
	}
	e.mu.Unlock()
	return nil
}

// Tick advances the countdown by one second. On the transition to zero
// with no submission in flight it fires the timeout auto-submission
// using the current draft. The submission fires once: if it fails, the
// question stays at zero waiting for the user's retry rather than
// re-hitting a failing AI service every tick.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.welcomeBack || e.state.Status != models.StatusInProgress {
		e.mu.Unlock()
		return
	}
	expired := false
	if e.state.TimerSeconds > 0 {
		e.apply(timerTicked{})
		expired = e.state.TimerSeconds == 0 && !e.state.IsSubmitting
	}
	draft := strings.TrimSpace(e.state.Draft)
	e.mu.Unlock()

	if !expired {
		return
	}
	if draft == "" {
		draft = NoAnswerPlaceholder
	}
	if err := e.submit(context.Background(), "Engine.timeoutSubmit", draft); err != nil {
		e.log.WithError(err).Warn("timeout auto-submission failed")
	}
}

// ContinueSession resolves the welcome-back prompt in favor of
// resuming: nothing changes except that the countdown starts again.
func (e *Engine) ContinueSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.welcomeBack {
		return
	}
	e.welcomeBack = false
	if e.state.Status == models.StatusInProgress {
		e.startTickerLocked()
	}
}

// EndSession aborts the bound candidate (if any) and resets the
// session to its initial idle form. Allowed from any state, including
// while the welcome-back prompt is pending.
func (e *Engine) EndSession(ctx context.Context) error {
	e.mu.Lock()
	candidateID := e.state.CandidateID
	transcript := e.transcriptLocked("aborted")
	e.stopTickerLocked()
	e.epoch++
	e.welcomeBack = false
	e.summarizing = false
	e.apply(sessionReset{})
	e.mu.Unlock()

	if candidateID == "" {
		return nil
	}
	if err := e.cfg.Registry.MarkAborted(ctx, candidateID); err != nil {
		e.log.WithError(err).WithField("candidate_id", candidateID).Error("failed to abort candidate")
		return err
	}
	e.archive(ctx, transcript)
	return nil
}

// Reset is the retry/acknowledge action: a full reset back to idle. An
// in-progress session must be ended, not reset, so the candidate
// record gets its terminal status.
func (e *Engine) Reset() error {
	const op = "Engine.Reset"

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.welcomeBack {
		return errWelcomeBackPending(op)
	}
	if e.state.Status == models.StatusInProgress {
		return utils.E(utils.CodeConflict, op, "end the session instead of resetting it", nil)
	}
	e.stopTickerLocked()
	e.epoch++
	e.summarizing = false
	e.apply(sessionReset{})
	return nil
}

// Close stops the background ticker.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTickerLocked()
}

// maybeSummarizeLocked fires the one-shot summarization side-effect on
// the transition to completed. Failure is non-fatal: the session stays
// completed and the registry entry keeps its pending score.
func (e *Engine) maybeSummarizeLocked() {
	if e.state.AISummary != "" || e.summarizing {
		return
	}
	e.summarizing = true

	candidateID := e.state.CandidateID
	answers := copyAnswers(e.state.Answers)
	transcript := e.transcriptLocked("completed")
	epoch := e.epoch

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), aiCallTimeout)
		defer cancel()

		summary, err := e.cfg.Gateway.Summarize(ctx, answers)
		finalScore := FinalScore(answers)

		e.mu.Lock()
		if e.epoch != epoch {
			e.mu.Unlock()
			e.log.Debug("discarding stale summary")
			return
		}
		e.summarizing = false
		if err != nil {
			e.mu.Unlock()
			e.log.WithError(err).Warn("summarization failed; session stays completed")
			return
		}
		e.apply(summaryReady{FinalScore: finalScore, Summary: summary})
		e.mu.Unlock()

		if err := e.cfg.Registry.MarkCompleted(ctx, candidateID, finalScore, summary, answers); err != nil {
			e.log.WithError(err).WithField("candidate_id", candidateID).Error("failed to record completion")
		}
		transcript.FinalScore = &finalScore
		transcript.Summary = summary
		e.archive(ctx, transcript)
	}()
}

// FinalScore is the rounded integer mean of the per-answer scores, 0
// when there are no answers.
func FinalScore(answers []models.Answer) int {
	if len(answers) == 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		total += a.Score
	}
	return int(math.Round(float64(total) / float64(len(answers))))
}

func (e *Engine) transcriptLocked(outcome string) *models.Transcript {
	if e.state.SessionID == "" {
		return nil
	}
	return &models.Transcript{
		SessionID:   e.state.SessionID,
		CandidateID: e.state.CandidateID,
		Outcome:     outcome,
		Questions:   append([]models.Question(nil), e.state.Questions...),
		Answers:     copyAnswers(e.state.Answers),
	}
}

func (e *Engine) archive(ctx context.Context, t *models.Transcript) {
	if t == nil || e.cfg.Transcripts == nil {
		return
	}
	if err := e.cfg.Transcripts.Archive(ctx, t); err != nil {
		e.log.WithError(err).WithField("session_id", t.SessionID).Warn("transcript archive failed")
	}
}

// apply runs the reducer, persists the snapshot, and fans it out.
// Callers must hold the mutex.
func (e *Engine) apply(ev event) {
	e.state = reduce(e.state, ev)

	snap := copyState(e.state)
	if err := e.cfg.Store.Save(context.Background(), &snap); err != nil {
		e.log.WithError(err).Error("failed to persist session snapshot")
	}
	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (e *Engine) startTickerLocked() {
	if e.cfg.TickInterval <= 0 || e.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	e.tickStop = stop

	go func() {
		t := time.NewTicker(e.cfg.TickInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				e.Tick()
			}
		}
	}()
}

func (e *Engine) stopTickerLocked() {
	if e.tickStop != nil {
		close(e.tickStop)
		e.tickStop = nil
	}
}

func errWelcomeBackPending(op string) error {
	return utils.E(utils.CodeConflict, op, "an interrupted interview is waiting for a continue-or-end decision", nil)
}

func copyState(s models.SessionState) models.SessionState {
	out := s
	out.Questions = append([]models.Question(nil), s.Questions...)
	out.Answers = copyAnswers(s.Answers)
	if s.ExtractedData != nil {
		c := *s.ExtractedData
		out.ExtractedData = &c
	}
	if s.FinalScore != nil {
		v := *s.FinalScore
		out.FinalScore = &v
	}
	return out
}

func copyAnswers(answers []models.Answer) []models.Answer {
	return append([]models.Answer(nil), answers...)
}
