package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crisphq/crisp-interview/internal/models"
	"github.com/crisphq/crisp-interview/internal/providers/llm"
	"github.com/crisphq/crisp-interview/internal/settings"
	"github.com/crisphq/crisp-interview/internal/utils"
)

// Evaluation is the model's verdict on a single answer.
type Evaluation struct {
	Score    int    `json:"score"` // 1-10
	Feedback string `json:"feedback"`
}

// Gateway wraps the generative model behind a structured-output
// contract. Every operation may fail with an UPSTREAM AppError; raw
// parse errors never escape.
type Gateway interface {
	FetchQuestions(ctx context.Context) ([]models.Question, error)
	EvaluateAnswer(ctx context.Context, answerText, questionText string) (Evaluation, error)
	Summarize(ctx context.Context, answers []models.Answer) (string, error)
}

type gateway struct {
	provider llm.Provider
	cfg      *settings.Settings
	log      *logrus.Logger
}

func New(provider llm.Provider, cfg *settings.Settings, log *logrus.Logger) Gateway {
	if cfg == nil {
		cfg = settings.Default()
	}
	return &gateway{provider: provider, cfg: cfg, log: log}
}

func (g *gateway) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	const op = "Gateway.FetchQuestions"

	n := g.cfg.Questions.PerDifficulty
	prompt := fmt.Sprintf(`You are an expert interviewer for a %s.
Generate a list of exactly %d interview questions: %d easy, %d medium, and %d hard.
Return ONLY a valid JSON array of objects. Do not include any other text, explanations, or markdown formatting.
Each object must have the following keys: "questionId", "questionText", "difficulty", "timeLimit".
The difficulty must be one of "easy", "medium", "hard". The timeLimit must be a number: %d for easy, %d for medium, and %d for hard.
Use a unique string for each "questionId".`,
		g.cfg.Role, g.cfg.TotalQuestions(), n, n, n,
		g.cfg.TimeLimits[models.DifficultyEasy],
		g.cfg.TimeLimits[models.DifficultyMedium],
		g.cfg.TimeLimits[models.DifficultyHard])

	raw, err := g.provider.GenerateText(ctx, prompt)
	if err != nil {
		return nil, utils.E(utils.CodeUpstream, op, "Failed to get a response from the AI service.", err)
	}

	var questions []models.Question
	if err := json.Unmarshal([]byte(stripFences(raw)), &questions); err != nil {
		return nil, utils.E(utils.CodeUpstream, op, "The AI service returned an unreadable question set.", err)
	}

	if err := g.normalizeQuestions(questions); err != nil {
		return nil, utils.E(utils.CodeUpstream, op, "The AI service returned an invalid question set.", err)
	}
	return questions, nil
}

// normalizeQuestions validates the model output in place: required
// counts per difficulty, unique ids, and time limits pinned to the
// configured values. Questions end up grouped easy, medium, hard.
func (g *gateway) normalizeQuestions(questions []models.Question) error {
	if len(questions) != g.cfg.TotalQuestions() {
		return fmt.Errorf("expected %d questions, got %d", g.cfg.TotalQuestions(), len(questions))
	}

	counts := map[models.Difficulty]int{}
	seen := map[string]bool{}
	for i := range questions {
		q := &questions[i]
		if q.QuestionText == "" {
			return fmt.Errorf("question %d has empty text", i)
		}
		limit, ok := g.cfg.TimeLimits[q.Difficulty]
		if !ok {
			return fmt.Errorf("question %d has unknown difficulty %q", i, q.Difficulty)
		}
		q.TimeLimit = limit
		if q.QuestionID == "" {
			q.QuestionID = uuid.NewString()
		}
		if seen[q.QuestionID] {
			return fmt.Errorf("duplicate questionId %q", q.QuestionID)
		}
		seen[q.QuestionID] = true
		counts[q.Difficulty]++
	}

	n := g.cfg.Questions.PerDifficulty
	for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		if counts[d] != n {
			return fmt.Errorf("expected %d %s questions, got %d", n, d, counts[d])
		}
	}

	rank := map[models.Difficulty]int{
		models.DifficultyEasy:   0,
		models.DifficultyMedium: 1,
		models.DifficultyHard:   2,
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return rank[questions[i].Difficulty] < rank[questions[j].Difficulty]
	})
	return nil
}

func (g *gateway) EvaluateAnswer(ctx context.Context, answerText, questionText string) (Evaluation, error) {
	const op = "Gateway.EvaluateAnswer"

	prompt := fmt.Sprintf(`As an expert interviewer, evaluate the following answer to the interview question provided.
Provide a score from 1 to 10 and concise, constructive feedback (one sentence).
Return ONLY a valid JSON object with the keys "score" (a number) and "feedback" (a string). Do not include any other text.
Question: %q
Answer: %q`, questionText, answerText)

	raw, err := g.provider.GenerateText(ctx, prompt)
	if err != nil {
		return Evaluation{}, utils.E(utils.CodeUpstream, op, "Failed to get a response from the AI service.", err)
	}

	var parsed struct {
		Score    *float64 `json:"score"`
		Feedback string   `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return Evaluation{}, utils.E(utils.CodeUpstream, op, "The AI service returned an unreadable evaluation.", err)
	}
	if parsed.Score == nil {
		return Evaluation{}, utils.E(utils.CodeUpstream, op, "The AI service returned an evaluation without a score.", nil)
	}

	score := int(math.Round(*parsed.Score))
	if score < 0 || score > 10 {
		return Evaluation{}, utils.E(utils.CodeUpstream, op,
			fmt.Sprintf("The AI service returned an out-of-range score (%d).", score), nil)
	}
	return Evaluation{Score: score, Feedback: parsed.Feedback}, nil
}

func (g *gateway) Summarize(ctx context.Context, answers []models.Answer) (string, error) {
	const op = "Gateway.Summarize"

	transcript, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to serialize answers", err)
	}

	prompt := fmt.Sprintf(`As an expert interviewer, provide a brief, professional summary (2-3 sentences) of the candidate's performance based on their answers and scores.
Do not return JSON, just return the summary as plain text.
Here are the candidate's answers:
%s`, transcript)

	raw, err := g.provider.GenerateText(ctx, prompt)
	if err != nil {
		return "", utils.E(utils.CodeUpstream, op, "Failed to get a response from the AI service.", err)
	}

	summary := strings.TrimSpace(stripFences(raw))
	if summary == "" {
		return "", utils.E(utils.CodeUpstream, op, "The AI service returned an empty summary.", nil)
	}
	return summary, nil
}

// stripFences removes markdown code-fence wrappers the model sometimes
// adds around structured output.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
