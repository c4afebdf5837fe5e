package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crisphq/crisp-interview/internal/models"
)

// Settings are the interview tunables loaded from a YAML file. The
// defaults reproduce the standard round: 6 questions, 2 per difficulty,
// with 20/60/120 second limits.
type Settings struct {
	Role string `yaml:"role"` // position the questions target

	Questions struct {
		PerDifficulty int `yaml:"per_difficulty"`
	} `yaml:"questions"`

	TimeLimits map[models.Difficulty]int `yaml:"time_limits"`

	Model struct {
		Name        string  `yaml:"name"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"model"`
}

func Default() *Settings {
	s := &Settings{}
	s.Role = "full-stack web developer position using React and Node.js"
	s.Questions.PerDifficulty = 2
	s.TimeLimits = map[models.Difficulty]int{
		models.DifficultyEasy:   20,
		models.DifficultyMedium: 60,
		models.DifficultyHard:   120,
	}
	s.Model.Name = "gemini-1.5-flash"
	s.Model.Temperature = 0.2
	return s
}

// Load reads settings from filename, falling back to defaults when the
// file does not exist.
func Load(filename string) (*Settings, error) {
	s := Default()
	if filename == "" {
		return s, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	if err := validate(s); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", filename, err)
	}
	return s, nil
}

func validate(s *Settings) error {
	if s.Questions.PerDifficulty <= 0 {
		return fmt.Errorf("questions.per_difficulty must be greater than 0")
	}
	for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		limit, ok := s.TimeLimits[d]
		if !ok {
			return fmt.Errorf("time_limits missing entry for %q", d)
		}
		if limit <= 0 {
			return fmt.Errorf("time_limits.%s must be greater than 0", d)
		}
	}
	if s.Role == "" {
		return fmt.Errorf("role must not be empty")
	}
	return nil
}

// TotalQuestions is the number of questions in one interview round.
func (s *Settings) TotalQuestions() int {
	return 3 * s.Questions.PerDifficulty
}
