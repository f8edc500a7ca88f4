package quiz

import (
	"html"
	"math/rand"
	"time"

	"quiz-manager/internal/opentdb"
)

type Question struct {
	QuestionText  string   `json:"question_text" validate:"required"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type Attempt struct {
	Username    string    `json:"username"`
	Answers     []string  `json:"answers"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Quiz struct {
	ID        string     `json:"_id"`
	QuizName  string     `json:"quiz_name"`
	Questions []Question `json:"questions"`
	Attempts  []Attempt  `json:"attempts"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AttemptResult is returned to the submitter. CorrectAnswers lists the answer
// key for every question, not only the ones that were answered.
type AttemptResult struct {
	Score          int      `json:"score"`
	Total          int      `json:"total"`
	CorrectAnswers []string `json:"answers"`
}

// FromTrivia converts OpenTriviaDB payloads into quiz questions with the
// correct answer shuffled among the incorrect ones.
func FromTrivia(raw []opentdb.RawQuestion) []Question {
	questions := make([]Question, 0, len(raw))
	for _, item := range raw {
		questions = append(questions, buildTriviaQuestion(item))
	}
	return questions
}

func buildTriviaQuestion(raw opentdb.RawQuestion) Question {
	correct := html.UnescapeString(raw.CorrectAnswer)

	options := make([]string, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		options = append(options, html.UnescapeString(incorrect))
	}
	options = append(options, correct)

	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Question{
		QuestionText:  html.UnescapeString(raw.Question),
		Options:       options,
		CorrectAnswer: correct,
	}
}
