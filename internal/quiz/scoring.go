package quiz

// Score counts positions where the submitted answer equals the question's
// correct answer. Missing answers score nothing and answers past the last
// question are ignored.
func Score(questions []Question, answers []string) int {
	score := 0
	for idx, answer := range answers {
		if idx >= len(questions) {
			break
		}
		if answer == questions[idx].CorrectAnswer {
			score++
		}
	}
	return score
}

func CorrectAnswers(questions []Question) []string {
	answers := make([]string, 0, len(questions))
	for _, question := range questions {
		answers = append(answers, question.CorrectAnswer)
	}
	return answers
}

// AttemptsBy filters attempts by submitter, keeping submission order.
func AttemptsBy(attempts []Attempt, username string) []Attempt {
	filtered := make([]Attempt, 0, len(attempts))
	for _, attempt := range attempts {
		if attempt.Username == username {
			filtered = append(filtered, attempt)
		}
	}
	return filtered
}
