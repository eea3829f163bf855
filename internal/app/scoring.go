package app

import (
	"fmt"
	"math"

	"quiz-assessment-service/internal/domain"
)

// Score computes the weighted result of a session. answers maps question index to
// option index; remaining is the countdown value when submission began.
func Score(quiz *domain.LoadedQuiz, answers map[int]int, remaining int) (domain.ScoreResult, error) {
	result := domain.ScoreResult{TotalQuestions: len(quiz.Questions)}

	for i, question := range quiz.Questions {
		result.TotalPossible += question.Marks

		selected, ok := answers[i]
		if !ok || selected < 0 || selected >= len(question.Options) {
			continue
		}
		if question.Options[selected].IsCorrect {
			result.TotalScore += question.Marks
			result.CorrectAnswers++
		}
	}

	if result.TotalPossible == 0 {
		return domain.ScoreResult{}, fmt.Errorf("%w: total possible marks is zero", domain.ErrInvalidQuiz)
	}
	result.ScorePercentage = int(math.Round(float64(result.TotalScore) / float64(result.TotalPossible) * 100))
	result.TimeTaken = timeTaken(quiz.TimeLimit, remaining)
	return result, nil
}

func timeTaken(limit, remaining int) int {
	taken := limit - remaining
	if taken < 0 {
		return 0
	}
	if taken > limit {
		return limit
	}
	return taken
}

// gradeAnswers builds one record per answered question, attempt id left blank.
func gradeAnswers(quiz *domain.LoadedQuiz, answers map[int]int) []domain.AnswerRecord {
	records := make([]domain.AnswerRecord, 0, len(answers))
	for i, question := range quiz.Questions {
		selected, ok := answers[i]
		if !ok || selected < 0 || selected >= len(question.Options) {
			continue
		}
		option := question.Options[selected]
		records = append(records, domain.AnswerRecord{
			QuestionID:       question.ID,
			SelectedOptionID: option.ID,
			IsCorrect:        option.IsCorrect,
		})
	}
	return records
}
