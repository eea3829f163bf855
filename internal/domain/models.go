package domain

import "time"

// Quiz is the metadata row of a quiz as stored in the content store.
// Either time-limit field may be absent; see Defaults.TimeLimit.
type Quiz struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	TimeLimitSeconds *int   `json:"timeLimitSeconds,omitempty"`
	TimeLimitMinutes *int   `json:"timeLimitMinutes,omitempty"`
}

// Question is a single-select question. Marks defaults to 1 when absent.
type Question struct {
	ID       string `json:"id"`
	QuizID   string `json:"quizId"`
	Text     string `json:"text"`
	Marks    *int   `json:"marks,omitempty"`
	Position int    `json:"position"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
	Position   int    `json:"position"`
}

// LoadedQuestion is a question with its options and resolved weight.
type LoadedQuestion struct {
	ID      string
	Text    string
	Marks   int
	Options []Option
}

// LoadedQuiz is the immutable content a session runs against.
type LoadedQuiz struct {
	ID          string
	Title       string
	Description string
	TimeLimit   int // resolved, in whole seconds
	Questions   []LoadedQuestion
}

// TotalMarks sums the marks of every question.
func (q *LoadedQuiz) TotalMarks() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Marks
	}
	return total
}

// Status is the submission state of a session.
type Status string

const (
	StatusLoading    Status = "loading"
	StatusInProgress Status = "in_progress"
	StatusSubmitting Status = "submitting"
	StatusSubmitted  Status = "submitted"
	StatusErrored    Status = "errored"
)

// Trigger records what started a submission.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerTimer  Trigger = "timer"
)

// ScoreResult is the outcome of scoring a session.
type ScoreResult struct {
	TotalQuestions  int `json:"totalQuestions"`
	CorrectAnswers  int `json:"correctAnswers"`
	ScorePercentage int `json:"scorePercentage"`
	TotalScore      int `json:"totalScore"`
	TotalPossible   int `json:"totalPossible"`
	TimeTaken       int `json:"timeTaken"` // seconds
}

// Attempt is the durable record of one completed run through a quiz.
type Attempt struct {
	ID            string    `json:"id"`
	LearnerID     string    `json:"learnerId"`
	QuizID        string    `json:"quizId"`
	TotalScore    int       `json:"totalScore"`
	TotalPossible int       `json:"totalPossible"`
	Percentage    int       `json:"percentage"`
	Completed     bool      `json:"completed"`
	Trigger       Trigger   `json:"trigger"`
	AnsweredCount int       `json:"answeredCount"`
	StartedAt     time.Time `json:"startedAt"`
	CompletedAt   time.Time `json:"completedAt"`
}

// AnswerRecord is the persisted answer for one answered question of an attempt.
type AnswerRecord struct {
	AttemptID        string `json:"attemptId"`
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
	IsCorrect        bool   `json:"isCorrect"`
}

// OptionView is an option as shown to the learner (no correctness flag).
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is the current question as shown to the learner.
type QuestionView struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Marks   int          `json:"marks"`
	Options []OptionView `json:"options"`
}

// SessionView is a point-in-time snapshot of a session for presentation.
type SessionView struct {
	QuizID           string       `json:"quizId"`
	Title            string       `json:"title"`
	Index            int          `json:"index"`
	Total            int          `json:"total"`
	Question         QuestionView `json:"question"`
	Selected         *int         `json:"selected,omitempty"`
	Unanswered       int          `json:"unanswered"`
	RemainingSeconds int          `json:"remainingSeconds"`
	Status           Status       `json:"status"`
	Result           *ScoreResult `json:"result,omitempty"`
	Error            string       `json:"error,omitempty"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}
