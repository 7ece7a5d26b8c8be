package services

import (
	"math/rand"
	"time"

	"github.com/edustack/quiz-service/internal/models"
)

// attemptExpired reports whether the attempt's server-side deadline has
// passed. Quizzes without a time limit never expire.
func attemptExpired(attempt *models.QuizAttempt, quiz *models.Quiz, now time.Time) bool {
	if quiz.TimeLimitSec == nil {
		return false
	}
	deadline := attempt.StartedAt.Add(time.Duration(*quiz.TimeLimitSec) * time.Second)
	return now.After(deadline)
}

func findQuestion(quiz *models.Quiz, questionID uint) *models.Question {
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			return &quiz.Questions[i]
		}
	}
	return nil
}

func questionHasOption(question *models.Question, optionID uint) bool {
	for _, option := range question.Options {
		if option.ID == optionID {
			return true
		}
	}
	return false
}

// buildQuestionPayload converts the quiz's questions into the take-side view.
// Shuffling happens per call and is never persisted; a refresh deals a new
// order.
func buildQuestionPayload(quiz *models.Quiz) []*QuestionForAttempt {
	questions := make([]*QuestionForAttempt, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		options := make([]OptionForAttempt, 0, len(question.Options))
		for _, option := range question.Options {
			options = append(options, OptionForAttempt{
				ID:       option.ID,
				Content:  option.Content,
				Position: option.Position,
			})
		}
		questions = append(questions, &QuestionForAttempt{
			ID:       question.ID,
			Type:     question.Type,
			Prompt:   question.Prompt,
			Points:   question.Points,
			Position: question.Position,
			Options:  options,
		})
	}

	if quiz.ShuffleQuestions {
		rand.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}
	return questions
}

// projectAttempt applies the status-driven redaction: while the attempt is
// in progress the score, per-answer correctness and awarded points stay
// hidden no matter what the rows hold.
func projectAttempt(attempt *models.QuizAttempt) *AttemptResponse {
	submitted := attempt.Status == models.AttemptSubmitted

	response := &AttemptResponse{
		ID:        attempt.ID,
		QuizID:    attempt.QuizID,
		StudentID: attempt.StudentID,
		Status:    attempt.Status,
		StartedAt: attempt.StartedAt,
		MaxScore:  attempt.MaxScore,
	}
	if submitted {
		response.SubmittedAt = attempt.SubmittedAt
		response.Score = attempt.Score
		response.EndReason = attempt.EndReason
	}

	for _, answer := range attempt.Answers {
		view := AnswerView{
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.SelectedOptionID,
		}
		if submitted {
			view.IsCorrect = answer.IsCorrect
			view.PointsAwarded = answer.PointsAwarded
		}
		response.Answers = append(response.Answers, view)
	}

	return response
}

func projectAttemptList(attempts []*models.QuizAttempt, total int64) *AttemptListResponse {
	response := &AttemptListResponse{
		Attempts: make([]*AttemptResponse, 0, len(attempts)),
		Total:    total,
	}
	for _, attempt := range attempts {
		response.Attempts = append(response.Attempts, projectAttempt(attempt))
	}
	return response
}
