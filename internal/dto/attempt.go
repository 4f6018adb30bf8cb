package dto

import (
	"time"

	"academy-quiz/internal/domain"
)

// SubmitAttemptRequest is the body of POST /api/quizzes/{quizID}/attempts/{attemptID}/submit
// @Description Answers for every question the learner responded to
type SubmitAttemptRequest struct {
	Answers []SubmittedAnswerRequest `json:"answers" validate:"dive"`
}

type SubmittedAnswerRequest struct {
	QuestionID       string  `json:"question_id" validate:"required"`
	SelectedOptionID *string `json:"selected_option_id,omitempty"`
	AnswerText       *string `json:"answer_text,omitempty" validate:"omitempty,max=10000"`
}

// ToDomain converts the request answers for grading.
func (r *SubmitAttemptRequest) ToDomain() []domain.SubmittedAnswer {
	answers := make([]domain.SubmittedAnswer, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, domain.SubmittedAnswer{
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			AnswerText:       a.AnswerText,
		})
	}
	return answers
}

// AttemptResponse is the attempt summary. Score fields are null while in progress.
type AttemptResponse struct {
	ID               string     `json:"id"`
	QuizID           string     `json:"quiz_id"`
	LearnerID        string     `json:"learner_id"`
	AttemptNumber    int        `json:"attempt_number"`
	State            string     `json:"state"`
	MaxPossibleScore int        `json:"max_possible_score"`
	TotalScore       *int       `json:"total_score"`
	Percentage       *float64   `json:"percentage"`
	IsPassed         *bool      `json:"is_passed"`
	StartedAt        time.Time  `json:"started_at"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	TimeTakenMinutes *int       `json:"time_taken_minutes"`
}

type AttemptListResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
}

// AnswerResultResponse is one graded answer with the key for its question.
type AnswerResultResponse struct {
	QuestionID       string   `json:"question_id"`
	SelectedOptionID *string  `json:"selected_option_id,omitempty"`
	AnswerText       *string  `json:"answer_text,omitempty"`
	IsCorrect        bool     `json:"is_correct"`
	PointsEarned     int      `json:"points_earned"`
	CorrectOptionIDs []string `json:"correct_option_ids"`
}

// SubmitAttemptResponse carries answers only when show_results is true.
type SubmitAttemptResponse struct {
	Attempt     AttemptResponse        `json:"attempt"`
	ShowResults bool                   `json:"show_results"`
	Answers     []AnswerResultResponse `json:"answers,omitempty"`
}

type AttemptResultResponse struct {
	Attempt AttemptResponse        `json:"attempt"`
	Answers []AnswerResultResponse `json:"answers"`
}

func NewAttemptResponse(a *domain.Attempt) AttemptResponse {
	return AttemptResponse{
		ID:               a.ID,
		QuizID:           a.QuizID,
		LearnerID:        a.LearnerID,
		AttemptNumber:    a.AttemptNumber,
		State:            a.State().String(),
		MaxPossibleScore: a.MaxPossibleScore,
		TotalScore:       a.TotalScore,
		Percentage:       a.Percentage,
		IsPassed:         a.IsPassed,
		StartedAt:        a.StartedAt,
		SubmittedAt:      a.SubmittedAt,
		TimeTakenMinutes: a.TimeTakenMinutes,
	}
}

// NewAnswerResults maps graded answers, attaching correct option ids from quiz.
// Answers to questions no longer in the quiz get an empty key.
func NewAnswerResults(answers []*domain.Answer, quiz *domain.Quiz) []AnswerResultResponse {
	results := make([]AnswerResultResponse, 0, len(answers))
	for _, a := range answers {
		correct := []string{}
		if q, ok := quiz.Question(a.QuestionID); ok {
			correct = q.CorrectOptionIDs()
		}
		results = append(results, AnswerResultResponse{
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			AnswerText:       a.AnswerText,
			IsCorrect:        a.IsCorrect,
			PointsEarned:     a.PointsEarned,
			CorrectOptionIDs: correct,
		})
	}
	return results
}
