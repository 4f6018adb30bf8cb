package dto

import "academy-quiz/internal/domain"

// CreateQuizRequest is the body of POST /api/quizzes
// @Description Request body for creating a quiz
type CreateQuizRequest struct {
	ProgramID              string `json:"program_id" validate:"required,max=26"`
	Title                  string `json:"title" validate:"required,max=255"`
	TimeLimitMinutes       *int   `json:"time_limit_minutes,omitempty" validate:"omitempty,gt=0"`
	PassingScore           int    `json:"passing_score" validate:"gte=0,lte=100"`
	ShuffleQuestions       bool   `json:"shuffle_questions"`
	ShowResultsImmediately bool   `json:"show_results_immediately"`
	MaxAttempts            int    `json:"max_attempts" validate:"gte=1"`
	IsActive               *bool  `json:"is_active,omitempty"`
}

// AddQuestionRequest is the body of POST /api/quizzes/{quizID}/questions
type AddQuestionRequest struct {
	Type         string          `json:"question_type" validate:"required,oneof=multiple_choice true_false short_answer essay"`
	QuestionText string          `json:"question_text" validate:"required,max=2000"`
	Points       int             `json:"points" validate:"gt=0"`
	Options      []OptionRequest `json:"options" validate:"omitempty,dive"`
}

type OptionRequest struct {
	OptionText string `json:"option_text" validate:"required,max=500"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuizResponse represents a quiz with its ordered questions
// @Description Quiz information
type QuizResponse struct {
	ID                     string             `json:"id"`
	ProgramID              string             `json:"program_id"`
	Title                  string             `json:"title"`
	TimeLimitMinutes       *int               `json:"time_limit_minutes,omitempty"`
	PassingScore           int                `json:"passing_score"`
	ShuffleQuestions       bool               `json:"shuffle_questions"`
	ShowResultsImmediately bool               `json:"show_results_immediately"`
	MaxAttempts            int                `json:"max_attempts"`
	IsActive               bool               `json:"is_active"`
	TotalQuestions         int                `json:"total_questions"`
	Questions              []QuestionResponse `json:"questions"`
}

type QuestionResponse struct {
	ID           string           `json:"id"`
	Type         string           `json:"question_type"`
	QuestionText string           `json:"question_text"`
	Points       int              `json:"points"`
	Order        int              `json:"order"`
	Options      []OptionResponse `json:"options"`
}

// OptionResponse omits is_correct unless the answer key may be revealed.
type OptionResponse struct {
	ID         string `json:"id"`
	OptionText string `json:"option_text"`
	IsCorrect  *bool  `json:"is_correct,omitempty"`
	Order      int    `json:"order"`
}

// NewQuizResponse maps a quiz tree. withKey controls whether is_correct is emitted.
func NewQuizResponse(q *domain.Quiz, withKey bool) *QuizResponse {
	resp := &QuizResponse{
		ID:                     q.ID,
		ProgramID:              q.ProgramID,
		Title:                  q.Title,
		TimeLimitMinutes:       q.TimeLimitMinutes,
		PassingScore:           q.PassingScore,
		ShuffleQuestions:       q.ShuffleQuestions,
		ShowResultsImmediately: q.ShowResultsImmediately,
		MaxAttempts:            q.MaxAttempts,
		IsActive:               q.IsActive,
		TotalQuestions:         q.TotalQuestions,
		Questions:              make([]QuestionResponse, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		resp.Questions = append(resp.Questions, NewQuestionResponse(question, withKey))
	}
	return resp
}

func NewQuestionResponse(q *domain.Question, withKey bool) QuestionResponse {
	resp := QuestionResponse{
		ID:           q.ID,
		Type:         string(q.Type),
		QuestionText: q.QuestionText,
		Points:       q.Points,
		Order:        q.Order,
		Options:      make([]OptionResponse, 0, len(q.Options)),
	}
	for _, opt := range q.Options {
		o := OptionResponse{ID: opt.ID, OptionText: opt.OptionText, Order: opt.Order}
		if withKey {
			correct := opt.IsCorrect
			o.IsCorrect = &correct
		}
		resp.Options = append(resp.Options, o)
	}
	return resp
}
