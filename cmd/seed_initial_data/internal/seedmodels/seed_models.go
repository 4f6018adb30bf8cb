package seedmodels

import (
	"encoding/json"
	"fmt"
	"io"

	"academy-quiz/internal/dto"
	"academy-quiz/internal/validation"
)

// SeedQuiz is a quiz in the JSON seed file with its questions in order.
type SeedQuiz struct {
	dto.CreateQuizRequest
	Questions []dto.AddQuestionRequest `json:"questions" validate:"dive"`
}

// SeedEnrollment places a learner in a program.
type SeedEnrollment struct {
	LearnerID string `json:"learner_id" validate:"required"`
	ProgramID string `json:"program_id" validate:"required"`
	Status    string `json:"status,omitempty"`
}

// SeedFile is the root of the seed document.
type SeedFile struct {
	Quizzes     []SeedQuiz       `json:"quizzes" validate:"dive"`
	Enrollments []SeedEnrollment `json:"enrollments" validate:"dive"`
}

// Decode reads and validates a seed document.
func Decode(r io.Reader, v *validation.Validator) (*SeedFile, error) {
	var f SeedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode seed data: %w", err)
	}
	if errs := v.ValidateStruct(&f); len(errs) > 0 {
		return nil, fmt.Errorf("invalid seed data: %w", errs)
	}
	return &f, nil
}
