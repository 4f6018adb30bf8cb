package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"

	// Validation detail codes
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Quiz workflow errors
	CodeQuizNotFound             ErrorCode = "QUIZ_NOT_FOUND"
	CodeAttemptNotFound          ErrorCode = "ATTEMPT_NOT_FOUND"
	CodeQuestionNotFound         ErrorCode = "QUESTION_NOT_FOUND"
	CodeQuizInactive             ErrorCode = "QUIZ_INACTIVE"
	CodeNotEnrolled              ErrorCode = "NOT_ENROLLED"
	CodeAttemptLimitExceeded     ErrorCode = "ATTEMPT_LIMIT_EXCEEDED"
	CodeResultsNotVisible        ErrorCode = "RESULTS_NOT_VISIBLE"
	CodeAlreadySubmitted         ErrorCode = "ALREADY_SUBMITTED"
	CodeConcurrentAttemptStart   ErrorCode = "CONCURRENT_ATTEMPT_START"
	CodeInvalidQuestionReference ErrorCode = "INVALID_QUESTION_REFERENCE"
	CodeInvalidOptionReference   ErrorCode = "INVALID_OPTION_REFERENCE"
)

// ErrorKind groups codes by how a caller should react to them.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	// KindPrecondition: the caller may not do this right now. Not retried.
	KindPrecondition
	// KindConflict: someone already did this. Not retried.
	KindConflict
	// KindValidation: the request itself is malformed.
	KindValidation
	KindNotFound
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

var codeKinds = map[ErrorCode]ErrorKind{
	CodeInvalidInput:             KindValidation,
	CodeValidation:               KindValidation,
	CodeMissingField:             KindValidation,
	CodeInvalidFormat:            KindValidation,
	CodeOutOfRange:               KindValidation,
	CodeInvalidQuestionReference: KindValidation,
	CodeInvalidOptionReference:   KindValidation,
	CodeNotFound:                 KindNotFound,
	CodeQuizNotFound:             KindNotFound,
	CodeAttemptNotFound:          KindNotFound,
	CodeQuestionNotFound:         KindNotFound,
	CodeUnauthorized:             KindUnauthorized,
	CodeForbidden:                KindPrecondition,
	CodeQuizInactive:             KindPrecondition,
	CodeNotEnrolled:              KindPrecondition,
	CodeAttemptLimitExceeded:     KindPrecondition,
	CodeResultsNotVisible:        KindPrecondition,
	CodeAlreadySubmitted:         KindConflict,
	CodeConcurrentAttemptStart:   KindConflict,
}

// Kind returns the category of the code.
func (c ErrorCode) Kind() ErrorKind {
	if k, ok := codeKinds[c]; ok {
		return k
	}
	return KindInternal
}

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Kind returns the category of the error's code.
func (e *DomainError) Kind() ErrorKind {
	return e.Code.Kind()
}

// WithContext attaches a key/value that is surfaced in the error response details.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// KindOf reports the kind of err. Errors that are not DomainErrors are internal.
func KindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind()
	}
	return KindInternal
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil).
		WithContext("quiz_id", quizID)
}

func NewAttemptNotFoundError(attemptID string) *DomainError {
	return NewError(CodeAttemptNotFound, fmt.Sprintf("Attempt not found with ID: %s", attemptID), nil).
		WithContext("attempt_id", attemptID)
}

func NewQuestionNotFoundError(questionID string) *DomainError {
	return NewError(CodeQuestionNotFound, fmt.Sprintf("Question not found with ID: %s", questionID), nil).
		WithContext("question_id", questionID)
}

func NewQuizInactiveError(quizID string) *DomainError {
	return NewError(CodeQuizInactive, "Quiz is not active", nil).WithContext("quiz_id", quizID)
}

func NewNotEnrolledError(quizID string) *DomainError {
	return NewError(CodeNotEnrolled, "You are not enrolled in the program for this quiz", nil).
		WithContext("quiz_id", quizID)
}

func NewAttemptLimitExceededError(maxAttempts int) *DomainError {
	return NewError(CodeAttemptLimitExceeded, fmt.Sprintf("Maximum number of attempts (%d) reached", maxAttempts), nil).
		WithContext("max_attempts", maxAttempts)
}

func NewAlreadySubmittedError(attemptID string) *DomainError {
	return NewError(CodeAlreadySubmitted, "Attempt has already been submitted", nil).
		WithContext("attempt_id", attemptID)
}

func NewConcurrentAttemptStartError(cause error) *DomainError {
	return NewError(CodeConcurrentAttemptStart, "Another attempt was started at the same time", cause)
}

func NewResultsNotVisibleError(attemptID string) *DomainError {
	return NewError(CodeResultsNotVisible, "Results are not available yet", nil).
		WithContext("attempt_id", attemptID)
}

func NewInvalidQuestionReferenceError(questionID string) *DomainError {
	return NewError(CodeInvalidQuestionReference, "Question does not belong to this quiz", nil).
		WithContext("question_id", questionID)
}

func NewInvalidOptionReferenceError(questionID, optionID string) *DomainError {
	return NewError(CodeInvalidOptionReference, "Option does not belong to the referenced question", nil).
		WithContext("question_id", questionID).
		WithContext("option_id", optionID)
}

// ErrAttemptNumberTaken is returned by the attempt store when the
// (quiz, learner, attempt_number) slot was inserted by a concurrent request.
var ErrAttemptNumberTaken = errors.New("attempt number already taken")

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned when request validation fails on one or more fields.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s (and %d more)", v[0].Error(), len(v)-1)
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Code: CodeMissingField, Message: "field is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Code: CodeInvalidFormat, Message: "field has an invalid format", Value: value}
}

func NewOutOfRangeError(field string, value interface{}, min, max int) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("value must be between %d and %d", min, max),
		Value:   value,
	}
}
