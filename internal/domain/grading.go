package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// gradingStrategy scores a single response to a question of one type.
// The option reference has already been validated when it is called.
type gradingStrategy interface {
	grade(q *Question, selected *Option) (isCorrect bool, points int)
}

// selectedOptionStrategy awards full points when the chosen option is correct.
type selectedOptionStrategy struct{}

func (selectedOptionStrategy) grade(q *Question, selected *Option) (bool, int) {
	if selected == nil || !selected.IsCorrect {
		return false, 0
	}
	return true, q.Points
}

// zeroStrategy never awards points. Free-text answers are stored ungraded.
type zeroStrategy struct{}

func (zeroStrategy) grade(*Question, *Option) (bool, int) {
	return false, 0
}

var gradingStrategies = map[QuestionType]gradingStrategy{
	QuestionTypeMultipleChoice: selectedOptionStrategy{},
	QuestionTypeTrueFalse:      selectedOptionStrategy{},
	QuestionTypeShortAnswer:    zeroStrategy{},
	QuestionTypeEssay:          zeroStrategy{},
}

func strategyFor(t QuestionType) gradingStrategy {
	if s, ok := gradingStrategies[t]; ok {
		return s
	}
	return zeroStrategy{}
}

// Grader turns a submission into a GradedAttempt. It does not touch storage.
type Grader struct {
	newID func() string
}

// NewGrader returns a Grader that assigns answer ids with newID.
func NewGrader(newID func() string) *Grader {
	return &Grader{newID: newID}
}

// Grade scores submitted against quiz for an in-progress attempt. The returned
// attempt is a copy; the input attempt is left untouched. Any invalid reference
// rejects the whole submission.
func (g *Grader) Grade(attempt *Attempt, quiz *Quiz, submitted []SubmittedAnswer, now time.Time) (*GradedAttempt, error) {
	if attempt.IsSubmitted() {
		return nil, NewAlreadySubmittedError(attempt.ID)
	}

	answers := make([]*Answer, 0, len(submitted))
	seen := make(map[string]struct{}, len(submitted))
	total := 0

	for _, sub := range submitted {
		question, ok := quiz.Question(sub.QuestionID)
		if !ok {
			return nil, NewInvalidQuestionReferenceError(sub.QuestionID)
		}
		if _, dup := seen[sub.QuestionID]; dup {
			return nil, NewInvalidInputError("question answered more than once").
				WithContext("question_id", sub.QuestionID)
		}
		seen[sub.QuestionID] = struct{}{}

		var selected *Option
		if sub.SelectedOptionID != nil {
			selected, ok = question.Option(*sub.SelectedOptionID)
			if !ok {
				return nil, NewInvalidOptionReferenceError(question.ID, *sub.SelectedOptionID)
			}
		}

		isCorrect, points := strategyFor(question.Type).grade(question, selected)
		total += points

		answers = append(answers, &Answer{
			ID:               g.newID(),
			AttemptID:        attempt.ID,
			QuestionID:       question.ID,
			SelectedOptionID: sub.SelectedOptionID,
			AnswerText:       sub.AnswerText,
			IsCorrect:        isCorrect,
			PointsEarned:     points,
		})
	}

	percentage := Percentage(total, attempt.MaxPossibleScore)
	passed := percentage.GreaterThanOrEqual(decimal.NewFromInt(int64(quiz.PassingScore)))
	pct, _ := percentage.Float64()
	taken := TimeTakenMinutes(attempt.StartedAt, now)
	submittedAt := now

	graded := *attempt
	graded.TotalScore = &total
	graded.Percentage = &pct
	graded.IsPassed = &passed
	graded.SubmittedAt = &submittedAt
	graded.TimeTakenMinutes = &taken
	graded.Answers = answers

	return &GradedAttempt{Attempt: &graded, Answers: answers}, nil
}

// Percentage is total/maxScore*100 rounded to two decimals, or 0 when maxScore is not positive.
func Percentage(total, maxScore int) decimal.Decimal {
	if maxScore <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(total)).
		Div(decimal.NewFromInt(int64(maxScore))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// TimeTakenMinutes returns whole minutes elapsed between start and end, never negative.
func TimeTakenMinutes(start, end time.Time) int {
	minutes := int(end.Sub(start) / time.Minute)
	if minutes < 0 {
		return 0
	}
	return minutes
}
