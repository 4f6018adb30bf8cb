package domain

// CanViewResults reports whether graded data for the attempt may be shown to its learner.
func CanViewResults(attempt *Attempt, quiz *Quiz) bool {
	return quiz.ShowResultsImmediately || attempt.IsSubmitted()
}

// AuthorizeResultView decides whether viewer may read attempt's results.
// Staff may read any attempt. Learners must own it and pass CanViewResults.
func AuthorizeResultView(viewer Viewer, attempt *Attempt, quiz *Quiz) error {
	if viewer.IsStaff() {
		return nil
	}
	if attempt.LearnerID != viewer.UserID {
		return NewForbiddenError("attempt belongs to another learner").WithContext("attempt_id", attempt.ID)
	}
	if !CanViewResults(attempt, quiz) {
		return NewResultsNotVisibleError(attempt.ID)
	}
	return nil
}

// RevealAnswerKey reports whether Option.IsCorrect may be included in a quiz preview.
func RevealAnswerKey(viewer Viewer) bool {
	return viewer.IsStaff()
}

// Redacted returns a deep copy of the quiz with every Option.IsCorrect cleared.
func (q *Quiz) Redacted() *Quiz {
	cp := q.Clone()
	for _, question := range cp.Questions {
		for _, opt := range question.Options {
			opt.IsCorrect = false
		}
	}
	return cp
}

// Clone returns a deep copy of the quiz and its question tree.
func (q *Quiz) Clone() *Quiz {
	cp := *q
	if q.TimeLimitMinutes != nil {
		limit := *q.TimeLimitMinutes
		cp.TimeLimitMinutes = &limit
	}
	cp.Questions = make([]*Question, len(q.Questions))
	for i, question := range q.Questions {
		qc := *question
		qc.Options = make([]*Option, len(question.Options))
		for j, opt := range question.Options {
			oc := *opt
			qc.Options[j] = &oc
		}
		cp.Questions[i] = &qc
	}
	return &cp
}
