package modules

// Session is the ephemeral state of the quiz currently being answered.
// It is created lazily on entering a quiz step and torn down on module
// switch, step switch, submission or reset.
type Session struct {
	CourseID  string
	QuizID    string
	Quiz      QuizDetail
	Current   int
	Responses []QuizResponse
	// Locked is true while feedback for the current question is shown,
	// blocking a second answer until the learner advances.
	Locked bool

	submitting bool
}

func (s *Session) CurrentQuestion() *Question {
	if s.Current < 0 || s.Current >= len(s.Quiz.Questions) {
		return nil
	}
	return &s.Quiz.Questions[s.Current]
}

func (s *Session) OnLastQuestion() bool {
	return len(s.Quiz.Questions) > 0 && s.Current == len(s.Quiz.Questions)-1
}

// ResponseFor returns the recorded answer for a question id, if any.
func (s *Session) ResponseFor(questionID int64) (QuizResponse, bool) {
	for _, r := range s.Responses {
		if r.QuestionID == questionID {
			return r, true
		}
	}
	return QuizResponse{}, false
}

// QuizEngine owns the single in-flight Session plus the per-course quiz
// detail cache. It is a pure state machine: fetching and submitting over
// the network is the caller's job, keeping every transition synchronous.
type QuizEngine struct {
	cache   map[string]QuizDetail
	session *Session
}

func NewQuizEngine() *QuizEngine {
	return &QuizEngine{cache: map[string]QuizDetail{}}
}

func (e *QuizEngine) Session() *Session { return e.session }

// SessionFor returns the open session when it belongs to the course,
// otherwise nil.
func (e *QuizEngine) SessionFor(courseID string) *Session {
	if e.session != nil && e.session.CourseID == courseID {
		return e.session
	}
	return nil
}

func (e *QuizEngine) CachedDetail(courseID string) (QuizDetail, bool) {
	d, ok := e.cache[courseID]
	return d, ok
}

func (e *QuizEngine) StoreDetail(courseID string, d QuizDetail) {
	e.cache[courseID] = d
}

// StartSession materializes a session for a quiz step from cached quiz
// detail. Idempotent: an existing session for the same course is returned
// unchanged so re-rendering a quiz step never resets progress.
func (e *QuizEngine) StartSession(step Step) (*Session, error) {
	if step.CourseID == "" || step.QuizID == "" {
		return nil, &NotFoundError{What: "quiz metadata for step"}
	}
	if s := e.SessionFor(step.CourseID); s != nil {
		return s, nil
	}
	detail, ok := e.cache[step.CourseID]
	if !ok {
		return nil, &NotFoundError{What: "quiz detail for course " + step.CourseID}
	}
	e.session = &Session{
		CourseID:  step.CourseID,
		QuizID:    detail.ID,
		Quiz:      detail,
		Current:   0,
		Responses: nil,
	}
	return e.session, nil
}

// Answer records (or overwrites) the response for the current question and
// locks the session for feedback. Ignored while locked. The correctness
// result is UI feedback only; the server regrades on submission.
func (e *QuizEngine) Answer(questionID, optionID int64) (isCorrect, recorded bool) {
	s := e.session
	if s == nil || s.Locked {
		return false, false
	}
	q := s.CurrentQuestion()
	if q == nil || q.ID != questionID {
		return false, false
	}
	s.Locked = true

	kept := s.Responses[:0]
	for _, r := range s.Responses {
		if r.QuestionID != questionID {
			kept = append(kept, r)
		}
	}
	s.Responses = append(kept, QuizResponse{QuestionID: questionID, OptionID: optionID})
	return optionID == q.CorrectOptionID, true
}

// AdvanceQuestion moves to the next question. Permitted only from the
// locked state and never past the last question.
func (e *QuizEngine) AdvanceQuestion() bool {
	s := e.session
	if s == nil || !s.Locked || s.OnLastQuestion() {
		return false
	}
	s.Current++
	s.Locked = false
	return true
}

// BeginSubmit validates the submit preconditions and marks the session as
// submitting so two rapid submits cannot both reach the network. The
// returned responses are what the caller sends to the server.
func (e *QuizEngine) BeginSubmit() (courseID string, responses []QuizResponse, err error) {
	s := e.session
	if s == nil {
		return "", nil, &ValidationError{Reason: "no quiz in progress"}
	}
	if s.submitting {
		return "", nil, &ValidationError{Reason: "submission already in progress"}
	}
	if !s.Locked || !s.OnLastQuestion() {
		return "", nil, &ValidationError{Reason: "answer the final question before submitting"}
	}
	if len(s.Responses) < len(s.Quiz.Questions) {
		return "", nil, &ValidationError{Reason: "please answer all questions before submitting"}
	}
	s.submitting = true
	return s.CourseID, s.Responses, nil
}

// FinishSubmit completes a submission round-trip. On success the session is
// destroyed; on failure it survives so the learner can retry without
// re-answering.
func (e *QuizEngine) FinishSubmit(success bool) {
	if e.session == nil {
		return
	}
	if success {
		e.session = nil
		return
	}
	e.session.submitting = false
}

// DropCourse discards the session and the cached quiz detail for one
// course, used when its quiz progress is reset server-side.
func (e *QuizEngine) DropCourse(courseID string) {
	delete(e.cache, courseID)
	if e.session != nil && e.session.CourseID == courseID {
		e.session = nil
	}
}

func (e *QuizEngine) ClearSession() { e.session = nil }

// ClearCache wipes every cached quiz detail. Called whenever the catalog
// fetch detects a structural change: stale quiz content must not survive.
func (e *QuizEngine) ClearCache() {
	e.cache = map[string]QuizDetail{}
}
