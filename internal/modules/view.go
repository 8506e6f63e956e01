package modules

import (
	"context"
	"log"
	"sync"
	"time"
)

// Gateway is the slice of the platform API the module view depends on.
// internal/gateway provides the production implementation.
type Gateway interface {
	CourseModules(ctx context.Context) ([]Module, error)
	CourseQuiz(ctx context.Context, courseID string) (QuizDetail, error)
	SubmitQuizAttempt(ctx context.Context, courseID string, responses []QuizResponse) (AttemptResult, error)
	ResetQuiz(ctx context.Context, courseID string) error
	SaveProgress(ctx context.Context, bookName string) error
}

// RefreshOptions mirror the front-end's loadModules options.
type RefreshOptions struct {
	// PreserveSelection keeps the current module and step across the
	// reload, resolving by id and step signature rather than index.
	PreserveSelection bool
	// KeepQuizSession leaves an open quiz session alone. Only safe for
	// silent background refreshes.
	KeepQuizSession bool
	// Silent suppresses user-visible error state; failures are logged only.
	Silent bool
}

// View is the engine behind the modules screen. It owns the catalog, the
// step selector, the quiz engine and the notice queue, and serializes every
// state transition behind one mutex; network calls happen between lock
// acquisitions so a slow fetch never blocks user intents.
type View struct {
	gw Gateway

	mu       sync.Mutex
	catalog  Catalog
	selector Selector
	quiz     *QuizEngine
	notices  *noticeBoard

	loading   bool
	lastErr   string
	focus     bool
	focusPref *bool

	sched *Scheduler
}

func NewView(gw Gateway) *View {
	return &View{
		gw:      gw,
		quiz:    NewQuizEngine(),
		notices: newNoticeBoard(nil),
	}
}

// Refresh fetches the module list and reconciles local state against it:
// structural change clears the quiz cache (and the session, unless kept),
// selection is re-resolved by id, and the step position is resurrected by
// signature. The server list is the source of truth; no partial merge.
func (v *View) Refresh(ctx context.Context, opts RefreshOptions) error {
	v.mu.Lock()
	if v.loading && opts.Silent {
		v.mu.Unlock()
		return nil
	}
	v.loading = true
	var prevID string
	var sig *StepSignature
	if opts.PreserveSelection {
		if m := v.catalog.ActiveModule(); m != nil {
			prevID = m.ID
			sig = SignatureAt(m, v.selector.Index())
		}
	}
	v.mu.Unlock()

	mods, err := v.gw.CourseModules(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		if opts.Silent {
			log.Printf("modules: background refresh failed: %v", err)
			return nil
		}
		v.lastErr = err.Error()
		return err
	}
	v.lastErr = ""

	res := v.catalog.Apply(mods, prevID)
	if res.Changed {
		v.quiz.ClearCache()
		if !opts.KeepQuizSession {
			v.quiz.ClearSession()
		}
	} else if !opts.KeepQuizSession {
		v.quiz.ClearSession()
	}
	if res.Empty {
		v.selector.Set(0)
		return nil
	}
	v.selector.Resume(v.catalog.ActiveModule(), sig)
	v.syncFocusLocked()
	return nil
}

// SelectModule activates a module and lands on its actionable step.
func (v *View) SelectModule(moduleID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.catalog.Select(moduleID); err != nil {
		return err
	}
	m := v.catalog.ActiveModule()
	v.selector.Resume(m, nil)
	v.quiz.ClearSession()
	v.syncFocusLocked()
	return nil
}

// SelectStep jumps straight to a step chip, subject to the access rule.
func (v *View) SelectStep(idx int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	m := v.catalog.ActiveModule()
	if m == nil {
		return &NotFoundError{What: "active module"}
	}
	if !CanAccess(m.Flow, m.ActionableStepIndex, v.selector.Index(), idx) {
		return &ValidationError{Reason: "step is locked"}
	}
	if idx != v.selector.Index() {
		v.selector.Set(idx)
		v.quiz.ClearSession()
	}
	v.syncFocusLocked()
	return nil
}

// Advance moves forward (+1) or backward (-1) through the flow. Completed
// quizzes hopped over on the way forward surface as transient notices.
func (v *View) Advance(direction int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	m := v.catalog.ActiveModule()
	if m == nil {
		return false
	}
	skipped, moved := v.selector.Advance(m.Flow, direction)
	for _, title := range skipped {
		v.notices.Push("Skipped " + title + " (already completed).")
	}
	if moved {
		v.quiz.ClearSession()
		v.syncFocusLocked()
	}
	return moved
}

// EnsureQuizSession returns the session for the current quiz step, loading
// quiz detail through the cache on a miss. Calling it again for the same
// course returns the identical session.
func (v *View) EnsureQuizSession(ctx context.Context) (*Session, error) {
	v.mu.Lock()
	step := v.currentStepLocked()
	if step == nil {
		v.mu.Unlock()
		return nil, &NotFoundError{What: "current step"}
	}
	if step.Type != StepQuiz {
		v.mu.Unlock()
		return nil, &ValidationError{Reason: "current step is not a quiz"}
	}
	if step.CourseID == "" || step.QuizID == "" {
		v.mu.Unlock()
		return nil, &NotFoundError{What: "quiz metadata for step"}
	}
	if s := v.quiz.SessionFor(step.CourseID); s != nil {
		v.mu.Unlock()
		return s, nil
	}
	if _, ok := v.quiz.CachedDetail(step.CourseID); ok {
		s, err := v.quiz.StartSession(*step)
		v.mu.Unlock()
		return s, err
	}
	target := *step
	v.mu.Unlock()

	detail, err := v.gw.CourseQuiz(ctx, target.CourseID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		return nil, err
	}
	v.quiz.StoreDetail(target.CourseID, detail)
	return v.quiz.StartSession(target)
}

// Answer records the learner's pick for the current question. No-op while
// the session is locked for feedback.
func (v *View) Answer(questionID, optionID int64) (isCorrect, recorded bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.quiz.Answer(questionID, optionID)
}

// NextQuestion clears the feedback lock and moves on.
func (v *View) NextQuestion() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.quiz.AdvanceQuestion()
}

// Submit sends the accumulated responses. Preconditions are validated
// before any network call; on success the session is destroyed and the
// catalog refreshed so the completed step flips, on failure the session
// survives for a retry.
func (v *View) Submit(ctx context.Context) (AttemptResult, error) {
	v.mu.Lock()
	courseID, responses, err := v.quiz.BeginSubmit()
	v.mu.Unlock()
	if err != nil {
		return AttemptResult{}, err
	}

	result, err := v.gw.SubmitQuizAttempt(ctx, courseID, responses)

	v.mu.Lock()
	v.quiz.FinishSubmit(err == nil)
	if err != nil {
		v.notices.Push(err.Error())
		v.mu.Unlock()
		return AttemptResult{}, err
	}
	v.notices.Push("Quiz submitted! Progress updated.")
	v.mu.Unlock()

	if rerr := v.Refresh(ctx, RefreshOptions{PreserveSelection: true}); rerr != nil {
		log.Printf("modules: refresh after submit failed: %v", rerr)
	}
	return result, nil
}

// ResetQuiz clears server-side quiz progress for the current step's course
// so the learner can retake it, then drops the local cache entry and
// refreshes the catalog.
func (v *View) ResetQuiz(ctx context.Context) error {
	v.mu.Lock()
	step := v.currentStepLocked()
	if step == nil || step.Type != StepQuiz || step.CourseID == "" {
		v.mu.Unlock()
		return &ValidationError{Reason: "no quiz step selected"}
	}
	courseID := step.CourseID
	v.mu.Unlock()

	if err := v.gw.ResetQuiz(ctx, courseID); err != nil {
		v.mu.Lock()
		v.notices.Push(err.Error())
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	v.quiz.DropCourse(courseID)
	v.notices.Push("Quiz reset. It will appear again in the flow.")
	v.mu.Unlock()

	if rerr := v.Refresh(ctx, RefreshOptions{PreserveSelection: true}); rerr != nil {
		log.Printf("modules: refresh after reset failed: %v", rerr)
	}
	return nil
}

// MarkCourseRead records a "read" marker for the current course step's
// handout and refreshes the catalog, keeping any quiz session alive.
func (v *View) MarkCourseRead(ctx context.Context) error {
	v.mu.Lock()
	step := v.currentStepLocked()
	if step == nil || step.Type != StepCourse || step.Book == nil || step.Book.File == "" {
		v.mu.Unlock()
		return &ValidationError{Reason: "no handout on the current step"}
	}
	bookName := step.Book.File
	v.mu.Unlock()

	if err := v.gw.SaveProgress(ctx, bookName); err != nil {
		v.mu.Lock()
		v.notices.Push(err.Error())
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	v.notices.Push("Handout marked complete.")
	v.mu.Unlock()

	if rerr := v.Refresh(ctx, RefreshOptions{PreserveSelection: true, KeepQuizSession: true}); rerr != nil {
		log.Printf("modules: refresh after progress save failed: %v", rerr)
	}
	return nil
}

// SetFocus toggles the reader's focus mode. The preference sticks across
// steps; the effective flag only holds on a course step with a PDF.
func (v *View) SetFocus(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focusPref = &enabled
	v.syncFocusLocked()
}

// StartAutoRefresh begins the background polling loop. Cancelled via Close.
func (v *View) StartAutoRefresh(interval time.Duration) {
	v.mu.Lock()
	if v.sched != nil {
		v.mu.Unlock()
		return
	}
	v.sched = NewScheduler(interval)
	sched := v.sched
	v.mu.Unlock()
	sched.Start(v.autoRefreshTick)
}

// Close tears down the view's background work. Idempotent.
func (v *View) Close() {
	v.mu.Lock()
	sched := v.sched
	v.sched = nil
	v.mu.Unlock()
	if sched != nil {
		sched.Stop()
	}
}

func (v *View) autoRefreshTick() {
	v.mu.Lock()
	allowed := v.refreshAllowedLocked()
	v.mu.Unlock()
	if !allowed {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = v.Refresh(ctx, RefreshOptions{PreserveSelection: true, KeepQuizSession: true, Silent: true})
}

// refreshAllowedLocked is the background-refresh guard: never while a load
// is in flight, a quiz is open, the reader is in focus mode, or the learner
// sits on an unfinished course step.
func (v *View) refreshAllowedLocked() bool {
	if v.loading || v.quiz.Session() != nil || v.focus {
		return false
	}
	if st := v.currentStepLocked(); st != nil && st.Type == StepCourse && !st.Completed() {
		return false
	}
	return true
}

func (v *View) currentStepLocked() *Step {
	m := v.catalog.ActiveModule()
	if m == nil || len(m.Flow) == 0 {
		return nil
	}
	v.selector.ClampTo(m.Flow)
	return &m.Flow[v.selector.Index()]
}

func (v *View) syncFocusLocked() {
	st := v.currentStepLocked()
	if st == nil || st.Type != StepCourse || st.Book == nil || st.Book.PDFURL == "" {
		v.focus = false
		return
	}
	if v.focusPref == nil {
		def := true
		v.focusPref = &def
	}
	v.focus = *v.focusPref
}
