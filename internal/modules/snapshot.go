package modules

// Read-only view-model handed to the presentation layer. The core never
// touches a rendering surface; adapters consume Snapshot and feed intents
// back through View methods.

type ModuleCard struct {
	ID             string
	Title          string
	Dialect        string
	CompletedSteps int
	TotalSteps     int
	Percentage     float64
	Active         bool
}

type StepChip struct {
	Number     int
	Type       StepType
	Title      string
	Completed  bool
	Active     bool
	Accessible bool
}

type OptionState string

const (
	OptionUnanswered OptionState = "unanswered"
	OptionSelected   OptionState = "selected"
	OptionCorrect    OptionState = "correct"
	OptionIncorrect  OptionState = "incorrect"
)

type OptionView struct {
	ID    int64
	Text  string
	State OptionState
}

type QuestionView struct {
	Number  int
	Total   int
	Prompt  string
	Options []OptionView
	Locked  bool
}

type StepView struct {
	Type       StepType
	Number     int
	Total      int
	Title      string
	Completed  bool
	Book       *Book
	Quiz       *QuizInfo
	CanAdvance bool
	CanGoBack  bool
}

type Snapshot struct {
	Loading bool
	Err     string
	Empty   bool

	Modules     []ModuleCard
	ModuleTitle string
	Summary     string
	Dialect     string
	Progress    Progress

	Steps    []StepChip
	Step     *StepView
	Question *QuestionView

	Focus   bool
	Notices []string
}

// Snapshot assembles the current renderable state under the view lock.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Loading: v.loading,
		Err:     v.lastErr,
		Empty:   v.catalog.Empty(),
		Focus:   v.focus,
		Notices: v.notices.Active(),
	}

	for i, m := range v.catalog.Modules() {
		snap.Modules = append(snap.Modules, ModuleCard{
			ID:             m.ID,
			Title:          m.Title,
			Dialect:        m.Dialect,
			CompletedSteps: m.Progress.CompletedSteps,
			TotalSteps:     m.Progress.TotalSteps,
			Percentage:     m.Progress.Percentage,
			Active:         i == v.catalog.ActiveIndex(),
		})
	}

	m := v.catalog.ActiveModule()
	if m == nil {
		return snap
	}
	snap.ModuleTitle = m.Title
	snap.Summary = m.Summary
	snap.Dialect = m.Dialect
	snap.Progress = m.Progress

	for i, st := range m.Flow {
		snap.Steps = append(snap.Steps, StepChip{
			Number:     st.StepNumber,
			Type:       st.Type,
			Title:      st.Title,
			Completed:  st.Completed(),
			Active:     i == v.selector.Index(),
			Accessible: CanAccess(m.Flow, m.ActionableStepIndex, v.selector.Index(), i),
		})
	}

	st := v.currentStepLocked()
	if st == nil {
		return snap
	}
	snap.Step = &StepView{
		Type:       st.Type,
		Number:     st.StepNumber,
		Total:      len(m.Flow),
		Title:      st.Title,
		Completed:  st.Completed(),
		Book:       st.Book,
		Quiz:       st.Quiz,
		CanAdvance: st.Completed() && nextActionable(m.Flow, v.selector.Index()+1) != -1,
		CanGoBack:  v.selector.Index() > 0,
	}

	if s := v.quiz.Session(); s != nil && st.Type == StepQuiz && s.CourseID == st.CourseID {
		snap.Question = questionView(s)
	}
	return snap
}

func questionView(s *Session) *QuestionView {
	q := s.CurrentQuestion()
	if q == nil {
		return nil
	}
	qv := &QuestionView{
		Number: s.Current + 1,
		Total:  len(s.Quiz.Questions),
		Prompt: q.Prompt,
		Locked: s.Locked,
	}
	resp, answered := s.ResponseFor(q.ID)
	for _, opt := range q.Options {
		state := OptionUnanswered
		if s.Locked && answered {
			switch {
			case opt.ID == q.CorrectOptionID:
				state = OptionCorrect
			case opt.ID == resp.OptionID:
				state = OptionIncorrect
			}
		} else if answered && opt.ID == resp.OptionID {
			state = OptionSelected
		}
		qv.Options = append(qv.Options, OptionView{ID: opt.ID, Text: opt.Text, State: state})
	}
	return qv
}
