package modules

// Selector resolves the "current step" of the active module and enforces
// forward-navigation gating. The index is always clamped into the flow.
type Selector struct {
	index int
}

func (s *Selector) Index() int { return s.index }

func (s *Selector) Set(idx int) { s.index = idx }

// ClampTo pulls the index back into [0, len(flow)-1].
func (s *Selector) ClampTo(flow []Step) {
	if len(flow) == 0 {
		s.index = 0
		return
	}
	s.index = clamp(s.index, 0, len(flow)-1)
}

// shouldSkip reports whether forward navigation hops over the step.
// Completed course steps stay reachable so the learner can re-read them;
// only completed quiz steps are skipped.
func shouldSkip(st Step) bool {
	return st.Type == StepQuiz && st.Completed()
}

// nextActionable returns the first index >= start that is not a completed
// quiz step, or -1 when none remains.
func nextActionable(flow []Step, start int) int {
	for i := start; i < len(flow); i++ {
		if !shouldSkip(flow[i]) {
			return i
		}
	}
	return -1
}

// Advance moves the selector one logical position. Forward movement skips
// completed quiz steps, reporting their titles so the caller can surface a
// transient notice; it is a no-op when nothing actionable remains. Backward
// movement is always one position, clamped at 0, with no skip logic.
func (s *Selector) Advance(flow []Step, direction int) (skipped []string, moved bool) {
	if len(flow) == 0 {
		return nil, false
	}
	if direction > 0 {
		next := nextActionable(flow, s.index+1)
		if next == -1 {
			return nil, false
		}
		for i := s.index + 1; i < next; i++ {
			if shouldSkip(flow[i]) {
				title := flow[i].Title
				if title == "" {
					title = "quiz"
				}
				skipped = append(skipped, title)
			}
		}
		s.index = next
		return skipped, true
	}
	prev := s.index
	s.index = clamp(s.index-1, 0, len(flow)-1)
	return nil, s.index != prev
}

// CanAccess reports whether a step chip is directly clickable: the step is
// completed, or already reachable via the actionable index, or at/behind
// the current position. Skipping ahead into unearned content stays blocked.
func CanAccess(flow []Step, actionableIndex, currentIndex, idx int) bool {
	if idx < 0 || idx >= len(flow) {
		return false
	}
	return flow[idx].Completed() || idx <= actionableIndex || idx <= currentIndex
}

// SignatureAt captures the structural key of the step at idx, used to
// resume the learner's position after a reload.
func SignatureAt(m *Module, idx int) *StepSignature {
	if m == nil || idx < 0 || idx >= len(m.Flow) {
		return nil
	}
	st := m.Flow[idx]
	return &StepSignature{
		ModuleID: m.ID,
		CourseID: st.CourseID,
		Type:     st.Type,
		QuizID:   st.QuizID,
	}
}

// findBySignature searches the module's flow for a step matching the
// signature's course id (and quiz id for quiz steps). Returns -1 when the
// signature no longer resolves.
func findBySignature(m *Module, sig StepSignature) int {
	if m == nil || (sig.ModuleID != "" && sig.ModuleID != m.ID) {
		return -1
	}
	for i, st := range m.Flow {
		if st.CourseID != sig.CourseID {
			continue
		}
		if sig.Type != "" && st.Type != sig.Type {
			continue
		}
		if sig.Type == StepQuiz && sig.QuizID != "" && st.QuizID != sig.QuizID {
			continue
		}
		return i
	}
	return -1
}

// Resume repositions the selector after a reload: signature match first,
// then the module's actionable index, clamped into the new flow.
func (s *Selector) Resume(m *Module, sig *StepSignature) {
	if m == nil || len(m.Flow) == 0 {
		s.index = 0
		return
	}
	idx := m.ActionableStepIndex
	if sig != nil {
		if candidate := findBySignature(m, *sig); candidate >= 0 {
			idx = candidate
		}
	}
	s.index = clamp(idx, 0, len(m.Flow)-1)
}
