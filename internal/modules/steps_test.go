package modules

import "testing"

func TestAdvanceForwardSkipsCompletedQuizzes(t *testing.T) {
	flow := []Step{
		course("c1", true),
		quizST("c1", "q1", true),
		quizST("c2", "q2", true),
		course("c3", false),
	}
	var s Selector
	skipped, moved := s.Advance(flow, 1)
	if !moved || s.Index() != 3 {
		t.Fatalf("expected landing on index 3, got moved=%v index=%d", moved, s.Index())
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped titles, got %v", skipped)
	}
	if skipped[0] != "Quiz q1" || skipped[1] != "Quiz q2" {
		t.Fatalf("unexpected skipped titles: %v", skipped)
	}
}

func TestAdvanceForwardNeverLandsOnCompletedQuiz(t *testing.T) {
	flow := []Step{
		course("c1", true),
		quizST("c1", "q1", true),
		quizST("c2", "q2", true),
	}
	var s Selector
	if _, moved := s.Advance(flow, 1); moved {
		t.Fatalf("expected no-op when only completed quizzes remain, moved to %d", s.Index())
	}
	if s.Index() != 0 {
		t.Fatalf("index changed on no-op advance: %d", s.Index())
	}
}

func TestAdvanceForwardStopsOnPendingQuiz(t *testing.T) {
	// [course(pending), quiz(pending), course(pending)]: after completing
	// step 0, +1 must land on the quiz, not hop to step 2.
	flow := []Step{
		course("c1", true),
		quizST("c1", "q1", false),
		course("c2", false),
	}
	var s Selector
	skipped, moved := s.Advance(flow, 1)
	if !moved || s.Index() != 1 {
		t.Fatalf("expected index 1 (quiz), got moved=%v index=%d", moved, s.Index())
	}
	if len(skipped) != 0 {
		t.Fatalf("nothing should have been skipped: %v", skipped)
	}
}

func TestAdvanceForwardReachesCompletedCourse(t *testing.T) {
	// Completed reading steps stay visitable going forward.
	flow := []Step{course("c1", true), course("c2", true)}
	var s Selector
	if _, moved := s.Advance(flow, 1); !moved || s.Index() != 1 {
		t.Fatalf("expected to land on completed course, index=%d", s.Index())
	}
}

func TestAdvanceBackwardClampsAndNeverSkips(t *testing.T) {
	flow := []Step{course("c1", true), quizST("c1", "q1", true), course("c2", false)}
	s := Selector{index: 2}
	if _, moved := s.Advance(flow, -1); !moved || s.Index() != 1 {
		t.Fatalf("backward should step exactly one, index=%d", s.Index())
	}
	s.Advance(flow, -1)
	if s.Index() != 0 {
		t.Fatalf("expected index 0, got %d", s.Index())
	}
	if _, moved := s.Advance(flow, -1); moved || s.Index() != 0 {
		t.Fatalf("backward below 0 must clamp, index=%d", s.Index())
	}
}

func TestCanAccess(t *testing.T) {
	flow := []Step{course("c1", false), quizST("c1", "q1", false), course("c2", false)}

	// actionable=0, current=0: index 2 locked.
	if CanAccess(flow, 0, 0, 2) {
		t.Fatal("index 2 should be locked while actionable=0")
	}
	if !CanAccess(flow, 0, 0, 0) {
		t.Fatal("index 0 should be clickable")
	}
	// Unlocks once the actionable index reaches it.
	if !CanAccess(flow, 2, 0, 2) {
		t.Fatal("index 2 should unlock at actionable=2")
	}
	// Completed steps stay reviewable regardless.
	flow[2].Status = StatusCompleted
	if !CanAccess(flow, 0, 0, 2) {
		t.Fatal("completed step should be clickable")
	}
	if CanAccess(flow, 0, 0, 3) || CanAccess(flow, 0, 0, -1) {
		t.Fatal("out-of-range index must not be accessible")
	}
}

func TestSignatureResurrection(t *testing.T) {
	m := module("m1", course("c1", true), quizST("c1", "q1", false), course("c2", false))
	sig := SignatureAt(&m, 1)
	if sig == nil || sig.CourseID != "c1" || sig.Type != StepQuiz || sig.QuizID != "q1" {
		t.Fatalf("unexpected signature: %+v", sig)
	}

	// Reload inserts a new course at the head; the quiz moves to index 2.
	reloaded := module("m1", course("c0", false), course("c1", true), quizST("c1", "q1", false), course("c2", false))
	var s Selector
	s.Resume(&reloaded, sig)
	if s.Index() != 2 {
		t.Fatalf("expected resurrection at index 2, got %d", s.Index())
	}

	// A signature that no longer resolves falls back to the actionable step.
	gone := StepSignature{ModuleID: "m1", CourseID: "deleted", Type: StepQuiz, QuizID: "qx"}
	s.Resume(&reloaded, &gone)
	if s.Index() != reloaded.ActionableStepIndex {
		t.Fatalf("expected actionable fallback %d, got %d", reloaded.ActionableStepIndex, s.Index())
	}

	// Signatures from another module never match.
	foreign := StepSignature{ModuleID: "m2", CourseID: "c1", Type: StepQuiz, QuizID: "q1"}
	if idx := findBySignature(&reloaded, foreign); idx != -1 {
		t.Fatalf("foreign module signature matched index %d", idx)
	}
}

func TestResumeClampsIntoFlow(t *testing.T) {
	m := module("m1", course("c1", false))
	s := Selector{index: 5}
	s.Resume(&m, nil)
	if s.Index() != 0 {
		t.Fatalf("expected clamp to 0, got %d", s.Index())
	}
}
