package modules

import (
	"bytes"
	"encoding/json"
)

type StepType string

const (
	StepCourse StepType = "course"
	StepQuiz   StepType = "quiz"
)

type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusCompleted StepStatus = "completed"
)

// Progress is the server-computed rollup for one module.
type Progress struct {
	CompletedSteps int     `json:"completed_steps"`
	TotalSteps     int     `json:"total_steps"`
	Percentage     float64 `json:"percentage"`
}

// Book describes the handout attached to a course step.
type Book struct {
	File         string `json:"file,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	PDFURL       string `json:"pdf_url,omitempty"`
	HandoutLabel string `json:"handout_label,omitempty"`
	PageRange    string `json:"page_range,omitempty"`
	LastReadAt   string `json:"last_read_at,omitempty"`
}

// QuizInfo is the flow-level summary of a quiz step. The full question set
// lives in QuizDetail and is fetched separately.
type QuizInfo struct {
	ID             string `json:"id"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	Score          int    `json:"score,omitempty"`
	TotalQuestions int    `json:"total_questions,omitempty"`
	CompletedAt    string `json:"completed_at,omitempty"`
}

// Step is one entry of a module flow, either a reading ("course") step or an
// assessment ("quiz") step, discriminated by Type.
type Step struct {
	Type       StepType   `json:"type"`
	StepNumber int        `json:"step_number"`
	CourseID   string     `json:"course_id"`
	QuizID     string     `json:"quiz_id,omitempty"`
	Title      string     `json:"title"`
	Status     StepStatus `json:"status"`
	Book       *Book      `json:"book,omitempty"`
	Quiz       *QuizInfo  `json:"quiz,omitempty"`
}

func (s Step) Completed() bool { return s.Status == StatusCompleted }

type Module struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Dialect             string   `json:"dialect,omitempty"`
	Summary             string   `json:"summary,omitempty"`
	Flow                []Step   `json:"flow"`
	Progress            Progress `json:"progress"`
	ActionableStepIndex int      `json:"actionable_step_index"`
}

// ActionableIndex returns the index of the first non-completed step, or the
// last index when every step is completed. Empty flows yield 0.
func ActionableIndex(flow []Step) int {
	for i, st := range flow {
		if !st.Completed() {
			return i
		}
	}
	if len(flow) == 0 {
		return 0
	}
	return len(flow) - 1
}

type Option struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID              int64    `json:"id"`
	Prompt          string   `json:"prompt"`
	Explanation     string   `json:"explanation,omitempty"`
	CorrectOptionID int64    `json:"correct_option_id"`
	Options         []Option `json:"options"`
}

type QuizDetail struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// QuizResponse is one submitted answer. At most one per question id.
type QuizResponse struct {
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
}

type ResponseGrade struct {
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
	Correct    bool  `json:"correct"`
}

type AttemptResult struct {
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	CompletedAt    string          `json:"completed_at"`
	Breakdown      []ResponseGrade `json:"breakdown,omitempty"`
}

// StepSignature is the structural key used to relocate the learner's
// position after a catalog reload.
type StepSignature struct {
	ModuleID string
	CourseID string
	Type     StepType
	QuizID   string
}

// modulesEqual reports structural equality between two catalog fetches:
// same length, same ids in order, deep-equal serialization per module.
func modulesEqual(prev, next []Module) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if prev[i].ID != next[i].ID {
			return false
		}
		a, err1 := json.Marshal(prev[i])
		b, err2 := json.Marshal(next[i])
		if err1 != nil || err2 != nil || !bytes.Equal(a, b) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
