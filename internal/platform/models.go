package platform

import "errors"

// Storage-side records. The API shape handed to clients is assembled from
// these into the shared internal/modules types.

type User struct {
	StudentID string `json:"student_id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

type ModuleRecord struct {
	ID       string
	Title    string
	Dialect  string
	Summary  string
	Position int
}

type CourseRecord struct {
	ID           string
	ModuleID     string
	Position     int
	Title        string
	BookFile     string
	BookTitle    string
	HandoutLabel string
	PageRange    string
}

type QuizRecord struct {
	ID          string
	CourseID    string
	Title       string
	Description string
}

var (
	ErrBadCredentials      = errors.New("invalid student id or password")
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrIncompleteResponses = errors.New("all questions must be answered before submitting")
)
