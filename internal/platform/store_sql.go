package platform

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/prono-coach/pronocoach-learn/internal/modules"
	syncx "github.com/prono-coach/pronocoach-learn/internal/sync"
)

// SQLStore assembles the course-module catalog the client consumes and
// records learner activity. One instance serves both sqlite and postgres.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	events *syncx.EventRepo
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, events: syncx.NewEventRepo(db), now: time.Now}
}

func (s *SQLStore) Authenticate(ctx context.Context, studentID, password string) (User, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT student_id, firstname, lastname, email, password FROM users WHERE student_id=$1`,
		studentID).Scan(&u.StudentID, &u.Firstname, &u.Lastname, &u.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrBadCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrBadCredentials
	}
	return u, nil
}

type readMarker struct {
	progress   float64
	lastReadAt int64
}

type latestAttempt struct {
	quizID         string
	score          int
	totalQuestions int
	completedAt    int64
}

// ModulesForUser builds the full module list for one learner: ordered
// flow of course and quiz steps, per-step status, progress rollup and the
// actionable step index. The list is what /api/course_modules serves.
func (s *SQLStore) ModulesForUser(ctx context.Context, userID string) ([]modules.Module, error) {
	mods, err := s.moduleRecords(ctx)
	if err != nil {
		return nil, err
	}
	coursesByModule, quizByCourse, questionCount, err := s.curriculum(ctx)
	if err != nil {
		return nil, err
	}
	reads, err := s.readMarkers(ctx, userID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.latestAttempts(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]modules.Module, 0, len(mods))
	for _, mr := range mods {
		m := modules.Module{
			ID:      mr.ID,
			Title:   mr.Title,
			Dialect: mr.Dialect,
			Summary: mr.Summary,
		}
		for _, cr := range coursesByModule[mr.ID] {
			m.Flow = append(m.Flow, courseStep(cr, reads))
			if q, ok := quizByCourse[cr.ID]; ok {
				m.Flow = append(m.Flow, quizStep(cr, q, questionCount[q.ID], attempts))
			}
		}
		completed := 0
		for i := range m.Flow {
			m.Flow[i].StepNumber = i + 1
			if m.Flow[i].Completed() {
				completed++
			}
		}
		m.Progress = modules.Progress{
			CompletedSteps: completed,
			TotalSteps:     len(m.Flow),
		}
		if len(m.Flow) > 0 {
			m.Progress.Percentage = roundTenth(100 * float64(completed) / float64(len(m.Flow)))
		}
		m.ActionableStepIndex = modules.ActionableIndex(m.Flow)
		out = append(out, m)
	}
	return out, nil
}

func courseStep(cr CourseRecord, reads map[string]readMarker) modules.Step {
	st := modules.Step{
		Type:     modules.StepCourse,
		CourseID: cr.ID,
		Title:    cr.Title,
		Status:   modules.StatusPending,
		Book: &modules.Book{
			File:         cr.BookFile,
			DisplayName:  cr.BookTitle,
			HandoutLabel: cr.HandoutLabel,
			PageRange:    cr.PageRange,
		},
	}
	if cr.BookFile != "" {
		st.Book.PDFURL = "/assets/books/" + cr.BookFile
		if rm, ok := reads[cr.BookFile]; ok {
			st.Book.LastReadAt = time.Unix(rm.lastReadAt, 0).UTC().Format(time.RFC3339)
			if rm.progress >= 100 {
				st.Status = modules.StatusCompleted
			}
		}
	}
	return st
}

func quizStep(cr CourseRecord, q QuizRecord, questions int, attempts map[string]latestAttempt) modules.Step {
	st := modules.Step{
		Type:     modules.StepQuiz,
		CourseID: cr.ID,
		QuizID:   q.ID,
		Title:    q.Title,
		Status:   modules.StatusPending,
		Quiz: &modules.QuizInfo{
			ID:             q.ID,
			Title:          q.Title,
			Description:    q.Description,
			TotalQuestions: questions,
		},
	}
	if at, ok := attempts[cr.ID]; ok {
		st.Status = modules.StatusCompleted
		st.Quiz.Score = at.score
		st.Quiz.TotalQuestions = at.totalQuestions
		st.Quiz.CompletedAt = time.Unix(at.completedAt, 0).UTC().Format(time.RFC3339)
	}
	return st
}

func (s *SQLStore) moduleRecords(ctx context.Context) ([]ModuleRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, dialect, summary, position FROM modules ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ModuleRecord
	for rows.Next() {
		var m ModuleRecord
		if err := rows.Scan(&m.ID, &m.Title, &m.Dialect, &m.Summary, &m.Position); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) curriculum(ctx context.Context) (map[string][]CourseRecord, map[string]QuizRecord, map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.module_id, c.position, c.title, c.book_file, c.book_title, c.handout_label, c.page_range,
		        q.id, q.title, q.description, q.questions_json
		 FROM module_courses c
		 LEFT JOIN quizzes q ON q.course_id = c.id
		 ORDER BY c.module_id, c.position, c.id`)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	courses := map[string][]CourseRecord{}
	quizzes := map[string]QuizRecord{}
	counts := map[string]int{}
	for rows.Next() {
		var cr CourseRecord
		var qID, qTitle, qDesc, qJSON sql.NullString
		if err := rows.Scan(&cr.ID, &cr.ModuleID, &cr.Position, &cr.Title, &cr.BookFile, &cr.BookTitle,
			&cr.HandoutLabel, &cr.PageRange, &qID, &qTitle, &qDesc, &qJSON); err != nil {
			return nil, nil, nil, err
		}
		courses[cr.ModuleID] = append(courses[cr.ModuleID], cr)
		if qID.Valid {
			quizzes[cr.ID] = QuizRecord{ID: qID.String, CourseID: cr.ID, Title: qTitle.String, Description: qDesc.String}
			var qs []modules.Question
			if qJSON.Valid && json.Unmarshal([]byte(qJSON.String), &qs) == nil {
				counts[qID.String] = len(qs)
			}
		}
	}
	return courses, quizzes, counts, rows.Err()
}

func (s *SQLStore) readMarkers(ctx context.Context, userID string) (map[string]readMarker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT book_name, progress, last_read_at FROM reading_progress WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]readMarker{}
	for rows.Next() {
		var book string
		var rm readMarker
		if err := rows.Scan(&book, &rm.progress, &rm.lastReadAt); err != nil {
			return nil, err
		}
		out[book] = rm
	}
	return out, rows.Err()
}

func (s *SQLStore) latestAttempts(ctx context.Context, userID string) (map[string]latestAttempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT course_id, quiz_id, score, total_questions, completed_at
		 FROM quiz_attempts WHERE user_id=$1 ORDER BY completed_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]latestAttempt{}
	for rows.Next() {
		var courseID string
		var at latestAttempt
		if err := rows.Scan(&courseID, &at.quizID, &at.score, &at.totalQuestions, &at.completedAt); err != nil {
			return nil, err
		}
		if _, seen := out[courseID]; !seen {
			out[courseID] = at
		}
	}
	return out, rows.Err()
}

// QuizForCourse returns the full quiz detail, questions included. Note the
// correct option ids ship with it; the front-end uses them for immediate
// feedback while grading stays server-side.
func (s *SQLStore) QuizForCourse(ctx context.Context, courseID string) (modules.QuizDetail, error) {
	var d modules.QuizDetail
	var qJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, questions_json FROM quizzes WHERE course_id=$1`,
		courseID).Scan(&d.ID, &d.Title, &d.Description, &qJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return modules.QuizDetail{}, ErrQuizNotFound
	}
	if err != nil {
		return modules.QuizDetail{}, err
	}
	if err := json.Unmarshal([]byte(qJSON), &d.Questions); err != nil {
		return modules.QuizDetail{}, fmt.Errorf("quiz %s: %w", d.ID, err)
	}
	return d, nil
}

// SubmitAttempt grades the responses against the stored quiz and records
// the attempt. Incomplete response sets are rejected before anything is
// written.
func (s *SQLStore) SubmitAttempt(ctx context.Context, userID, courseID string, responses []modules.QuizResponse) (modules.AttemptResult, error) {
	quiz, err := s.QuizForCourse(ctx, courseID)
	if err != nil {
		return modules.AttemptResult{}, err
	}

	answered := map[int64]int64{}
	for _, r := range responses {
		answered[r.QuestionID] = r.OptionID
	}
	if len(answered) < len(quiz.Questions) {
		return modules.AttemptResult{}, ErrIncompleteResponses
	}

	result := modules.AttemptResult{TotalQuestions: len(quiz.Questions)}
	for _, q := range quiz.Questions {
		opt, ok := answered[q.ID]
		if !ok {
			return modules.AttemptResult{}, ErrIncompleteResponses
		}
		correct := opt == q.CorrectOptionID
		if correct {
			result.Score++
		}
		result.Breakdown = append(result.Breakdown, modules.ResponseGrade{
			QuestionID: q.ID, OptionID: opt, Correct: correct,
		})
	}

	now := s.now()
	result.CompletedAt = now.UTC().Format(time.RFC3339)
	respJSON, _ := json.Marshal(responses)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts (id, user_id, course_id, quiz_id, score, total_questions, responses_json, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		uuid.NewString(), userID, courseID, quiz.ID, result.Score, result.TotalQuestions, string(respJSON), now.Unix())
	if err != nil {
		return modules.AttemptResult{}, err
	}

	data, _ := json.Marshal(map[string]any{"score": result.Score, "total": result.TotalQuestions})
	_ = s.events.Append(ctx, syncx.Event{
		Type: syncx.EventQuizSubmitted, Key: userID + "|" + courseID, DataJSON: string(data),
	})
	return result, nil
}

// ResetQuiz wipes the learner's attempts for a course so the quiz reappears
// as pending in the flow.
func (s *SQLStore) ResetQuiz(ctx context.Context, userID, courseID string) error {
	if _, err := s.QuizForCourse(ctx, courseID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM quiz_attempts WHERE user_id=$1 AND course_id=$2`, userID, courseID); err != nil {
		return err
	}
	_ = s.events.Append(ctx, syncx.Event{
		Type: syncx.EventQuizReset, Key: userID + "|" + courseID, DataJSON: "{}",
	})
	return nil
}

// SaveProgress upserts the learner's read marker for a handout. A missing
// progress value means "mark as read".
func (s *SQLStore) SaveProgress(ctx context.Context, userID, bookName string, progress float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_progress (user_id, book_name, progress, last_read_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (user_id, book_name) DO UPDATE SET progress=EXCLUDED.progress, last_read_at=EXCLUDED.last_read_at`,
		userID, bookName, progress, s.now().Unix())
	if err != nil {
		return err
	}
	data, _ := json.Marshal(map[string]any{"book": bookName, "progress": progress})
	_ = s.events.Append(ctx, syncx.Event{
		Type: syncx.EventCourseRead, Key: userID + "|" + bookName, DataJSON: string(data),
	})
	return nil
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
