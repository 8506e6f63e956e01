package platform

import (
	"context"
	"encoding/json"

	"golang.org/x/crypto/bcrypt"

	"github.com/prono-coach/pronocoach-learn/internal/modules"
)

// Seed loads a small demo curriculum and a learner account
// (s2024001 / password123). Idempotent; existing rows win.
func (s *SQLStore) Seed(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (student_id, firstname, lastname, email, password)
		 VALUES ($1,$2,$3,$4,$5) ON CONFLICT (student_id) DO NOTHING`,
		"s2024001", "Minji", "Kim", "minji@example.com", string(hash)); err != nil {
		return err
	}

	type seedQuiz struct {
		id, title, desc string
		questions       []modules.Question
	}
	type seedCourse struct {
		id, title, book, bookTitle, label, pages string
		quiz                                     *seedQuiz
	}
	type seedModule struct {
		id, title, dialect, summary string
		courses                     []seedCourse
	}

	curriculum := []seedModule{
		{
			id: "mod-jeju-basics", title: "Jeju Dialect Basics", dialect: "Jeju",
			summary: "Greetings and everyday phrases in Jeju speech.",
			courses: []seedCourse{
				{
					id: "crs-jeju-greetings", title: "Greetings Handout",
					book: "jeju_greetings.pdf", bookTitle: "Jeju Greetings",
					label: "Handout 1", pages: "pp. 1-8",
					quiz: &seedQuiz{
						id: "qz-jeju-greetings", title: "Greetings Check",
						desc: "Five quick questions on the greetings handout.",
						questions: []modules.Question{
							{
								ID: 1, Prompt: "How do you greet an elder in Jeju dialect?",
								CorrectOptionID: 11,
								Options: []modules.Option{
									{ID: 10, Text: "안녕하세요"},
									{ID: 11, Text: "혼저 옵서예"},
									{ID: 12, Text: "반갑수다만"},
								},
							},
							{
								ID: 2, Prompt: "Which phrase means 'thank you'?",
								CorrectOptionID: 22,
								Options: []modules.Option{
									{ID: 20, Text: "미안하우다"},
									{ID: 21, Text: "잘도 와수다"},
									{ID: 22, Text: "고맙수다"},
								},
							},
						},
					},
				},
				{
					id: "crs-jeju-numbers", title: "Numbers and Counting",
					book: "jeju_numbers.pdf", bookTitle: "Jeju Numbers",
					label: "Handout 2", pages: "pp. 9-15",
				},
			},
		},
		{
			id: "mod-busan-basics", title: "Busan Dialect Basics", dialect: "Busan",
			summary: "Core expressions heard around Busan.",
			courses: []seedCourse{
				{
					id: "crs-busan-intro", title: "Busan Intonation Primer",
					book: "busan_intro.pdf", bookTitle: "Busan Primer",
					label: "Handout 1", pages: "pp. 1-10",
					quiz: &seedQuiz{
						id: "qz-busan-intro", title: "Intonation Check",
						desc: "Pitch patterns from the primer.",
						questions: []modules.Question{
							{
								ID: 5, Prompt: "Which particle ends a typical Busan question?",
								CorrectOptionID: 51,
								Options: []modules.Option{
									{ID: 50, Text: "~요"},
									{ID: 51, Text: "~나"},
									{ID: 52, Text: "~죠"},
								},
							},
						},
					},
				},
			},
		},
	}

	for mi, sm := range curriculum {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO modules (id, title, dialect, summary, position)
			 VALUES ($1,$2,$3,$4,$5) ON CONFLICT (id) DO NOTHING`,
			sm.id, sm.title, sm.dialect, sm.summary, mi); err != nil {
			return err
		}
		for ci, sc := range sm.courses {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO module_courses (id, module_id, position, title, book_file, book_title, handout_label, page_range)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (id) DO NOTHING`,
				sc.id, sm.id, ci, sc.title, sc.book, sc.bookTitle, sc.label, sc.pages); err != nil {
				return err
			}
			if sc.quiz == nil {
				continue
			}
			qj, err := json.Marshal(sc.quiz.questions)
			if err != nil {
				return err
			}
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO quizzes (id, course_id, title, description, questions_json)
				 VALUES ($1,$2,$3,$4,$5) ON CONFLICT (id) DO NOTHING`,
				sc.quiz.id, sc.id, sc.quiz.title, sc.quiz.desc, string(qj)); err != nil {
				return err
			}
		}
	}
	return nil
}
