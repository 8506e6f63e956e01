package http

import (
	"encoding/json"
	"errors"
	"time"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/prono-coach/pronocoach-learn/internal/auth/middleware"
	"github.com/prono-coach/pronocoach-learn/internal/modules"
	"github.com/prono-coach/pronocoach-learn/internal/platform"
)

// Handlers only — routes remain in main.go

func LoginHandler(store *platform.SQLStore, authSvc *authmw.AuthService) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			StudentID string `json:"student_id"`
			Password  string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentID == "" || req.Password == "" {
			writeErr(w, nethttp.StatusBadRequest, "student_id and password required")
			return
		}
		u, err := store.Authenticate(r.Context(), req.StudentID, req.Password)
		if errors.Is(err, platform.ErrBadCredentials) {
			writeErr(w, nethttp.StatusUnauthorized, "invalid student id or password")
			return
		}
		if err != nil {
			writeErr(w, nethttp.StatusInternalServerError, "login failed")
			return
		}
		tok, err := authSvc.IssueJWT(u.StudentID, u.Firstname)
		if err != nil {
			writeErr(w, nethttp.StatusInternalServerError, "login failed")
			return
		}
		nethttp.SetCookie(w, &nethttp.Cookie{
			Name:     authmw.SessionCookie,
			Value:    tok,
			Path:     "/",
			HttpOnly: true,
			SameSite: nethttp.SameSiteLaxMode,
			Expires:  time.Now().Add(8 * time.Hour),
		})
		writeData(w, map[string]any{"token": tok, "user": u})
	}
}

func CourseModulesHandler(store *platform.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		mods, err := store.ModulesForUser(r.Context(), authmw.UserID(r.Context()))
		if err != nil {
			writeErr(w, nethttp.StatusInternalServerError, "failed to load modules")
			return
		}
		if mods == nil {
			mods = []modules.Module{}
		}
		writeData(w, map[string]any{"modules": mods})
	}
}

func CourseQuizHandler(store *platform.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		quiz, err := store.QuizForCourse(r.Context(), chi.URLParam(r, "courseID"))
		if errors.Is(err, platform.ErrQuizNotFound) {
			writeErr(w, nethttp.StatusNotFound, "quiz not found for this course")
			return
		}
		if err != nil {
			writeErr(w, nethttp.StatusInternalServerError, "failed to load quiz")
			return
		}
		writeData(w, map[string]any{"quiz": quiz})
	}
}

func SubmitQuizAttemptHandler(store *platform.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			Responses []modules.QuizResponse `json:"responses"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, nethttp.StatusBadRequest, "bad json")
			return
		}
		result, err := store.SubmitAttempt(r.Context(), authmw.UserID(r.Context()), chi.URLParam(r, "courseID"), req.Responses)
		switch {
		case errors.Is(err, platform.ErrQuizNotFound):
			writeErr(w, nethttp.StatusNotFound, "quiz not found for this course")
			return
		case errors.Is(err, platform.ErrIncompleteResponses):
			writeErr(w, nethttp.StatusBadRequest, "all questions must be answered before submitting")
			return
		case err != nil:
			writeErr(w, nethttp.StatusInternalServerError, "failed to record attempt")
			return
		}
		writeData(w, result)
	}
}

func ResetQuizHandler(store *platform.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		err := store.ResetQuiz(r.Context(), authmw.UserID(r.Context()), chi.URLParam(r, "courseID"))
		if errors.Is(err, platform.ErrQuizNotFound) {
			writeErr(w, nethttp.StatusNotFound, "quiz not found for this course")
			return
		}
		if err != nil {
			writeErr(w, nethttp.StatusInternalServerError, "failed to reset quiz")
			return
		}
		writeData(w, map[string]any{})
	}
}

func SaveProgressHandler(store *platform.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			BookName string   `json:"book_name"`
			Progress *float64 `json:"progress"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookName == "" {
			writeErr(w, nethttp.StatusBadRequest, "book_name required")
			return
		}
		// The front-end posts book_name alone to mark a handout read.
		progress := 100.0
		if req.Progress != nil {
			progress = *req.Progress
		}
		if err := store.SaveProgress(r.Context(), authmw.UserID(r.Context()), req.BookName, progress); err != nil {
			writeErr(w, nethttp.StatusInternalServerError, "failed to save progress")
			return
		}
		writeData(w, map[string]any{})
	}
}
