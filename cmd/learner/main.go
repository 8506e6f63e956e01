package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/prono-coach/pronocoach-learn/internal/config"
	"github.com/prono-coach/pronocoach-learn/internal/gateway"
	"github.com/prono-coach/pronocoach-learn/internal/modules"
)

func main() {
	_ = godotenv.Load()
	cfg := config.ClientFromEnv()

	gw, err := gateway.New(gateway.Config{
		BaseURL:      cfg.APIBaseURL,
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}

	in := bufio.NewScanner(os.Stdin)
	studentID, password := cfg.StudentID, cfg.Password
	if cfg.TokenURL == "" {
		if studentID == "" {
			studentID = prompt(in, "Student ID: ")
		}
		if password == "" {
			password = prompt(in, "Password: ")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		name, err := gw.Login(ctx, studentID, password)
		cancel()
		if err != nil {
			log.Fatalf("login: %v", err)
		}
		fmt.Printf("Hi, %s\n", name)
	}

	view := modules.NewView(gw)
	defer view.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = view.Refresh(ctx, modules.RefreshOptions{})
	cancel()
	if err != nil {
		log.Printf("load modules: %v", err)
	}
	view.StartAutoRefresh(cfg.RefreshInterval)

	render(view.Snapshot())
	fmt.Println(`commands: mod <id> | step <n> | next | prev | ans <option> | cont | submit | reset | read | focus on|off | sync | show | quit`)

	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			render(view.Snapshot())
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		switch cmd {
		case "quit", "q":
			cancel()
			return
		case "sync":
			if err := view.Refresh(ctx, modules.RefreshOptions{PreserveSelection: true}); err != nil {
				fmt.Println("!", err)
			}
		case "mod":
			if len(args) != 1 {
				fmt.Println("usage: mod <module-id>")
				break
			}
			if err := view.SelectModule(args[0]); err != nil {
				fmt.Println("!", err)
			}
		case "step":
			n, err := strconv.Atoi(strings.Join(args, ""))
			if err != nil {
				fmt.Println("usage: step <number>")
				break
			}
			if err := view.SelectStep(n - 1); err != nil {
				fmt.Println("!", err)
			}
		case "next":
			view.Advance(1)
		case "prev":
			view.Advance(-1)
		case "ans":
			n, err := strconv.ParseInt(strings.Join(args, ""), 10, 64)
			if err != nil {
				fmt.Println("usage: ans <option-id>")
				break
			}
			answer(ctx, view, n)
		case "cont":
			if !view.NextQuestion() {
				fmt.Println("! nothing to continue")
			}
		case "submit":
			if result, err := view.Submit(ctx); err != nil {
				fmt.Println("!", err)
			} else {
				fmt.Printf("Score: %d/%d\n", result.Score, result.TotalQuestions)
			}
		case "reset":
			if err := view.ResetQuiz(ctx); err != nil {
				fmt.Println("!", err)
			}
		case "read":
			if err := view.MarkCourseRead(ctx); err != nil {
				fmt.Println("!", err)
			}
		case "focus":
			view.SetFocus(len(args) == 1 && args[0] == "on")
		case "show":
			// fallthrough to render
		default:
			fmt.Println("unknown command:", cmd)
		}
		cancel()

		ensureQuiz(view)
		render(view.Snapshot())
	}
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(in.Text())
}

// answer records the pick for the question currently on screen.
func answer(ctx context.Context, view *modules.View, optionID int64) {
	s, err := view.EnsureQuizSession(ctx)
	if err != nil {
		fmt.Println("!", err)
		return
	}
	q := s.CurrentQuestion()
	if q == nil {
		fmt.Println("! quiz has no questions")
		return
	}
	correct, recorded := view.Answer(q.ID, optionID)
	if !recorded {
		fmt.Println("! answer locked; use cont or submit")
		return
	}
	if correct {
		fmt.Println("Correct!")
	} else {
		fmt.Println("Not quite. Try to remember the explanation.")
	}
}

// ensureQuiz lazily opens a session when the learner lands on a pending
// quiz step, so the first question shows without an extra command.
func ensureQuiz(view *modules.View) {
	snap := view.Snapshot()
	if snap.Step == nil || snap.Step.Type != modules.StepQuiz || snap.Step.Completed || snap.Question != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := view.EnsureQuizSession(ctx); err != nil {
		fmt.Println("!", err)
	}
}

func render(snap modules.Snapshot) {
	for _, n := range snap.Notices {
		fmt.Println("**", n)
	}
	if snap.Err != "" {
		fmt.Println("Modules unavailable:", snap.Err)
		return
	}
	if snap.Empty {
		fmt.Println("No modules registered yet.")
		return
	}

	fmt.Println(strings.Repeat("-", 60))
	for _, m := range snap.Modules {
		marker := " "
		if m.Active {
			marker = "*"
		}
		fmt.Printf("%s %-18s %-24s %d/%d steps (%.1f%%)\n",
			marker, m.ID, m.Title, m.CompletedSteps, m.TotalSteps, m.Percentage)
	}

	fmt.Printf("\n%s [%s] — %s\n", snap.ModuleTitle, snap.Dialect, snap.Summary)
	fmt.Printf("Progress: %d of %d steps (%.1f%%)\n",
		snap.Progress.CompletedSteps, snap.Progress.TotalSteps, snap.Progress.Percentage)

	var chips []string
	for _, c := range snap.Steps {
		label := fmt.Sprintf("%d.%s", c.Number, c.Type)
		switch {
		case c.Active:
			label = "[" + label + "]"
		case !c.Accessible:
			label = "(" + label + ")"
		case c.Completed:
			label = label + "✓"
		}
		chips = append(chips, label)
	}
	fmt.Println("Steps:", strings.Join(chips, " "))

	st := snap.Step
	if st == nil {
		return
	}
	fmt.Printf("\nStep %d / %d — %s", st.Number, st.Total, st.Title)
	if st.Completed {
		fmt.Print(" (completed)")
	}
	fmt.Println()

	if st.Type == modules.StepCourse && st.Book != nil {
		meta := strings.TrimSpace(st.Book.HandoutLabel + " " + st.Book.PageRange)
		if meta != "" {
			fmt.Println(meta)
		}
		if st.Book.PDFURL != "" {
			fmt.Println("Handout:", st.Book.PDFURL)
		}
		if st.Book.LastReadAt != "" {
			fmt.Println("Last marked:", st.Book.LastReadAt)
		} else {
			fmt.Println("Not started yet")
		}
		if snap.Focus {
			fmt.Println("(focus mode on — background sync paused)")
		}
	}

	if q := snap.Question; q != nil {
		fmt.Printf("\nQuestion %d of %d: %s\n", q.Number, q.Total, q.Prompt)
		for _, opt := range q.Options {
			mark := " "
			switch opt.State {
			case modules.OptionSelected:
				mark = ">"
			case modules.OptionCorrect:
				mark = "O"
			case modules.OptionIncorrect:
				mark = "X"
			}
			fmt.Printf("  %s [%d] %s\n", mark, opt.ID, opt.Text)
		}
	} else if st.Type == modules.StepQuiz && st.Completed && st.Quiz != nil {
		fmt.Printf("Latest score: %d/%d (completed %s) — 'reset' to retake\n",
			st.Quiz.Score, st.Quiz.TotalQuestions, st.Quiz.CompletedAt)
	}
}
