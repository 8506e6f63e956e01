// Package gateway is the thin JSON-over-HTTP client for the platform API.
// It normalizes the {success, message, data} envelope into decoded payloads
// or a typed RequestError. No retries; callers decide.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/prono-coach/pronocoach-learn/internal/modules"
)

type Config struct {
	BaseURL string
	Timeout time.Duration

	// Machine-to-machine mode: when TokenURL is set, requests go through an
	// OAuth2 client-credentials transport instead of the cookie session.
	TokenURL     string
	ClientID     string
	ClientSecret string
}

type Client struct {
	base string
	http *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway: base URL required")
	}
	var h *http.Client
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		h = cc.Client(context.Background())
	} else {
		h = &http.Client{}
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	h.Jar = jar
	h.Timeout = cfg.Timeout
	if h.Timeout == 0 {
		h.Timeout = 15 * time.Second
	}
	return &Client{base: strings.TrimRight(cfg.BaseURL, "/"), http: h}, nil
}

func (c *Client) request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Message: err.Error()}
	}
	defer res.Body.Close()

	// A malformed body decodes as an empty envelope; the status code still
	// decides success then.
	var env envelope
	_ = json.NewDecoder(res.Body).Decode(&env)

	if res.StatusCode/100 != 2 || (env.Success != nil && !*env.Success) {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("Request failed (%d)", res.StatusCode)
		}
		return nil, &RequestError{Message: msg, Status: res.StatusCode}
	}
	return env.Data, nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Login authenticates the learner; the session cookie lands in the jar.
func (c *Client) Login(ctx context.Context, studentID, password string) (string, error) {
	data, err := c.request(ctx, http.MethodPost, "/api/login", map[string]string{
		"student_id": studentID,
		"password":   password,
	})
	if err != nil {
		return "", err
	}
	var out struct {
		User struct {
			Firstname string `json:"firstname"`
		} `json:"user"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", err
	}
	return out.User.Firstname, nil
}

func (c *Client) CourseModules(ctx context.Context) ([]modules.Module, error) {
	data, err := c.request(ctx, http.MethodGet, "/api/course_modules", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Modules []modules.Module `json:"modules"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out.Modules, nil
}

func (c *Client) CourseQuiz(ctx context.Context, courseID string) (modules.QuizDetail, error) {
	data, err := c.request(ctx, http.MethodGet, "/api/module_courses/"+url.PathEscape(courseID)+"/quiz", nil)
	if err != nil {
		return modules.QuizDetail{}, err
	}
	var out struct {
		Quiz modules.QuizDetail `json:"quiz"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return modules.QuizDetail{}, err
	}
	return out.Quiz, nil
}

func (c *Client) SubmitQuizAttempt(ctx context.Context, courseID string, responses []modules.QuizResponse) (modules.AttemptResult, error) {
	data, err := c.request(ctx, http.MethodPost, "/api/module_courses/"+url.PathEscape(courseID)+"/quiz/attempts", map[string]any{
		"responses": responses,
	})
	if err != nil {
		return modules.AttemptResult{}, err
	}
	var out modules.AttemptResult
	if err := json.Unmarshal(data, &out); err != nil {
		return modules.AttemptResult{}, err
	}
	return out, nil
}

func (c *Client) ResetQuiz(ctx context.Context, courseID string) error {
	_, err := c.request(ctx, http.MethodPost, "/api/module_courses/"+url.PathEscape(courseID)+"/quiz/reset", map[string]any{})
	return err
}

func (c *Client) SaveProgress(ctx context.Context, bookName string) error {
	_, err := c.request(ctx, http.MethodPost, "/api/save_progress", map[string]string{
		"book_name": bookName,
	})
	return err
}

var _ modules.Gateway = (*Client)(nil)
