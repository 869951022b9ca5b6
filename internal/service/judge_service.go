package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"exam_portal_backend/internal/config"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// JudgeService proxies code execution to a Judge0 instance so coding answers
// can be run against input without exposing the API key to clients.
type JudgeService struct {
	cfg    *config.Judge0Config
	client *http.Client
}

func NewJudgeService(cfg *config.Judge0Config) *JudgeService {
	return &JudgeService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

var ErrJudgeUnavailable = errors.New("code execution service unavailable")

// languageIDs maps the portal's language names to Judge0 language ids.
var languageIDs = map[string]int{
	"c":          50,
	"cpp":        54,
	"java":       62,
	"javascript": 63,
	"python":     71,
	"go":         60,
	"rust":       73,
	"sql":        82,
}

func SupportedLanguages() []string {
	out := make([]string, 0, len(languageIDs))
	for lang := range languageIDs {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

var ErrUnsupportedLanguage = errors.New("unsupported language")

type ExecuteReq struct {
	Language string `json:"language" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Stdin    string `json:"stdin"`
}

type ExecuteResult struct {
	Status        string  `json:"status"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	CompileOutput string  `json:"compileOutput,omitempty"`
	Time          string  `json:"time,omitempty"`
	Memory        float64 `json:"memory,omitempty"`
}

type judge0Submission struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin,omitempty"`
}

type judge0Result struct {
	Token  string `json:"token"`
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	CompileOutput string  `json:"compile_output"`
	Time          string  `json:"time"`
	Memory        float64 `json:"memory"`
}

func (s *JudgeService) do(req *http.Request, out interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", s.cfg.APIKey)
	}
	if s.cfg.Host != "" {
		req.Header.Set("X-RapidAPI-Host", s.cfg.Host)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: upstream returned %d", ErrJudgeUnavailable, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Execute submits the code and polls for the verdict with a bounded number
// of attempts. Judge0 status ids 1 and 2 mean the run is still queued or
// processing.
func (s *JudgeService) Execute(ctx context.Context, req ExecuteReq) (*ExecuteResult, error) {
	langID, ok := languageIDs[req.Language]
	if !ok {
		return nil, ErrUnsupportedLanguage
	}

	ctx, span := tracing.Tracer.Start(ctx, "judge0.execute")
	span.SetAttributes(attribute.String("language", req.Language))
	defer span.End()

	body, err := json.Marshal(judge0Submission{
		SourceCode: req.Code,
		LanguageID: langID,
		Stdin:      req.Stdin,
	})
	if err != nil {
		return nil, err
	}

	submitURL := s.cfg.URL + "/submissions?base64_encoded=false&wait=false"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var created judge0Result
	if err := s.do(httpReq, &created); err != nil {
		return nil, err
	}
	if created.Token == "" {
		return nil, fmt.Errorf("%w: no submission token", ErrJudgeUnavailable)
	}

	pollURL := s.cfg.URL + "/submissions/" + created.Token + "?base64_encoded=false"
	for attempt := 0; attempt < s.cfg.PollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.cfg.PollInterval):
		}

		pollReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pollURL, nil)
		if err != nil {
			return nil, err
		}
		var result judge0Result
		if err := s.do(pollReq, &result); err != nil {
			return nil, err
		}
		if result.Status.ID > 2 {
			return &ExecuteResult{
				Status:        result.Status.Description,
				Stdout:        result.Stdout,
				Stderr:        result.Stderr,
				CompileOutput: result.CompileOutput,
				Time:          result.Time,
				Memory:        result.Memory,
			}, nil
		}
	}

	logger.Log.Warn("judge0 verdict still pending after poll budget",
		zap.String("token", created.Token),
		zap.Int("attempts", s.cfg.PollAttempts))
	return nil, fmt.Errorf("%w: verdict not ready", ErrJudgeUnavailable)
}
