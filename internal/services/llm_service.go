package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/justsurfingit/jobtracker/internal/config"
	"github.com/justsurfingit/jobtracker/internal/dtos"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// maxPromptInput caps pasted content sent to the model.
const maxPromptInput = 20000

// Mail analysis verdicts besides the job statuses.
const (
	VerdictNoChange = "no_change"
	VerdictUnknown  = "unknown"
)

type LLMService struct {
	Client llms.Model
}

// NewLLMService connects to Gemini. It fails when no API key is configured;
// callers treat that as "feature disabled".
func NewLLMService(ctx context.Context, cfg config.LLMConfig) (*LLMService, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.GeminiAPIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company": "Name of the company (e.g., Google, StartupInc)",
    "title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags."
}

### CONSTRAINT:
If a piece of information is missing, use an empty string. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails turns a pasted job posting into a draft job.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (*dtos.JobDraft, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobExtractionPrompt, truncate(rawHTML, maxPromptInput)))
	if err != nil {
		return nil, fmt.Errorf("job extraction: %w", err)
	}

	var draft dtos.JobDraft
	if err := json.Unmarshal([]byte(stripFences(resp)), &draft); err != nil {
		return nil, fmt.Errorf("job extraction returned invalid JSON: %w", err)
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Company = strings.TrimSpace(draft.Company)
	draft.Location = strings.TrimSpace(draft.Location)
	draft.Description = strings.TrimSpace(draft.Description)
	return &draft, nil
}

const emailStatusPrompt = `
You track job applications. Read this email from %s and decide what it means for the application.

Reply with JSON only: {"status": "...", "summary": "one sentence"}
status must be one of: interview, offer, rejected, pending, no_change, unknown.
Use no_change for confirmations that the application was received.

Subject: %s

Body:
%s
`

type EmailAnalysis struct {
	Status  string `json:"status"`
	Summary string `json:"summary"`
}

// AnalyzeEmailStatus classifies a recruiting email. Any status the model
// invents outside the known set is reported as VerdictUnknown.
func (s *LLMService) AnalyzeEmailStatus(ctx context.Context, company, subject, body string) (*EmailAnalysis, error) {
	prompt := fmt.Sprintf(emailStatusPrompt, company, subject, truncate(body, maxPromptInput))
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return nil, fmt.Errorf("email analysis: %w", err)
	}

	var out EmailAnalysis
	if err := json.Unmarshal([]byte(stripFences(resp)), &out); err != nil {
		return nil, fmt.Errorf("email analysis returned invalid JSON: %w", err)
	}
	out.Status = strings.ToLower(strings.TrimSpace(out.Status))
	switch out.Status {
	case models.StatusInterview, models.StatusOffer, models.StatusRejected, models.StatusPending, VerdictNoChange:
	default:
		out.Status = VerdictUnknown
	}
	return &out, nil
}

const jobRolePrompt = `
An email may concern one of these job applications:
%s
Subject: %s

Body:
%s

Reply with only the number of the matching application, or -1 if none clearly matches.
`

// IdentifyJobRole picks which of titles the email is about, or -1 when the
// model cannot tell. An error means the model could not be reached.
func (s *LLMService) IdentifyJobRole(ctx context.Context, titles []string, subject, body string) (int, error) {
	var list strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&list, "%d. %s\n", i, t)
	}
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobRolePrompt, list.String(), subject, truncate(body, maxPromptInput)))
	if err != nil {
		return -1, fmt.Errorf("job role identification: %w", err)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(stripFences(resp)))
	if err != nil || idx < 0 || idx >= len(titles) {
		return -1, nil
	}
	return idx, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }

// stripFences removes a markdown code fence the model sometimes adds anyway.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
