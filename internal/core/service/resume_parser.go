package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/talentsphere/talentsphere/internal/api/metrics"
	"github.com/talentsphere/talentsphere/internal/core/domain"
	"github.com/talentsphere/talentsphere/internal/core/ports"
)

// maxResumeBytes bounds the document sent to the model.
const maxResumeBytes = 20000

const resumeExtractionPrompt = `
You are an expert resume parsing agent. Your task is to analyze the provided resume text and extract structured candidate data.

### INSTRUCTIONS:
1. Extract the fields below strictly.
2. Format the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "full_name": "Candidate name",
    "email": "Contact email or null",
    "phone": "Contact phone or null",
    "location": "City and country, or null",
    "headline": "One-line professional summary",
    "skills": ["Array", "of", "skills"],
    "experience": [{"company": "", "title": "", "start": "", "end": "", "summary": ""}],
    "education": [{"institution": "", "degree": "", "year": ""}]
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RESUME:
%s
`

type resumeParser struct {
	model ports.CompletionModel
	log   zerolog.Logger
}

// NewResumeParser returns a ResumeParser that prompts model with a fixed schema.
func NewResumeParser(model ports.CompletionModel, log zerolog.Logger) ports.ResumeParser {
	return &resumeParser{model: model, log: log}
}

// Parse sends the (possibly truncated) document to the model and returns the
// JSON object it produced.
func (p *resumeParser) Parse(ctx context.Context, document string) (json.RawMessage, error) {
	document = strings.TrimSpace(document)
	if document == "" {
		return nil, fmt.Errorf("%w: empty document", domain.ErrResumeParse)
	}
	document = truncateUTF8(document, maxResumeBytes)

	start := time.Now()
	resp, err := p.model.Complete(ctx, fmt.Sprintf(resumeExtractionPrompt, document))
	metrics.ResumeParseDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ResumeParseTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("parse resume: %w", err)
	}

	out := []byte(stripCodeFence(resp))
	var fields map[string]any
	if err := json.Unmarshal(out, &fields); err != nil || fields == nil {
		metrics.ResumeParseTotal.WithLabelValues("invalid_output").Inc()
		p.log.Warn().Err(err).Int("response_len", len(resp)).Msg("model returned invalid resume JSON")
		return nil, fmt.Errorf("%w: model output is not a JSON object", domain.ErrResumeParse)
	}

	metrics.ResumeParseTotal.WithLabelValues("success").Inc()
	return json.RawMessage(out), nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a character.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// stripCodeFence removes a surrounding ``` or ```json fence, which models add
// despite being told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
