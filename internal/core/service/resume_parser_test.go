package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

type stubModel struct {
	resp   string
	err    error
	prompt string
}

func (m *stubModel) Complete(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.resp, m.err
}

func TestResumeParser_Parse_PlainJSON(t *testing.T) {
	model := &stubModel{resp: `{"full_name":"Ada Lovelace","skills":["math"]}`}
	p := NewResumeParser(model, zerolog.Nop())

	out, err := p.Parse(context.Background(), "Ada Lovelace\nAnalyst")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `{"full_name":"Ada Lovelace","skills":["math"]}` {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.Contains(model.prompt, "Ada Lovelace\nAnalyst") {
		t.Fatal("expected document to be embedded in the prompt")
	}
}

func TestResumeParser_Parse_StripsFence(t *testing.T) {
	model := &stubModel{resp: "```json\n{\"full_name\":\"Ada\"}\n```"}
	p := NewResumeParser(model, zerolog.Nop())

	out, err := p.Parse(context.Background(), "resume")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `{"full_name":"Ada"}` {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestResumeParser_Parse_TruncatesLongDocuments(t *testing.T) {
	model := &stubModel{resp: `{}`}
	p := NewResumeParser(model, zerolog.Nop())

	doc := strings.Repeat("a", maxResumeBytes) + "TAIL"
	if _, err := p.Parse(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(model.prompt, "TAIL") {
		t.Fatal("expected document to be truncated")
	}
}

func TestResumeParser_Parse_TruncatesOnCharacterBoundary(t *testing.T) {
	model := &stubModel{resp: `{}`}
	p := NewResumeParser(model, zerolog.Nop())

	// The two-byte "é" straddles the limit.
	doc := strings.Repeat("a", maxResumeBytes-1) + "é" + "TAIL"
	if _, err := p.Parse(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(model.prompt) {
		t.Fatal("expected prompt to be valid UTF-8")
	}
	if strings.Contains(model.prompt, "é") {
		t.Fatal("expected the split character to be dropped")
	}
}

func TestResumeParser_Parse_RejectsNonObjects(t *testing.T) {
	for _, resp := range []string{"null", "[]", `"text"`, "42"} {
		p := NewResumeParser(&stubModel{resp: resp}, zerolog.Nop())
		if _, err := p.Parse(context.Background(), "resume"); !errors.Is(err, domain.ErrResumeParse) {
			t.Fatalf("response %s: expected ErrResumeParse, got %v", resp, err)
		}
	}
}

func TestResumeParser_Parse_Errors(t *testing.T) {
	p := NewResumeParser(&stubModel{resp: "sorry, I cannot"}, zerolog.Nop())
	if _, err := p.Parse(context.Background(), "resume"); !errors.Is(err, domain.ErrResumeParse) {
		t.Fatalf("expected ErrResumeParse, got %v", err)
	}

	if _, err := p.Parse(context.Background(), "   "); !errors.Is(err, domain.ErrResumeParse) {
		t.Fatalf("expected ErrResumeParse for empty document, got %v", err)
	}

	boom := errors.New("quota exceeded")
	p = NewResumeParser(&stubModel{err: boom}, zerolog.Nop())
	if _, err := p.Parse(context.Background(), "resume"); !errors.Is(err, boom) {
		t.Fatalf("expected model error, got %v", err)
	}
}
