package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

type stubResumeParser struct {
	out json.RawMessage
	err error
}

func (p *stubResumeParser) Parse(context.Context, string) (json.RawMessage, error) {
	return p.out, p.err
}

func TestResumeHandler_Parse(t *testing.T) {
	e := newEcho()
	handler := NewResumeHandler(&stubResumeParser{out: json.RawMessage(`{"full_name":"Ada"}`)})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/resumes/parse", `{"document":"Ada Lovelace"}`), rec)
	c.Set("user_id", "u1")
	c.Set("role", "candidate")

	if err := handler.Parse(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != `{"full_name":"Ada"}` {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestResumeHandler_Parse_Errors(t *testing.T) {
	e := newEcho()
	handler := NewResumeHandler(&stubResumeParser{err: domain.ErrResumeParse})

	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/resumes/parse", `{"document":"x"}`), httptest.NewRecorder())
	expectHTTPError(t, handler.Parse(c), http.StatusUnauthorized)

	c = e.NewContext(jsonRequest(http.MethodPost, "/v1/resumes/parse", `{}`), httptest.NewRecorder())
	c.Set("user_id", "u1")
	c.Set("role", "candidate")
	expectHTTPError(t, handler.Parse(c), http.StatusBadRequest)

	c = e.NewContext(jsonRequest(http.MethodPost, "/v1/resumes/parse", `{"document":"x"}`), httptest.NewRecorder())
	c.Set("user_id", "u1")
	c.Set("role", "candidate")
	if err := handler.Parse(c); !errors.Is(err, domain.ErrResumeParse) {
		t.Fatalf("expected ErrResumeParse, got %v", err)
	}
}
