package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/talentsphere/talentsphere/internal/api/handler"
	"github.com/talentsphere/talentsphere/internal/core/ports"
	"github.com/talentsphere/talentsphere/internal/core/service"
	"github.com/talentsphere/talentsphere/internal/infrastructure/db/memory"
)

type lockedThrottle struct{}

func (lockedThrottle) Exceeded(context.Context, string) (bool, error) { return true, nil }
func (lockedThrottle) RecordFailure(context.Context, string) error    { return nil }
func (lockedThrottle) Reset(context.Context, string) error            { return nil }

type fixedParser struct{}

func (fixedParser) Parse(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"full_name":"Ada"}`), nil
}

func newTestRouter(t *testing.T, throttle ports.LoginThrottle) *echo.Echo {
	t.Helper()
	svc := service.NewAuthService(memory.NewUserRepository(), throttle, nil, "secret", time.Hour, zerolog.Nop())
	return NewRouter(Deps{
		AuthService:  svc,
		ResumeParser: fixedParser{},
		Health:       map[string]handler.Pinger{"mongodb": handler.PingFunc(func(context.Context) error { return nil })},
		JWTSecret:    "secret",
		Log:          zerolog.Nop(),
		Registry:     prometheus.NewRegistry(),
	})
}

func do(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID      string `json:"id"`
		Role    string `json:"role"`
		Company *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"company"`
	} `json:"user"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

func TestRouter_RecruiterOnboardingFlow(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := do(e, http.MethodPost, "/v1/auth/register",
		`{"email":"rita@example.com","password":"pass1234","full_name":"Rita","role":"recruiter"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/v1/auth/login", `{"email":"rita@example.com","password":"pass1234"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	var login authBody
	decode(t, rec, &login)
	if login.User.Role != "recruiter_unassociated" || login.Token == "" {
		t.Fatalf("unexpected login body: %+v", login)
	}

	rec = do(e, http.MethodGet, "/v1/me", "", login.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/v1/me/company", `{"company_name":"Acme"}`, login.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("associate: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var assoc authBody
	decode(t, rec, &assoc)
	if assoc.User.Role != "recruiter" || assoc.User.Company == nil || assoc.User.Company.Name != "Acme" {
		t.Fatalf("unexpected association body: %+v", assoc)
	}

	// The new token carries company_id, so onboarding is closed.
	rec = do(e, http.MethodPost, "/v1/me/company", `{"company_name":"Other"}`, assoc.Token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("second associate: expected 403, got %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/v1/profiles/"+login.User.ID, "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Acme"`) {
		t.Fatalf("profile: unexpected %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AnonymousProfileHidesEmail(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := do(e, http.MethodPost, "/v1/auth/register",
		`{"email":"victim@corp.com","password":"pass1234","full_name":"V","role":"candidate"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}
	var reg authBody
	decode(t, rec, &reg)

	rec = do(e, http.MethodGet, "/v1/profiles/"+reg.User.ID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if _, ok := body["email"]; ok {
		t.Fatalf("anonymous profile exposed the email: %s", rec.Body.String())
	}
	if body["full_name"] != "V" || body["role"] != "candidate" {
		t.Fatalf("unexpected profile: %s", rec.Body.String())
	}

	// The account owner still sees it through /v1/me.
	rec = do(e, http.MethodPost, "/v1/auth/login", `{"email":"victim@corp.com","password":"pass1234"}`, "")
	var login authBody
	decode(t, rec, &login)
	rec = do(e, http.MethodGet, "/v1/me", "", login.Token)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "victim@corp.com") {
		t.Fatalf("me: unexpected %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_CannotJoinAnotherRecruitersCompany(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := do(e, http.MethodPost, "/v1/auth/register",
		`{"email":"owner@example.com","password":"pass1234","full_name":"Owner","role":"recruiter","company_name":"Acme"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register owner: expected 201, got %d", rec.Code)
	}
	var owner authBody
	decode(t, rec, &owner)
	if owner.User.Company == nil {
		t.Fatalf("expected owner company: %s", rec.Body.String())
	}

	do(e, http.MethodPost, "/v1/auth/register",
		`{"email":"mallory@example.com","password":"pass1234","full_name":"Mallory","role":"recruiter"}`, "")
	rec = do(e, http.MethodPost, "/v1/auth/login", `{"email":"mallory@example.com","password":"pass1234"}`, "")
	var mallory authBody
	decode(t, rec, &mallory)

	body := `{"company_id":"` + owner.User.Company.ID + `","company_name":"Renamed"}`
	rec = do(e, http.MethodPost, "/v1/me/company", body, mallory.Token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/v1/profiles/"+mallory.User.ID, "", "")
	if strings.Contains(rec.Body.String(), owner.User.Company.ID) || !strings.Contains(rec.Body.String(), `"role":"recruiter_unassociated"`) {
		t.Fatalf("account must stay unassociated: %s", rec.Body.String())
	}
}

func TestRouter_ErrorMapping(t *testing.T) {
	e := newTestRouter(t, nil)
	register := `{"email":"bob@example.com","password":"pass1234","full_name":"Bob","role":"candidate"}`

	if rec := do(e, http.MethodPost, "/v1/auth/register", register, ""); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"duplicate", http.MethodPost, "/v1/auth/register", register, http.StatusConflict},
		{"invalid body", http.MethodPost, "/v1/auth/register", `{"email":"x"}`, http.StatusBadRequest},
		{"wrong password", http.MethodPost, "/v1/auth/login", `{"email":"bob@example.com","password":"nope1234"}`, http.StatusUnauthorized},
		{"unknown user", http.MethodPost, "/v1/auth/login", `{"email":"ghost@example.com","password":"nope1234"}`, http.StatusUnauthorized},
		{"missing profile", http.MethodGet, "/v1/profiles/missing", "", http.StatusNotFound},
		{"me without token", http.MethodGet, "/v1/me", "", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/v1/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.path, tt.body, "")
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d %s", tt.want, rec.Code, rec.Body.String())
			}
			var body errorResponse
			decode(t, rec, &body)
			if body.Error == "" {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
		})
	}
}

func TestRouter_CandidateCannotAssociate(t *testing.T) {
	e := newTestRouter(t, nil)
	do(e, http.MethodPost, "/v1/auth/register", `{"email":"c@example.com","password":"pass1234","full_name":"C","role":"candidate"}`, "")

	var login authBody
	decode(t, do(e, http.MethodPost, "/v1/auth/login", `{"email":"c@example.com","password":"pass1234"}`, ""), &login)

	if rec := do(e, http.MethodPost, "/v1/me/company", `{"company_name":"Acme"}`, login.Token); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_ThrottledLogin(t *testing.T) {
	e := newTestRouter(t, lockedThrottle{})

	rec := do(e, http.MethodPost, "/v1/auth/login", `{"email":"bob@example.com","password":"pass1234"}`, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRouter_ResumeParseRequiresToken(t *testing.T) {
	e := newTestRouter(t, nil)

	if rec := do(e, http.MethodPost, "/v1/resumes/parse", `{"document":"x"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	do(e, http.MethodPost, "/v1/auth/register", `{"email":"c@example.com","password":"pass1234","full_name":"C","role":"candidate"}`, "")
	var login authBody
	decode(t, do(e, http.MethodPost, "/v1/auth/login", `{"email":"c@example.com","password":"pass1234"}`, ""), &login)

	rec := do(e, http.MethodPost, "/v1/resumes/parse", `{"document":"Ada"}`, login.Token)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"full_name":"Ada"}` {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	e := newTestRouter(t, nil)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec := do(e, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestResolveError_UnexpectedIsGeneric(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("mongo exploded"), c)

	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}
