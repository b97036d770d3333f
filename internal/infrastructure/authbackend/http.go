// Package authbackend implements ports.AuthBackend against the TalentSphere
// API and in process.
package authbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTP talks to the TalentSphere API over JSON.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates a backend for baseURL. A nil client gets a 10s timeout.
func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTP{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

type apiCompany struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiUser struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	AvatarURL string      `json:"avatar_url"`
	Role      string      `json:"role"`
	Company   *apiCompany `json:"company"`
}

type apiAuthResponse struct {
	User apiUser `json:"user"`
}

type apiError struct {
	Error string `json:"error"`
}

func (u apiUser) identity() *domain.Identity {
	id := &domain.Identity{
		ID:        u.ID,
		Role:      domain.Role(u.Role),
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
	if u.Company != nil {
		id.Company = domain.NewCompanyAssociation(u.Company.ID, u.Company.Name)
	}
	return id.Normalize()
}

// Login posts credentials. 401 maps to ErrInvalidCredentials and 429 to ErrTooManyAttempts.
func (b *HTTP) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	var resp apiAuthResponse
	status, err := b.do(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return resp.User.identity(), nil
	case http.StatusUnauthorized, http.StatusBadRequest:
		return nil, domain.ErrInvalidCredentials
	case http.StatusTooManyRequests:
		return nil, domain.ErrTooManyAttempts
	default:
		return nil, fmt.Errorf("login: unexpected status %d", status)
	}
}

// Register posts a new account. 409 maps to ErrUserExists and 400 to ErrInvalidRegistration.
func (b *HTTP) Register(ctx context.Context, data domain.RegistrationPayload) (*domain.Identity, error) {
	body := map[string]string{
		"email":     data.Email,
		"password":  data.Password,
		"full_name": data.FullName,
		"role":      string(data.Role),
	}
	if data.CompanyName != "" {
		body["company_name"] = data.CompanyName
	}

	var resp apiAuthResponse
	status, err := b.do(ctx, http.MethodPost, "/v1/auth/register", body, &resp)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusCreated, http.StatusOK:
		return resp.User.identity(), nil
	case http.StatusConflict:
		return nil, domain.ErrUserExists
	case http.StatusBadRequest:
		return nil, domain.ErrInvalidRegistration
	default:
		return nil, fmt.Errorf("register: unexpected status %d", status)
	}
}

// FetchProfile returns nil, nil on 404.
func (b *HTTP) FetchProfile(ctx context.Context, id string) (*domain.Identity, error) {
	var user apiUser
	status, err := b.do(ctx, http.MethodGet, "/v1/profiles/"+url.PathEscape(id), nil, &user)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return user.identity(), nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("fetch profile: unexpected status %d", status)
	}
}

// do sends body as JSON and decodes a 2xx response into out. Non-2xx bodies
// are read for their error message only.
func (b *HTTP) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
		return resp.StatusCode, nil
	}

	var apiErr apiError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
	if resp.StatusCode >= 500 {
		return resp.StatusCode, fmt.Errorf("%s %s: server error %d: %s", method, path, resp.StatusCode, apiErr.Error)
	}
	return resp.StatusCode, nil
}
