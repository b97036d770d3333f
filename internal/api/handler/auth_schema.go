package handler

import "github.com/talentsphere/talentsphere/internal/core/domain"

// registerRequest is the JSON body for POST /v1/auth/register.
type registerRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=8"`
	FullName    string `json:"full_name"    validate:"required"`
	Role        string `json:"role"         validate:"required,oneof=candidate recruiter"`
	CompanyName string `json:"company_name" validate:"omitempty,max=120"`
}

// loginRequest is the JSON body for POST /v1/auth/login.
type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// associateCompanyRequest is the JSON body for POST /v1/me/company.
// company_id is refused until invitations exist; the company is always created.
type associateCompanyRequest struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name" validate:"required,max=120"`
}

type companyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type userResponse struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	FullName  string           `json:"full_name"`
	AvatarURL string           `json:"avatar_url,omitempty"`
	Role      string           `json:"role"`
	Company   *companyResponse `json:"company,omitempty"`
}

// profileResponse is what anyone may read about an account. It carries no
// contact details.
type profileResponse struct {
	ID        string           `json:"id"`
	FullName  string           `json:"full_name"`
	AvatarURL string           `json:"avatar_url,omitempty"`
	Role      string           `json:"role"`
	Company   *companyResponse `json:"company,omitempty"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Role:      string(u.Role),
	}
	if u.Company != nil {
		resp.Company = &companyResponse{ID: u.Company.ID, Name: u.Company.Name}
	}
	return resp
}

func toProfileResponse(u *domain.User) profileResponse {
	full := toUserResponse(u)
	return profileResponse{
		ID:        full.ID,
		FullName:  full.FullName,
		AvatarURL: full.AvatarURL,
		Role:      full.Role,
		Company:   full.Company,
	}
}
