package domain

import "time"

// Role is the closed set of account kinds that drive routing and authorization.
type Role string

const (
	RoleCandidate             Role = "candidate"
	RoleRecruiterUnassociated Role = "recruiter_unassociated"
	RoleRecruiter             Role = "recruiter"
	RoleAdmin                 Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleRecruiterUnassociated, RoleRecruiter, RoleAdmin:
		return true
	}
	return false
}

// CompanyAssociation links a recruiter to an organization. It is either fully
// present or absent on an Identity.
type CompanyAssociation struct {
	ID   string
	Name string
}

// NewCompanyAssociation returns nil unless both id and name are non-empty.
func NewCompanyAssociation(id, name string) *CompanyAssociation {
	if id == "" || name == "" {
		return nil
	}
	return &CompanyAssociation{ID: id, Name: name}
}

// Identity is the authenticated principal held by a session.
type Identity struct {
	ID        string
	Role      Role
	FullName  string
	Email     string
	AvatarURL string
	Company   *CompanyAssociation
}

// EffectiveRole is the role used for routing and RBAC decisions: a recruiter
// without a company has not finished onboarding.
func (i *Identity) EffectiveRole() Role {
	return ResolveRole(i.Role, i.Company != nil)
}

// ResolveRole computes the effective role from a stored role and whether a
// company is attached. Token claims use it where no Identity is at hand.
func ResolveRole(role Role, hasCompany bool) Role {
	if role == RoleRecruiter && !hasCompany {
		return RoleRecruiterUnassociated
	}
	return role
}

// Clone returns a deep copy so callers never share the company record.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.Company != nil {
		company := *i.Company
		c.Company = &company
	}
	return &c
}

// Normalize drops a company from an unassociated recruiter.
func (i *Identity) Normalize() *Identity {
	if i != nil && i.Role == RoleRecruiterUnassociated {
		i.Company = nil
	}
	return i
}

// Company is the organization record stored on a user account.
type Company struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// User models a stored account on the authentication backend.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Company      *Company  `json:"company,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity projects the account onto the principal a session carries.
func (u *User) Identity() *Identity {
	id := &Identity{
		ID:        u.ID,
		Role:      u.Role,
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
	if u.Company != nil {
		id.Company = NewCompanyAssociation(u.Company.ID, u.Company.Name)
	}
	return id.Normalize()
}

// Credentials are the login inputs. Only the caller form validates them.
type Credentials struct {
	Email    string
	Password string
}

// RegistrationPayload carries what a new account needs. Role is the initial
// selection, candidate or recruiter; CompanyName lets a recruiter create an
// organization during sign-up.
type RegistrationPayload struct {
	Email       string
	Password    string
	FullName    string
	Role        Role
	CompanyName string
}
