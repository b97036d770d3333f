package session

import (
	"encoding/json"
	"fmt"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

// StorageKey is the fixed namespaced key the snapshot is stored under.
const StorageKey = "talentsphere-auth"

// snapshot is the persisted projection of a session. Loading and error state
// are never part of it, and neither is any credential material.
type snapshot struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	User            *snapshotUser `json:"user"`
}

type snapshotUser struct {
	ID          string      `json:"id"`
	Role        domain.Role `json:"role"`
	FullName    string      `json:"fullName"`
	Email       string      `json:"email"`
	AvatarURL   string      `json:"avatarUrl,omitempty"`
	CompanyID   string      `json:"companyId,omitempty"`
	CompanyName string      `json:"companyName,omitempty"`
}

func encodeSnapshot(authenticated bool, identity *domain.Identity) ([]byte, error) {
	snap := snapshot{IsAuthenticated: authenticated}
	if identity != nil {
		snap.User = &snapshotUser{
			ID:        identity.ID,
			Role:      identity.Role,
			FullName:  identity.FullName,
			Email:     identity.Email,
			AvatarURL: identity.AvatarURL,
		}
		if identity.Company != nil {
			snap.User.CompanyID = identity.Company.ID
			snap.User.CompanyName = identity.Company.Name
		}
	}
	return json.Marshal(snap)
}

// decodeSnapshot parses a stored projection. A snapshot that claims to be
// authenticated without a usable user, or that carries an unknown role, is
// read back as logged out. A half-present company is dropped.
func decodeSnapshot(data []byte) (bool, *domain.Identity, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return false, nil, fmt.Errorf("decode session snapshot: %w", err)
	}
	if !snap.IsAuthenticated || snap.User == nil || snap.User.ID == "" || !snap.User.Role.Valid() {
		return false, nil, nil
	}

	u := snap.User
	identity := &domain.Identity{
		ID:        u.ID,
		Role:      u.Role,
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Company:   domain.NewCompanyAssociation(u.CompanyID, u.CompanyName),
	}
	return true, identity.Normalize(), nil
}
