package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

type User struct {
	ID                string
	Username          string
	Role              Role
	AssignedCampaigns []CampaignID
	Status            string
	Balance           float64
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasCampaign reports whether id is one of the user's assigned campaigns.
func (u User) HasCampaign(id CampaignID) bool {
	for _, c := range u.AssignedCampaigns {
		if c == id {
			return true
		}
	}
	return false
}

type userJSON struct {
	ID                json.RawMessage `json:"id,omitempty"`
	Username          string          `json:"username"`
	Role              Role            `json:"role,omitempty"`
	IsAdmin           *bool           `json:"is_admin,omitempty"`
	AssignedCampaigns []CampaignID    `json:"assigned_campaigns"`
	Status            string          `json:"status,omitempty"`
	Balance           float64         `json:"balance,omitempty"`
}

// UnmarshalJSON accepts both the role field and the older is_admin flag.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw userJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := scalarString(raw.ID)
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	if id == "" {
		id = raw.Username
	}

	role := Role(strings.ToLower(strings.TrimSpace(string(raw.Role))))
	switch {
	case role == RoleAdmin || role == RoleWorker:
	case role == "" && raw.IsAdmin != nil && *raw.IsAdmin:
		role = RoleAdmin
	case role == "":
		role = RoleWorker
	default:
		return fmt.Errorf("unknown role %q", raw.Role)
	}

	*u = User{
		ID:                id,
		Username:          raw.Username,
		Role:              role,
		AssignedCampaigns: raw.AssignedCampaigns,
		Status:            raw.Status,
		Balance:           raw.Balance,
	}
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	id, _ := json.Marshal(u.ID)
	return json.Marshal(userJSON{
		ID:                id,
		Username:          u.Username,
		Role:              u.Role,
		AssignedCampaigns: u.AssignedCampaigns,
		Status:            u.Status,
		Balance:           u.Balance,
	})
}

// NewUser is the payload of an admin create-user request.
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type WorkerStats struct {
	Username          string       `json:"username"`
	AssignedCampaigns []CampaignID `json:"assigned_campaigns"`
	ProcessedOrders   int          `json:"processed_orders"`
	Balance           float64      `json:"balance"`
}
