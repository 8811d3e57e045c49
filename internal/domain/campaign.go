package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CampaignID is kept as text; the backend sends numbers for some stores and
// strings for others.
type CampaignID string

func (id *CampaignID) UnmarshalJSON(data []byte) error {
	s, err := scalarString(data)
	if err != nil {
		return fmt.Errorf("campaign id: %w", err)
	}
	*id = CampaignID(s)
	return nil
}

func (id CampaignID) String() string {
	return string(id)
}

type Campaign struct {
	ID   CampaignID `json:"id"`
	Name string     `json:"name"`
}

// Label is what selectors show for a campaign.
func (c Campaign) Label() string {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Sprintf("Campaign %s", c.ID)
	}
	return fmt.Sprintf("Campaign %s (%s)", c.ID, c.Name)
}

// scalarString turns a JSON string or number into its text form. null and an
// empty input yield "".
func scalarString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", string(data))
	}
	return n.String(), nil
}
