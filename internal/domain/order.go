package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Order is one reviewable line of a marketplace order. An order with several
// items arrives as several Orders sharing the same ID.
type Order struct {
	ID          string `json:"order_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Quantity    int    `json:"quantity"`
	Barcode     string `json:"barcode"`
	ImagePath   string `json:"image_path,omitempty"`
}

type Outcome string

const (
	OutcomeApprove Outcome = "yes"
	OutcomeReject  Outcome = "no"
	OutcomeSkip    Outcome = "skip"
)

// ParseOutcome accepts both the wire values and the names shown to users.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "approve", "approved":
		return OutcomeApprove, nil
	case "no", "n", "reject", "rejected":
		return OutcomeReject, nil
	case "skip", "s", "skipped":
		return OutcomeSkip, nil
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeApprove, OutcomeReject, OutcomeSkip:
		return true
	}
	return false
}

func (o Outcome) Label() string {
	switch o {
	case OutcomeApprove:
		return "approve"
	case OutcomeReject:
		return "reject"
	case OutcomeSkip:
		return "skip"
	}
	return string(o)
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOutcome(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

type Decision struct {
	OrderID string  `json:"order_id"`
	Outcome Outcome `json:"decision"`
}
