package session

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindAuth          Kind = "auth"
	KindLoad          Kind = "load"
	KindSave          Kind = "save"
	KindValidation    Kind = "validation"
	KindScanMismatch  Kind = "scan_mismatch"
	KindScanCancelled Kind = "scan_cancelled"
)

// Sentinels for errors.Is, one per Kind.
var (
	ErrAuth          = errors.New("auth error")
	ErrLoad          = errors.New("load error")
	ErrSave          = errors.New("save error")
	ErrValidation    = errors.New("validation error")
	ErrScanMismatch  = errors.New("scan mismatch")
	ErrScanCancelled = errors.New("scan cancelled")
)

var kindSentinels = map[Kind]error{
	KindAuth:          ErrAuth,
	KindLoad:          ErrLoad,
	KindSave:          ErrSave,
	KindValidation:    ErrValidation,
	KindScanMismatch:  ErrScanMismatch,
	KindScanCancelled: ErrScanCancelled,
}

// Validation failures that callers may want to tell apart.
var (
	ErrEmptyLedger         = errors.New("no decisions to save")
	ErrSaveInFlight        = errors.New("a save is already in progress")
	ErrMissingFields       = errors.New("username and password are required")
	ErrMissingSelection    = errors.New("worker and campaign must be selected")
	ErrNoCampaigns         = errors.New("no campaigns assigned")
	ErrCampaignNotAssigned = errors.New("campaign is not assigned to the user")
	ErrNotLoggedIn         = errors.New("not logged in")
)

// Error is what every controller operation returns on failure.
type Error struct {
	Kind Kind
	Op   string
	// Msg is the user-facing text.
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ScanMismatchError carries both barcodes of a failed scan comparison.
type ScanMismatchError struct {
	Scanned  string
	Expected string
}

func (e *ScanMismatchError) Error() string {
	return fmt.Sprintf("scanned %q, expected %q", e.Scanned, e.Expected)
}

// KindOf returns the kind of err, or "" when err did not come from the
// controller.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
