// Package host describes the capabilities the embedding mini-app runtime
// offers the client: readiness, identity, a primary action button, a barcode
// scan popup, native alerts/popups and closing the app.
package host

import "context"

// ScanResult is the outcome of a scan popup: either a scanned value or a
// cancellation.
type ScanResult struct {
	Value     string
	Cancelled bool
}

func Scanned(value string) ScanResult {
	return ScanResult{Value: value}
}

func Cancelled() ScanResult {
	return ScanResult{Cancelled: true}
}

type MainButtonParams struct {
	Text      string
	Color     string
	TextColor string
}

type PopupButton struct {
	Type string // ok, close, cancel, default, destructive
	Text string
}

type Popup struct {
	Title   string
	Message string
	Buttons []PopupButton
}

// Host is implemented by every runtime the client can be embedded in.
// Blocking calls (ScanQR, ShowAlert, ShowPopup) return when the user resolves
// them or ctx ends.
type Host interface {
	Ready()
	InitData() map[string]any
	SetMainButton(params MainButtonParams, onClick func(ctx context.Context))
	ShowMainButton()
	ScanQR(ctx context.Context, prompt string) (ScanResult, error)
	ShowAlert(ctx context.Context, message string) error
	ShowPopup(ctx context.Context, popup Popup) error
	Close()
}
