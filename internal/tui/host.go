package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"reviewdesk/internal/integrations/host"
)

var errDetached = errors.New("tui: no program attached")

// Sender is the part of *tea.Program the host talks to.
type Sender interface {
	Send(msg tea.Msg)
}

// Host implements host.Host on top of a running bubbletea program. Blocking
// calls post a request message and wait for the model to answer it.
type Host struct {
	mu       sync.Mutex
	sender   Sender
	initData map[string]any
	button   host.MainButtonParams
	onClick  func(ctx context.Context)
	shown    bool
}

var _ host.Host = (*Host)(nil)

func NewHost(initData map[string]any) *Host {
	return &Host{initData: initData}
}

// Attach binds the host to a program. Must be called before the program runs
// controller commands.
func (h *Host) Attach(s Sender) {
	h.mu.Lock()
	h.sender = s
	h.mu.Unlock()
}

func (h *Host) send(msg tea.Msg) bool {
	h.mu.Lock()
	s := h.sender
	h.mu.Unlock()
	if s == nil {
		return false
	}
	s.Send(msg)
	return true
}

// Ready tells the model the controller has finished starting up.
func (h *Host) Ready() {
	h.send(readyMsg{})
}

func (h *Host) InitData() map[string]any {
	out := make(map[string]any, len(h.initData))
	for k, v := range h.initData {
		out[k] = v
	}
	return out
}

func (h *Host) SetMainButton(params host.MainButtonParams, onClick func(ctx context.Context)) {
	h.mu.Lock()
	h.button = params
	h.onClick = onClick
	shown := h.shown
	h.mu.Unlock()
	h.send(mainButtonMsg{params: params, shown: shown})
}

func (h *Host) ShowMainButton() {
	h.mu.Lock()
	h.shown = true
	params := h.button
	h.mu.Unlock()
	h.send(mainButtonMsg{params: params, shown: true})
}

// Press fires the main button handler if the button is visible.
func (h *Host) Press(ctx context.Context) bool {
	h.mu.Lock()
	fn, shown := h.onClick, h.shown
	h.mu.Unlock()
	if !shown || fn == nil {
		return false
	}
	fn(ctx)
	return true
}

func (h *Host) ScanQR(ctx context.Context, prompt string) (host.ScanResult, error) {
	reply := make(chan host.ScanResult, 1)
	if !h.send(scanRequestMsg{prompt: prompt, reply: reply}) {
		return host.ScanResult{}, errDetached
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return host.ScanResult{}, ctx.Err()
	}
}

func (h *Host) ShowAlert(ctx context.Context, message string) error {
	return h.modal(ctx, modalMsg{text: message})
}

func (h *Host) ShowPopup(ctx context.Context, popup host.Popup) error {
	return h.modal(ctx, modalMsg{title: popup.Title, text: popup.Message, buttons: popup.Buttons})
}

func (h *Host) modal(ctx context.Context, msg modalMsg) error {
	msg.done = make(chan struct{})
	if !h.send(msg) {
		return errDetached
	}
	select {
	case <-msg.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Host) Close() {
	h.send(closeMsg{})
}
