package session

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"reviewdesk/internal/domain"
	"reviewdesk/internal/integrations/host"
)

type fakeGateway struct {
	mu    sync.Mutex
	calls []string

	user      domain.User
	authErr   error
	orders    map[domain.CampaignID][]domain.Order
	ordersErr error
	campaigns []domain.Campaign
	campErr   error
	stats     []domain.WorkerStats
	statsErr  error
	saveErr   error
	createErr error
	assignErr error

	saved    [][]domain.Decision
	created  []domain.NewUser
	assigned [][2]string

	// saveGate, when set, blocks SaveDecisions until it is closed.
	saveGate    chan struct{}
	saveEntered chan struct{}
}

func (f *fakeGateway) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeGateway) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGateway) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeGateway) Authenticate(ctx context.Context, initData map[string]any, username, password string) (domain.User, error) {
	f.record("POST /auth")
	if f.authErr != nil {
		return domain.User{}, f.authErr
	}
	return f.user, nil
}

func (f *fakeGateway) ListOrders(ctx context.Context, id domain.CampaignID) ([]domain.Order, error) {
	f.record("GET /orders/" + id.String())
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	orders := f.orders[id]
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (f *fakeGateway) SaveDecisions(ctx context.Context, decisions []domain.Decision) error {
	f.record("POST /save_decisions")
	if f.saveEntered != nil {
		f.saveEntered <- struct{}{}
	}
	if f.saveGate != nil {
		<-f.saveGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, decisions)
	return nil
}

func (f *fakeGateway) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	f.record("GET /campaigns")
	return f.campaigns, f.campErr
}

func (f *fakeGateway) Stats(ctx context.Context) ([]domain.WorkerStats, error) {
	f.record("GET /stats")
	return f.stats, f.statsErr
}

func (f *fakeGateway) CreateUser(ctx context.Context, user domain.NewUser) error {
	f.record("POST /create_user")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, user)
	return nil
}

func (f *fakeGateway) AssignCampaign(ctx context.Context, username string, id domain.CampaignID) error {
	f.record("POST /assign_campaign")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return f.assignErr
	}
	f.assigned = append(f.assigned, [2]string{username, id.String()})
	return nil
}

type fakeHost struct {
	mu          sync.Mutex
	ready       bool
	button      host.MainButtonParams
	onClick     func(ctx context.Context)
	buttonShown bool
	scans       []host.ScanResult
	alerts      []string
	popups      []host.Popup
	closed      bool
	initData    map[string]any
}

func (h *fakeHost) Ready() {
	h.mu.Lock()
	h.ready = true
	h.mu.Unlock()
}

func (h *fakeHost) InitData() map[string]any {
	return h.initData
}

func (h *fakeHost) SetMainButton(params host.MainButtonParams, onClick func(ctx context.Context)) {
	h.mu.Lock()
	h.button = params
	h.onClick = onClick
	h.mu.Unlock()
}

func (h *fakeHost) ShowMainButton() {
	h.mu.Lock()
	h.buttonShown = true
	h.mu.Unlock()
}

func (h *fakeHost) ScanQR(ctx context.Context, prompt string) (host.ScanResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.scans) == 0 {
		return host.Cancelled(), nil
	}
	res := h.scans[0]
	h.scans = h.scans[1:]
	return res, nil
}

func (h *fakeHost) ShowAlert(ctx context.Context, message string) error {
	h.mu.Lock()
	h.alerts = append(h.alerts, message)
	h.mu.Unlock()
	return nil
}

func (h *fakeHost) ShowPopup(ctx context.Context, popup host.Popup) error {
	h.mu.Lock()
	h.popups = append(h.popups, popup)
	h.mu.Unlock()
	return nil
}

func (h *fakeHost) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

func (h *fakeHost) Alerts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.alerts...)
}

func (h *fakeHost) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func newTestController(t *testing.T, gw *fakeGateway) (*Controller, *fakeHost) {
	t.Helper()
	h := &fakeHost{initData: map[string]any{"hash": "abc"}}
	c := NewController(gw, h, Options{Logger: zaptest.NewLogger(t)})
	c.Start(context.Background())
	return c, h
}

func workerUser(campaigns ...domain.CampaignID) domain.User {
	return domain.User{ID: "bob", Username: "bob", Role: domain.RoleWorker, AssignedCampaigns: campaigns}
}

func adminUser() domain.User {
	return domain.User{ID: "boss", Username: "boss", Role: domain.RoleAdmin}
}
