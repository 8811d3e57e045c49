// Package session owns the state of one client session: the logged-in user,
// the decision ledger, the visible view and the data shown on the worker and
// admin screens. Every user action goes through Controller.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"reviewdesk/internal/domain"
	"reviewdesk/internal/integrations/backend"
	"reviewdesk/internal/integrations/host"
	"reviewdesk/internal/ledger"
	"reviewdesk/internal/views"
)

// Gateway is the backend surface the controller needs.
type Gateway interface {
	Authenticate(ctx context.Context, initData map[string]any, username, password string) (domain.User, error)
	ListOrders(ctx context.Context, campaignID domain.CampaignID) ([]domain.Order, error)
	SaveDecisions(ctx context.Context, decisions []domain.Decision) error
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
	Stats(ctx context.Context) ([]domain.WorkerStats, error)
	CreateUser(ctx context.Context, user domain.NewUser) error
	AssignCampaign(ctx context.Context, username string, campaignID domain.CampaignID) error
}

type Options struct {
	MainButton host.MainButtonParams
	ScanPrompt string
	Logger     *zap.Logger
	Now        func() time.Time
}

type Controller struct {
	gw     Gateway
	host   host.Host
	router *views.Router
	ledger *ledger.Ledger
	logger *zap.Logger
	now    func() time.Time

	mainButton host.MainButtonParams
	scanPrompt string

	mu      sync.Mutex
	user    *domain.User
	saved   bool
	saving  bool
	worker  WorkerScreen
	admin   AdminScreen
	onLogin []func(ctx context.Context, user domain.User)
}

type WorkerScreen struct {
	Campaigns    []domain.CampaignID
	Selected     domain.CampaignID
	Orders       []domain.Order
	OrdersLoaded bool
	// LoadFailed is set when the last load of the selected campaign failed.
	LoadFailed bool
}

// NoOrders reports the loaded-but-empty state.
func (w WorkerScreen) NoOrders() bool {
	return w.OrdersLoaded && len(w.Orders) == 0
}

type AdminForm struct {
	Username string
	Password string
}

type AdminScreen struct {
	Campaigns []domain.Campaign
	Workers   []string
	Stats     []domain.WorkerStats
	Form      AdminForm
	// LoadedAt is the last time either half loaded; StatsLoadedAt only
	// moves when stats did.
	LoadedAt      time.Time
	StatsLoadedAt time.Time
}

// Snapshot is a copy of everything a host renders.
type Snapshot struct {
	View      views.ID
	User      *domain.User
	Worker    WorkerScreen
	Admin     AdminScreen
	Decisions []domain.Decision
	Saved     bool
	Saving    bool
}

func (s Snapshot) Outcome(orderID string) (domain.Outcome, bool) {
	for _, d := range s.Decisions {
		if d.OrderID == orderID {
			return d.Outcome, true
		}
	}
	return "", false
}

func NewController(gw Gateway, h host.Host, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	button := opts.MainButton
	if button.Text == "" {
		button = host.MainButtonParams{Text: "Save", Color: "#007BFF", TextColor: "#FFFFFF"}
	}
	prompt := opts.ScanPrompt
	if prompt == "" {
		prompt = "Scan the barcode"
	}
	return &Controller{
		gw:         gw,
		host:       h,
		router:     views.NewRouter(),
		ledger:     ledger.New(),
		logger:     logger,
		now:        now,
		mainButton: button,
		scanPrompt: prompt,
	}
}

// OnLogin registers fn to run after every successful login.
func (c *Controller) OnLogin(fn func(ctx context.Context, user domain.User)) {
	c.mu.Lock()
	c.onLogin = append(c.onLogin, fn)
	c.mu.Unlock()
}

// Start signals readiness, binds the main button to Save and shows the login
// view.
func (c *Controller) Start(ctx context.Context) {
	c.host.Ready()
	c.host.SetMainButton(c.mainButton, func(ctx context.Context) {
		_ = c.Save(ctx)
	})
	_ = c.router.Show(views.Login)
	c.logger.Info("session started")
}

// Login authenticates and switches to the screen of the user's role. On
// failure nothing changes and the login view stays active.
func (c *Controller) Login(ctx context.Context, username, password string) (domain.User, error) {
	const op = "login"
	user, err := c.gw.Authenticate(ctx, c.host.InitData(), username, password)
	if err != nil {
		return domain.User{}, c.fail(ctx, KindAuth, op, "Login error: "+userMessage(err), err)
	}

	c.mu.Lock()
	c.user = &user
	c.worker = WorkerScreen{}
	c.admin = AdminScreen{}
	hooks := append([]func(context.Context, domain.User){}, c.onLogin...)
	c.mu.Unlock()

	c.logger.Info("logged in", zap.String("user", user.ID), zap.String("role", string(user.Role)))

	if user.IsAdmin() {
		_ = c.router.Show(views.Admin)
		_ = c.LoadAdminData(ctx)
	} else {
		_ = c.router.Show(views.Orders)
		_ = c.LoadCampaigns(ctx)
	}
	c.host.ShowMainButton()

	for _, fn := range hooks {
		fn(ctx, user)
	}
	return user, nil
}

func (c *Controller) User() (domain.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return domain.User{}, false
	}
	return *c.user, true
}

func (c *Controller) ActiveView() views.ID {
	return c.router.Active()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		View:      c.router.Active(),
		Decisions: c.ledger.Decisions(),
		Saved:     c.saved,
		Saving:    c.saving,
	}
	if c.user != nil {
		u := *c.user
		u.AssignedCampaigns = append([]domain.CampaignID(nil), c.user.AssignedCampaigns...)
		s.User = &u
	}
	s.Worker = WorkerScreen{
		Campaigns:    append([]domain.CampaignID(nil), c.worker.Campaigns...),
		Selected:     c.worker.Selected,
		Orders:       append([]domain.Order(nil), c.worker.Orders...),
		OrdersLoaded: c.worker.OrdersLoaded,
		LoadFailed:   c.worker.LoadFailed,
	}
	s.Admin = AdminScreen{
		Campaigns:     append([]domain.Campaign(nil), c.admin.Campaigns...),
		Workers:       append([]string(nil), c.admin.Workers...),
		Stats:         append([]domain.WorkerStats(nil), c.admin.Stats...),
		Form:          c.admin.Form,
		LoadedAt:      c.admin.LoadedAt,
		StatsLoadedAt: c.admin.StatsLoadedAt,
	}
	return s
}

// ConfirmExit is the pre-close hook. It returns true when the host should try
// to keep the app open because unsaved decisions would be lost; the host has
// the final say.
func (c *Controller) ConfirmExit(ctx context.Context) bool {
	c.mu.Lock()
	pending := c.ledger.Len()
	saved := c.saved
	c.mu.Unlock()

	if saved || pending == 0 {
		return false
	}
	c.logger.Warn("exit requested with unsaved decisions", zap.Int("pending", pending))
	err := c.host.ShowPopup(ctx, host.Popup{
		Message: "You forgot to save! Press the Save button.",
		Buttons: []host.PopupButton{{Type: "ok", Text: "OK"}},
	})
	if err != nil {
		c.logger.Warn("exit popup failed", zap.Error(err))
	}
	return true
}

func (c *Controller) notify(ctx context.Context, msg string) {
	if err := c.host.ShowAlert(ctx, msg); err != nil {
		c.logger.Warn("alert not shown", zap.String("message", msg), zap.Error(err))
	}
}

// fail logs, surfaces msg to the user and returns the matching *Error.
func (c *Controller) fail(ctx context.Context, kind Kind, op, msg string, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.String("kind", string(kind))}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	switch kind {
	case KindValidation, KindScanCancelled:
		c.logger.Info(msg, fields...)
	default:
		c.logger.Warn(msg, fields...)
	}
	c.notify(ctx, msg)
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func userMessage(err error) string {
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the server did not answer in time"
	}
	return strings.TrimSpace(err.Error())
}
