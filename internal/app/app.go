package app

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"reviewdesk/internal/config"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/httpx"
	"reviewdesk/internal/integrations/backend"
	"reviewdesk/internal/integrations/host"
	"reviewdesk/internal/logging"
	"reviewdesk/internal/refresh"
	"reviewdesk/internal/session"
	"reviewdesk/internal/tui"
)

// Runtime is everything a command needs once config is loaded.
type Runtime struct {
	Config   config.Config
	Logger   *zap.Logger
	InitData map[string]any
	Gateway  *backend.Client
}

// NewRuntime applies cfg to the shared HTTP client and builds the gateway.
// interactive routes logs away from the terminal unless log_path is set.
func NewRuntime(cfg config.Config, interactive bool) (*Runtime, error) {
	logger, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		JSON:    cfg.LogJSON,
		Path:    cfg.LogPath,
		Discard: interactive,
	})
	if err != nil {
		return nil, err
	}

	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)

	initData, err := host.ParseInitData(cfg.InitData)
	if err != nil {
		return nil, fmt.Errorf("init_data: %w", err)
	}

	opts := []backend.Option{backend.WithLogger(logger)}
	if cfg.ShouldAttachInitData() {
		opts = append(opts, backend.WithInitData(initData))
	}
	gw := backend.NewClient(cfg.BackendURL, httpx.Client(), opts...)

	logger.Info("config loaded",
		zap.String("backend", cfg.BackendURL),
		zap.Bool("attach_init_data", cfg.ShouldAttachInitData()),
		zap.Int("init_data_fields", len(initData)),
		zap.Duration("http_timeout", appliedHTTPTimeout),
		zap.String("admin_refresh_schedule", cfg.AdminRefreshSchedule),
		zap.String("timezone", cfg.Timezone),
	)

	return &Runtime{Config: cfg, Logger: logger, InitData: initData, Gateway: gw}, nil
}

func (rt *Runtime) NewController(h host.Host) *session.Controller {
	return session.NewController(rt.Gateway, h, session.Options{
		MainButton: host.MainButtonParams{
			Text:      rt.Config.MainButtonText,
			Color:     rt.Config.MainButtonColor,
			TextColor: rt.Config.MainButtonTextColor,
		},
		ScanPrompt: rt.Config.ScanPrompt,
		Logger:     rt.Logger,
	})
}

// adminRefresher runs the admin refresh schedule for the logged-in admin.
type adminRefresher struct {
	rt     *Runtime
	ctrl   *session.Controller
	notify func()

	mu   sync.Mutex
	stop context.CancelFunc
	done <-chan struct{}
}

func (r *adminRefresher) onLogin(ctx context.Context, user domain.User) {
	if !user.IsAdmin() {
		return
	}
	r.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done, err := refresh.Start(runCtx, r.rt.Config.AdminRefreshSchedule, r.rt.Config.Location, r.rt.Logger,
		func(ctx context.Context) {
			if err := r.ctrl.RefreshAdminData(ctx); err != nil {
				return
			}
			if r.notify != nil {
				r.notify()
			}
		})
	if err != nil {
		r.rt.Logger.Warn("admin refresh disabled", zap.Error(err))
	}

	r.mu.Lock()
	r.stop, r.done = cancel, done
	r.mu.Unlock()
}

// Stop cancels the running schedule and waits for its goroutine.
func (r *adminRefresher) Stop() {
	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.mu.Unlock()
	if stop == nil {
		return
	}
	stop()
	<-done
}

// RunTUI runs the full-screen terminal mini-app until the user quits or the
// session closes itself after a successful save.
func RunTUI(ctx context.Context, rt *Runtime) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := tui.NewHost(rt.InitData)
	ctrl := rt.NewController(h)
	model := tui.NewModel(ctx, ctrl, h)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	h.Attach(p)

	refresher := &adminRefresher{rt: rt, ctrl: ctrl, notify: func() { p.Send(tui.RefreshedMsg{}) }}
	ctrl.OnLogin(refresher.onLogin)

	rt.Logger.Info("starting terminal mini-app")
	_, err := p.Run()
	interrupted := ctx.Err() != nil
	cancel()
	refresher.Stop()
	if err != nil && !interrupted {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
