package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"reviewdesk/internal/domain"
	"reviewdesk/internal/integrations/host"
	"reviewdesk/internal/session"
)

var errAdminOnly = errors.New("this command needs an admin account")

// ConsoleSession is a logged-in controller driven through a line console.
type ConsoleSession struct {
	Ctrl    *session.Controller
	Console *host.Console
	User    domain.User
	out     io.Writer
	logger  *zap.Logger
}

// LoginConsole starts a controller on a console host and logs in with the
// configured credentials.
func LoginConsole(ctx context.Context, rt *Runtime, in io.Reader, out io.Writer) (*ConsoleSession, error) {
	if !rt.Config.HasCredentials() {
		return nil, errors.New("credentials required: set username/password in config, REVIEWDESK_USERNAME/REVIEWDESK_PASSWORD or --username/--password")
	}
	console := host.NewConsole(in, out, rt.InitData)
	ctrl := rt.NewController(console)
	ctrl.Start(ctx)

	user, err := ctrl.Login(ctx, rt.Config.Username, rt.Config.Password)
	if err != nil {
		return nil, err
	}
	return &ConsoleSession{Ctrl: ctrl, Console: console, User: user, out: out, logger: rt.Logger}, nil
}

func (s *ConsoleSession) requireAdmin() error {
	if !s.User.IsAdmin() {
		return errAdminOnly
	}
	return nil
}

// PrintOrders lists the open orders of a campaign. Workers are limited to
// their assigned campaigns; admins may look at any campaign.
func (s *ConsoleSession) PrintOrders(ctx context.Context, id domain.CampaignID) error {
	var orders []domain.Order
	if s.User.IsAdmin() {
		var err error
		if orders, err = s.Ctrl.LoadOrders(ctx, id); err != nil {
			return err
		}
	} else {
		if err := s.Ctrl.SelectCampaign(ctx, id); err != nil {
			return err
		}
		orders = s.Ctrl.Snapshot().Worker.Orders
	}
	if len(orders) == 0 {
		fmt.Fprintln(s.out, "No orders found.")
		return nil
	}
	for _, o := range orders {
		writeOrder(s.out, o)
	}
	return nil
}

func writeOrder(w io.Writer, o domain.Order) {
	fmt.Fprintf(w, "%s\n  SKU: %s | Qty: %d | Order: %s | Barcode: %s\n", o.ProductName, o.SKU, o.Quantity, o.ID, o.Barcode)
	if o.ImagePath != "" {
		fmt.Fprintf(w, "  Image: %s\n", o.ImagePath)
	}
}

// Review walks the campaign's orders, asking for a decision on each, then
// presses the main button to save. Input per order: y/n/s to decide, b to
// scan the barcode, an empty line to leave it undecided, q to stop early.
func (s *ConsoleSession) Review(ctx context.Context, id domain.CampaignID) error {
	if err := s.Ctrl.SelectCampaign(ctx, id); err != nil {
		return err
	}
	orders := s.Ctrl.Snapshot().Worker.Orders
	if len(orders) == 0 {
		fmt.Fprintln(s.out, "No orders found.")
		return nil
	}

review:
	for i, o := range orders {
		fmt.Fprintf(s.out, "\n[%d/%d] ", i+1, len(orders))
		writeOrder(s.out, o)
		for {
			line, ok, err := s.Console.ReadLine(ctx, "decision [y/n/s, b=scan, enter=leave, q=stop]: ")
			if err != nil {
				return err
			}
			line = strings.TrimSpace(line)
			if !ok || strings.EqualFold(line, "q") {
				break review
			}
			if line == "" {
				break
			}
			if strings.EqualFold(line, "b") {
				// Mismatch and cancel are already shown by the controller.
				if err := s.Ctrl.ScanAndDecide(ctx, o.ID, o.Barcode); err == nil {
					break
				}
				continue
			}
			outcome, err := domain.ParseOutcome(line)
			if err != nil {
				fmt.Fprintf(s.out, "unknown decision %q\n", line)
				continue
			}
			if err := s.Ctrl.Decide(o.ID, outcome); err != nil {
				return err
			}
			break
		}
	}

	snap := s.Ctrl.Snapshot()
	if len(snap.Decisions) == 0 {
		fmt.Fprintln(s.out, "Nothing decided, nothing saved.")
		return nil
	}
	if !s.Console.PressMainButton(ctx) {
		return errors.New("main button is not available")
	}
	snap = s.Ctrl.Snapshot()
	if !snap.Saved {
		s.Ctrl.ConfirmExit(ctx)
		return fmt.Errorf("%d decisions were not saved", len(snap.Decisions))
	}
	s.logger.Info("review finished", zap.String("campaign", id.String()))
	return nil
}

// PrintStats prints the per-worker stats table.
func (s *ConsoleSession) PrintStats(ctx context.Context) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	snap := s.Ctrl.Snapshot()
	if snap.Admin.StatsLoadedAt.IsZero() {
		if err := s.Ctrl.LoadAdminData(ctx); err != nil {
			return err
		}
		snap = s.Ctrl.Snapshot()
	}
	if len(snap.Admin.Stats) == 0 {
		fmt.Fprintln(s.out, "No workers yet.")
		return nil
	}
	for _, st := range snap.Admin.Stats {
		ids := make([]string, 0, len(st.AssignedCampaigns))
		for _, id := range st.AssignedCampaigns {
			ids = append(ids, id.String())
		}
		assigned := "none"
		if len(ids) > 0 {
			assigned = strings.Join(ids, ", ")
		}
		fmt.Fprintf(s.out, "%s | campaigns: %s | processed: %d | balance: %s\n",
			st.Username, assigned, st.ProcessedOrders, strconv.FormatFloat(st.Balance, 'f', -1, 64))
	}
	return nil
}

func (s *ConsoleSession) CreateUser(ctx context.Context, username, password string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.Ctrl.CreateUser(ctx, username, password)
}

func (s *ConsoleSession) AssignCampaign(ctx context.Context, username string, id domain.CampaignID) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.Ctrl.AssignCampaign(ctx, username, id)
}
