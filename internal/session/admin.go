package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"reviewdesk/internal/domain"
)

// LoadAdminData fetches the campaign list and the worker stats in parallel
// and fills the admin screen. Each half is applied on its own success; any
// failure is shown to the admin.
func (c *Controller) LoadAdminData(ctx context.Context) error {
	return c.loadAdmin(ctx, true)
}

// RefreshAdminData is LoadAdminData for background refreshes: failures are
// logged but not shown.
func (c *Controller) RefreshAdminData(ctx context.Context) error {
	return c.loadAdmin(ctx, false)
}

func (c *Controller) loadAdmin(ctx context.Context, surface bool) error {
	const op = "load admin data"
	var (
		campaigns []domain.Campaign
		stats     []domain.WorkerStats
		campErr   error
		statsErr  error
	)

	var g errgroup.Group
	g.Go(func() error {
		campaigns, campErr = c.gw.ListCampaigns(ctx)
		return nil
	})
	g.Go(func() error {
		stats, statsErr = c.gw.Stats(ctx)
		return nil
	})
	_ = g.Wait()

	c.mu.Lock()
	if campErr == nil {
		c.admin.Campaigns = campaigns
	}
	if statsErr == nil {
		c.admin.Stats = stats
		c.admin.StatsLoadedAt = c.now()
		c.admin.Workers = make([]string, 0, len(stats))
		for _, s := range stats {
			c.admin.Workers = append(c.admin.Workers, s.Username)
		}
	}
	if campErr == nil || statsErr == nil {
		c.admin.LoadedAt = c.now()
	}
	c.mu.Unlock()

	if campErr == nil && statsErr == nil {
		c.logger.Info("admin data loaded", zap.Int("campaigns", len(campaigns)), zap.Int("workers", len(stats)))
		return nil
	}

	var parts []string
	var causes []error
	if campErr != nil {
		parts = append(parts, "campaigns: "+userMessage(campErr))
		causes = append(causes, fmt.Errorf("campaigns: %w", campErr))
	}
	if statsErr != nil {
		parts = append(parts, "stats: "+userMessage(statsErr))
		causes = append(causes, fmt.Errorf("stats: %w", statsErr))
	}
	msg := "Could not load admin data (" + strings.Join(parts, "; ") + ")"
	cause := errors.Join(causes...)

	if !surface {
		c.logger.Warn(msg, zap.String("op", op), zap.Error(cause))
		return &Error{Kind: KindLoad, Op: op, Msg: msg, Err: cause}
	}
	return c.fail(ctx, KindLoad, op, msg, cause)
}

// SetAdminForm mirrors the create-user input fields.
func (c *Controller) SetAdminForm(form AdminForm) {
	c.mu.Lock()
	c.admin.Form = form
	c.mu.Unlock()
}

// CreateUser creates a worker account. Both fields are required after
// trimming. On success the form is cleared and the admin data reloaded.
func (c *Controller) CreateUser(ctx context.Context, username, password string) error {
	const op = "create user"
	c.SetAdminForm(AdminForm{Username: username, Password: password})

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return c.fail(ctx, KindValidation, op, "Enter a username and a password!", ErrMissingFields)
	}

	err := c.gw.CreateUser(ctx, domain.NewUser{
		Username: username,
		Password: password,
		Role:     domain.RoleWorker,
	})
	if err != nil {
		return c.fail(ctx, KindSave, op, "Could not create user: "+userMessage(err), err)
	}

	c.SetAdminForm(AdminForm{})
	c.logger.Info("worker created", zap.String("username", username))
	c.notify(ctx, "New worker created!")
	_ = c.LoadAdminData(ctx)
	return nil
}

// AssignCampaign gives a worker access to a campaign and reloads the admin
// data.
func (c *Controller) AssignCampaign(ctx context.Context, username string, campaignID domain.CampaignID) error {
	const op = "assign campaign"
	username = strings.TrimSpace(username)
	campaignID = domain.CampaignID(strings.TrimSpace(campaignID.String()))
	if username == "" || campaignID == "" {
		return c.fail(ctx, KindValidation, op, "Select a worker and a campaign!", ErrMissingSelection)
	}

	if err := c.gw.AssignCampaign(ctx, username, campaignID); err != nil {
		return c.fail(ctx, KindSave, op, "Could not assign campaign: "+userMessage(err), err)
	}

	c.logger.Info("campaign assigned", zap.String("username", username), zap.String("campaign", campaignID.String()))
	c.notify(ctx, "Campaign assigned!")
	_ = c.LoadAdminData(ctx)
	return nil
}
