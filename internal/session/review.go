package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"reviewdesk/internal/domain"
)

// LoadCampaigns fills the campaign selector from the user's assignments and
// loads the first campaign.
func (c *Controller) LoadCampaigns(ctx context.Context) error {
	const op = "load campaigns"
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return &Error{Kind: KindValidation, Op: op, Msg: "Not logged in.", Err: ErrNotLoggedIn}
	}
	assigned := append([]domain.CampaignID(nil), c.user.AssignedCampaigns...)
	c.mu.Unlock()

	if len(assigned) == 0 {
		return c.fail(ctx, KindValidation, op, "You have no assigned campaigns.", ErrNoCampaigns)
	}

	c.mu.Lock()
	c.worker.Campaigns = assigned
	c.mu.Unlock()

	return c.SelectCampaign(ctx, assigned[0])
}

// SelectCampaign switches the worker screen to one of the user's assigned
// campaigns and loads its open orders.
func (c *Controller) SelectCampaign(ctx context.Context, id domain.CampaignID) error {
	const op = "select campaign"
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return &Error{Kind: KindValidation, Op: op, Msg: "Not logged in.", Err: ErrNotLoggedIn}
	}
	if !c.user.HasCampaign(id) {
		c.mu.Unlock()
		return &Error{
			Kind: KindValidation,
			Op:   op,
			Msg:  fmt.Sprintf("Campaign %s is not assigned to you.", id),
			Err:  ErrCampaignNotAssigned,
		}
	}
	c.worker.Selected = id
	c.worker.Orders = nil
	c.worker.OrdersLoaded = false
	c.worker.LoadFailed = false
	c.mu.Unlock()

	_, err := c.LoadOrders(ctx, id)
	return err
}

// LoadOrders fetches the open orders of a campaign and shows them if the
// campaign is still the selected one. An empty list is a valid result.
func (c *Controller) LoadOrders(ctx context.Context, id domain.CampaignID) ([]domain.Order, error) {
	const op = "load orders"
	orders, err := c.gw.ListOrders(ctx, id)
	if err != nil {
		c.mu.Lock()
		if c.worker.Selected == id {
			c.worker.LoadFailed = true
		}
		c.mu.Unlock()
		return nil, c.fail(ctx, KindLoad, op, "Could not load orders: "+userMessage(err), err)
	}

	c.mu.Lock()
	if c.worker.Selected == id {
		c.worker.Orders = orders
		c.worker.OrdersLoaded = true
		c.worker.LoadFailed = false
	} else {
		c.logger.Debug("dropping orders of a campaign no longer selected",
			zap.String("campaign", id.String()),
			zap.String("selected", c.worker.Selected.String()),
		)
	}
	c.mu.Unlock()

	c.logger.Info("orders loaded", zap.String("campaign", id.String()), zap.Int("count", len(orders)))
	return orders, nil
}

// Decide records outcome for orderID, replacing an earlier decision.
func (c *Controller) Decide(orderID string, outcome domain.Outcome) error {
	const op = "decide"
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return &Error{Kind: KindValidation, Op: op, Msg: "Order id is empty."}
	}
	if !outcome.Valid() {
		return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf("Unknown decision %q.", outcome)}
	}

	c.mu.Lock()
	c.ledger.Put(orderID, outcome)
	c.saved = false
	c.mu.Unlock()

	c.logger.Debug("decision recorded", zap.String("order", orderID), zap.String("outcome", outcome.Label()))
	return nil
}

// ScanAndDecide asks the host to scan a barcode and approves orderID when the
// scanned value matches expected. Mismatches and cancellations leave the
// ledger untouched.
func (c *Controller) ScanAndDecide(ctx context.Context, orderID, expected string) error {
	const op = "scan"
	res, err := c.host.ScanQR(ctx, c.scanPrompt)
	if err != nil {
		return fmt.Errorf("scan popup: %w", err)
	}
	if res.Cancelled {
		return c.fail(ctx, KindScanCancelled, op, "Scan cancelled.", nil)
	}

	scanned := strings.TrimSpace(res.Value)
	want := strings.TrimSpace(expected)
	if scanned != want {
		mismatch := &ScanMismatchError{Scanned: scanned, Expected: want}
		return c.fail(ctx, KindScanMismatch, op,
			fmt.Sprintf("Barcode does not match: %s (expected %s)", scanned, want), mismatch)
	}

	if err := c.Decide(orderID, domain.OutcomeApprove); err != nil {
		return err
	}
	c.notify(ctx, "Barcode matched! Approved automatically.")
	return nil
}

// Save submits the ledger. It refuses without a network call when the ledger
// is empty or another save is still running. On success the submitted
// entries are removed, the session is marked saved and the host is closed; on
// failure the ledger is kept for a retry.
func (c *Controller) Save(ctx context.Context) error {
	const op = "save"
	c.mu.Lock()
	if c.ledger.Len() == 0 {
		c.mu.Unlock()
		return c.fail(ctx, KindValidation, op, "No decisions have been made.", ErrEmptyLedger)
	}
	if c.saving {
		c.mu.Unlock()
		return c.fail(ctx, KindValidation, op, "Saving is already in progress.", ErrSaveInFlight)
	}
	c.saving = true
	submitted := c.ledger.Decisions()
	c.mu.Unlock()

	c.logger.Info("saving decisions", zap.Int("count", len(submitted)))
	err := c.gw.SaveDecisions(ctx, submitted)

	c.mu.Lock()
	c.saving = false
	if err != nil {
		c.mu.Unlock()
		return c.fail(ctx, KindSave, op, "Save error: "+userMessage(err), err)
	}
	remaining := c.ledger.Settle(submitted)
	c.saved = remaining == 0
	c.mu.Unlock()

	if remaining > 0 {
		c.logger.Info("decisions changed while saving", zap.Int("remaining", remaining))
		c.notify(ctx, fmt.Sprintf("Saved %d decisions; %d changed while saving and still need to be saved.", len(submitted), remaining))
		return nil
	}
	c.notify(ctx, "Decisions saved and reports sent!")
	c.host.Close()
	return nil
}
