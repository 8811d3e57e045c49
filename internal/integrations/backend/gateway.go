package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reviewdesk/internal/domain"
)

// Client talks to the order-review backend.
type Client struct {
	baseURL        string
	http           *http.Client
	logger         *zap.Logger
	initData       map[string]any
	attachInitData bool
}

type Option func(*Client)

// WithInitData makes every call after /auth carry the host init data as the
// init_data query parameter, which the backend uses to identify the caller.
func WithInitData(data map[string]any) Option {
	return func(c *Client) {
		c.initData = data
		c.attachInitData = len(data) > 0
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authResponse struct {
	User *domain.User `json:"user"`
}

// Authenticate posts the host init data merged with the credentials.
// Credentials win over init data keys of the same name.
func (c *Client) Authenticate(ctx context.Context, initData map[string]any, username, password string) (domain.User, error) {
	body := make(map[string]any, len(initData)+2)
	for k, v := range initData {
		body[k] = v
	}
	body["username"] = username
	body["password"] = password

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth", nil, body, &resp, false); err != nil {
		return domain.User{}, err
	}
	if resp.User == nil {
		return domain.User{}, fmt.Errorf("auth response has no user")
	}
	return *resp.User, nil
}

func (c *Client) ListOrders(ctx context.Context, campaignID domain.CampaignID) ([]domain.Order, error) {
	var orders []domain.Order
	path := "/orders/" + url.PathEscape(campaignID.String())
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &orders, true); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (c *Client) SaveDecisions(ctx context.Context, decisions []domain.Decision) error {
	return c.do(ctx, http.MethodPost, "/save_decisions", nil, decisions, nil, true)
}

func (c *Client) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	if err := c.do(ctx, http.MethodGet, "/campaigns", nil, nil, &campaigns, true); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (c *Client) Stats(ctx context.Context) ([]domain.WorkerStats, error) {
	var stats []domain.WorkerStats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &stats, true); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Client) CreateUser(ctx context.Context, user domain.NewUser) error {
	return c.do(ctx, http.MethodPost, "/create_user", nil, user, nil, true)
}

func (c *Client) AssignCampaign(ctx context.Context, username string, campaignID domain.CampaignID) error {
	query := url.Values{}
	query.Set("username", username)
	query.Set("campaign_id", campaignID.String())
	return c.do(ctx, http.MethodPost, "/assign_campaign", query, nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any, identify bool) error {
	if query == nil {
		query = url.Values{}
	}
	if identify && c.attachInitData {
		raw, err := json.Marshal(c.initData)
		if err != nil {
			return fmt.Errorf("encoding init data: %w", err)
		}
		query.Set("init_data", string(raw))
	}
	apiURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		apiURL += "?" + encoded
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("backend request", zap.String("method", method), zap.String("path", path), zap.String("request_id", requestID))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("backend rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID),
		)
		return newStatusError(method, path, resp.StatusCode, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
