package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reviewdesk/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", server.Client(), opts...)
}

func TestAuthenticateMergesInitDataAndCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("init_data") != "" {
			t.Fatalf("auth must not carry init_data in the query")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type: %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatal("missing X-Request-ID header")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["hash"] != "abc" || body["auth_date"] != "1700000000" {
			t.Fatalf("init data not merged: %v", body)
		}
		if body["username"] != "bob" || body["password"] != "pw" {
			t.Fatalf("credentials missing or overridden: %v", body)
		}
		_, _ = io.WriteString(w, `{"user":{"username":"bob","is_admin":false,"assigned_campaigns":[101,"C2"]}}`)
	}, WithInitData(map[string]any{"hash": "abc", "auth_date": "1700000000"}))

	user, err := client.Authenticate(context.Background(),
		map[string]any{"hash": "abc", "auth_date": "1700000000", "username": "from-host"}, "bob", "pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != "bob" || user.Role != domain.RoleWorker {
		t.Fatalf("unexpected user: %+v", user)
	}
	if len(user.AssignedCampaigns) != 2 || user.AssignedCampaigns[0] != "101" {
		t.Fatalf("unexpected campaigns: %v", user.AssignedCampaigns)
	}
}

func TestAuthenticateRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Invalid password"}`)
	})

	_, err := client.Authenticate(context.Background(), nil, "bob", "wrong")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", statusErr.StatusCode)
	}
	if statusErr.Message() != "Invalid password" {
		t.Fatalf("unexpected message: %q", statusErr.Message())
	}
}

func TestAuthenticateMissingUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	if _, err := client.Authenticate(context.Background(), nil, "bob", "pw"); err == nil {
		t.Fatal("expected error for response without user")
	}
}

func TestListOrdersAttachesInitData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/orders/C2" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var initData map[string]any
		if err := json.Unmarshal([]byte(r.URL.Query().Get("init_data")), &initData); err != nil {
			t.Fatalf("init_data query not JSON: %v", err)
		}
		if initData["username"] != "bob" {
			t.Fatalf("unexpected init_data: %v", initData)
		}
		_, _ = io.WriteString(w, `[{"order_id":"501","product_name":"Phone case","sku":"PC-1","barcode":"123","quantity":2,"image_path":"/tmp/pc.jpg"}]`)
	}, WithInitData(map[string]any{"username": "bob"}))

	orders, err := client.ListOrders(context.Background(), "C2")
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	want := domain.Order{ID: "501", ProductName: "Phone case", SKU: "PC-1", Barcode: "123", Quantity: 2, ImagePath: "/tmp/pc.jpg"}
	if len(orders) != 1 || orders[0] != want {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestListOrdersEmptyIsNotNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("init_data") != "" {
			t.Fatal("init_data attached without WithInitData")
		}
		_, _ = io.WriteString(w, `null`)
	})
	orders, err := client.ListOrders(context.Background(), "C1")
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if orders == nil || len(orders) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", orders)
	}
}

func TestSaveDecisionsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/save_decisions" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		want := `[{"order_id":"1","decision":"yes"},{"order_id":"2","decision":"skip"}]`
		if string(body) != want {
			t.Fatalf("body = %s, want %s", body, want)
		}
		_, _ = io.WriteString(w, `{"status":"saved"}`)
	})

	err := client.SaveDecisions(context.Background(), []domain.Decision{
		{OrderID: "1", Outcome: domain.OutcomeApprove},
		{OrderID: "2", Outcome: domain.OutcomeSkip},
	})
	if err != nil {
		t.Fatalf("SaveDecisions: %v", err)
	}
}

func TestSaveDecisionsServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})
	err := client.SaveDecisions(context.Background(), []domain.Decision{{OrderID: "1", Outcome: domain.OutcomeReject}})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if !strings.Contains(statusErr.Error(), "boom") {
		t.Fatalf("error should include body: %v", statusErr)
	}
}

func TestListCampaignsAndStats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/campaigns":
			_, _ = io.WriteString(w, `[{"id":21621656,"name":"Main store"},{"id":"C2","name":""}]`)
		case "/stats":
			_, _ = io.WriteString(w, `[{"username":"bob","assigned_campaigns":[21621656],"processed_orders":7,"balance":0.0}]`)
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	})

	campaigns, err := client.ListCampaigns(context.Background())
	if err != nil {
		t.Fatalf("ListCampaigns: %v", err)
	}
	if len(campaigns) != 2 || campaigns[0].ID != "21621656" || campaigns[1].ID != "C2" {
		t.Fatalf("unexpected campaigns: %+v", campaigns)
	}

	stats, err := client.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 1 || stats[0].ProcessedOrders != 7 || stats[0].AssignedCampaigns[0] != "21621656" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCreateUserBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/create_user" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body domain.NewUser
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body != (domain.NewUser{Username: "alice", Password: "pw", Role: domain.RoleWorker}) {
			t.Fatalf("unexpected body: %+v", body)
		}
		_, _ = io.WriteString(w, `{"status":"created"}`)
	})
	if err := client.CreateUser(context.Background(), domain.NewUser{Username: "alice", Password: "pw", Role: domain.RoleWorker}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func TestAssignCampaignQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/assign_campaign" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("username") != "bob smith" || q.Get("campaign_id") != "21621656" {
			t.Fatalf("unexpected query: %v", q)
		}
		_, _ = io.WriteString(w, `{"status":"assigned"}`)
	})
	if err := client.AssignCampaign(context.Background(), "bob smith", "21621656"); err != nil {
		t.Fatalf("AssignCampaign: %v", err)
	}
}

func TestRequestHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	httpClient := server.Client()
	httpClient.Timeout = 50 * time.Millisecond
	client := NewClient(server.URL, httpClient)

	if _, err := client.ListCampaigns(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestDetailMessageValidationList(t *testing.T) {
	got := detailMessage([]byte(`{"detail":[{"loc":["query","campaign_id"],"msg":"value is not a valid integer"}]}`))
	if got != "value is not a valid integer" {
		t.Fatalf("unexpected detail: %q", got)
	}
	if detailMessage([]byte("not json")) != "" {
		t.Fatal("expected empty detail for non-JSON body")
	}
}
