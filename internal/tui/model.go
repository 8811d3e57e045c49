package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"reviewdesk/internal/domain"
	"reviewdesk/internal/integrations/host"
	"reviewdesk/internal/session"
	"reviewdesk/internal/views"
)

type mainButtonMsg struct {
	params host.MainButtonParams
	shown  bool
}

type scanRequestMsg struct {
	prompt string
	reply  chan<- host.ScanResult
}

type modalMsg struct {
	title   string
	text    string
	buttons []host.PopupButton
	done    chan struct{}
}

type closeMsg struct{}

type readyMsg struct{}

type exitMsg struct{ prevented bool }

type opDoneMsg struct {
	op  string
	err error
}

// RefreshedMsg asks the model to re-read controller state, e.g. after a
// background refresh.
type RefreshedMsg struct{}

const (
	opStart    = "start"
	opLogin    = "login"
	opSelect   = "select_campaign"
	opReload   = "reload"
	opScan     = "scan"
	opSave     = "save"
	opCreate   = "create_user"
	opAssign   = "assign_campaign"
	opAdminGet = "admin_data"
)

type adminFocus int

const (
	focusCampaigns adminFocus = iota
	focusWorkers
	focusNewUsername
	focusNewPassword
	adminFocusCount
)

// Model is the bubbletea model. Controller calls that can block on the host
// run inside commands so the update loop stays free to answer them.
type Model struct {
	ctx    context.Context
	ctrl   *session.Controller
	host   *Host
	styles Styles

	width, height int

	ready       bool
	snap        session.Snapshot
	button      host.MainButtonParams
	buttonShown bool
	busy        string
	status      string

	username   textinput.Model
	password   textinput.Model
	loginFocus int

	orderCursor int

	adminFocus     adminFocus
	campaignCursor int
	workerCursor   int
	newUsername    textinput.Model
	newPassword    textinput.Model

	modals    []modalMsg
	scan      *scanRequestMsg
	scanInput textinput.Model

	exitWarned bool
	quitting   bool
}

func NewModel(ctx context.Context, ctrl *session.Controller, h *Host) Model {
	username := textinput.New()
	username.Placeholder = "Username"
	username.Prompt = "Username: "
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	newUsername := textinput.New()
	newUsername.Placeholder = "New worker username"
	newUsername.Prompt = "Username: "

	newPassword := textinput.New()
	newPassword.Placeholder = "New worker password"
	newPassword.Prompt = "Password: "
	newPassword.EchoMode = textinput.EchoPassword
	newPassword.EchoCharacter = '•'

	scan := textinput.New()
	scan.Placeholder = "type or scan a code, Esc to cancel"
	scan.Prompt = "> "

	return Model{
		ctx:         ctx,
		ctrl:        ctrl,
		host:        h,
		styles:      DefaultStyles(),
		snap:        ctrl.Snapshot(),
		username:    username,
		password:    password,
		newUsername: newUsername,
		newPassword: newPassword,
		scanInput:   scan,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.run(opStart, func(ctx context.Context) error {
		m.ctrl.Start(ctx)
		return nil
	}))
}

func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case readyMsg:
		m.ready = true
		m.refresh()
		return m, nil

	case mainButtonMsg:
		m.button = msg.params
		m.buttonShown = msg.shown
		return m, nil

	case modalMsg:
		m.modals = append(m.modals, msg)
		m.refresh()
		return m, nil

	case scanRequestMsg:
		m.scan = &msg
		m.scanInput.Reset()
		m.scanInput.Focus()
		return m, textinput.Blink

	case closeMsg:
		return m.quit()

	case exitMsg:
		if !msg.prevented {
			return m.quit()
		}
		m.exitWarned = true
		return m, nil

	case opDoneMsg:
		m.busy = ""
		m.refresh()
		m.afterOp(msg)
		return m, nil

	case RefreshedMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	m.orderCursor = clamp(m.orderCursor, len(m.snap.Worker.Orders))
	m.campaignCursor = clamp(m.campaignCursor, len(m.snap.Admin.Campaigns))
	m.workerCursor = clamp(m.workerCursor, len(m.snap.Admin.Workers))
}

func (m *Model) afterOp(msg opDoneMsg) {
	if msg.err != nil {
		m.status = ""
		return
	}
	switch msg.op {
	case opLogin:
		m.password.Reset()
		m.status = ""
	case opCreate:
		m.newUsername.SetValue(m.snap.Admin.Form.Username)
		m.newPassword.SetValue(m.snap.Admin.Form.Password)
	}
}

// quit releases every pending host call before stopping the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	for _, md := range m.modals {
		close(md.done)
	}
	m.modals = nil
	if m.scan != nil {
		m.scan.reply <- host.Cancelled()
		m.scan = nil
	}
	m.quitting = true
	return m, tea.Quit
}

func (m Model) requestExit() (tea.Model, tea.Cmd) {
	if m.exitWarned {
		return m.quit()
	}
	ctrl, ctx := m.ctrl, m.ctx
	return m, func() tea.Msg {
		return exitMsg{prevented: ctrl.ConfirmExit(ctx)}
	}
}

func (m Model) pressMainButton() (tea.Model, tea.Cmd) {
	if !m.buttonShown || m.busy != "" {
		return m, nil
	}
	m.busy = "Saving..."
	h := m.host
	return m, m.run(opSave, func(ctx context.Context) error {
		h.Press(ctx)
		return nil
	})
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.requestExit()
	}
	if !m.ready {
		return m, nil
	}

	if len(m.modals) > 0 {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
			close(m.modals[0].done)
			m.modals = m.modals[1:]
		}
		return m, nil
	}

	if m.scan != nil {
		switch msg.Type {
		case tea.KeyEnter:
			res := host.Cancelled()
			if v := strings.TrimSpace(m.scanInput.Value()); v != "" {
				res = host.Scanned(v)
			}
			m.scan.reply <- res
			m.scan = nil
			m.scanInput.Blur()
			return m, nil
		case tea.KeyEsc:
			m.scan.reply <- host.Cancelled()
			m.scan = nil
			m.scanInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.scanInput, cmd = m.scanInput.Update(msg)
		return m, cmd
	}

	if msg.Type == tea.KeyCtrlS {
		return m.pressMainButton()
	}

	switch m.snap.View {
	case views.Orders:
		return m.ordersKey(msg)
	case views.Admin:
		return m.adminKey(msg)
	default:
		return m.loginKey(msg)
	}
}

func (m *Model) focusLogin() {
	if m.loginFocus == 0 {
		m.username.Focus()
		m.password.Blur()
	} else {
		m.username.Blur()
		m.password.Focus()
	}
}

func (m Model) loginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.loginFocus = 1 - m.loginFocus
		m.focusLogin()
		return m, nil
	case tea.KeyEnter:
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.focusLogin()
			return m, nil
		}
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Logging in..."
		ctrl := m.ctrl
		username, password := m.username.Value(), m.password.Value()
		return m, m.run(opLogin, func(ctx context.Context) error {
			_, err := ctrl.Login(ctx, username, password)
			return err
		})
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) currentOrder() (domain.Order, bool) {
	orders := m.snap.Worker.Orders
	if m.orderCursor < 0 || m.orderCursor >= len(orders) {
		return domain.Order{}, false
	}
	return orders[m.orderCursor], true
}

func (m Model) ordersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m.requestExit()
	case "up", "k":
		if m.orderCursor > 0 {
			m.orderCursor--
		}
	case "down", "j":
		if m.orderCursor < len(m.snap.Worker.Orders)-1 {
			m.orderCursor++
		}
	case "left", "h", "shift+tab":
		return m.shiftCampaign(-1)
	case "right", "l", "tab":
		return m.shiftCampaign(1)
	case "y":
		return m.decide(domain.OutcomeApprove)
	case "n":
		return m.decide(domain.OutcomeReject)
	case "x":
		return m.decide(domain.OutcomeSkip)
	case "b":
		order, ok := m.currentOrder()
		if !ok || m.busy != "" {
			return m, nil
		}
		m.busy = "Scanning..."
		ctrl := m.ctrl
		return m, m.run(opScan, func(ctx context.Context) error {
			return ctrl.ScanAndDecide(ctx, order.ID, order.Barcode)
		})
	case "r":
		selected := m.snap.Worker.Selected
		if selected == "" || m.busy != "" {
			return m, nil
		}
		m.busy = "Loading orders..."
		ctrl := m.ctrl
		return m, m.run(opReload, func(ctx context.Context) error {
			_, err := ctrl.LoadOrders(ctx, selected)
			return err
		})
	case "s":
		return m.pressMainButton()
	}
	return m, nil
}

func (m Model) decide(outcome domain.Outcome) (tea.Model, tea.Cmd) {
	order, ok := m.currentOrder()
	if !ok {
		return m, nil
	}
	if err := m.ctrl.Decide(order.ID, outcome); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.exitWarned = false
	m.status = "Order " + order.ID + ": " + outcome.Label()
	m.refresh()
	if m.orderCursor < len(m.snap.Worker.Orders)-1 {
		m.orderCursor++
	}
	return m, nil
}

func (m Model) shiftCampaign(delta int) (tea.Model, tea.Cmd) {
	campaigns := m.snap.Worker.Campaigns
	if len(campaigns) < 2 || m.busy != "" {
		return m, nil
	}
	idx := 0
	for i, id := range campaigns {
		if id == m.snap.Worker.Selected {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(campaigns)) % len(campaigns)
	next := campaigns[idx]
	m.orderCursor = 0
	m.busy = "Loading orders..."
	ctrl := m.ctrl
	return m, m.run(opSelect, func(ctx context.Context) error {
		return ctrl.SelectCampaign(ctx, next)
	})
}

func (m *Model) focusAdmin() {
	m.newUsername.Blur()
	m.newPassword.Blur()
	switch m.adminFocus {
	case focusNewUsername:
		m.newUsername.Focus()
	case focusNewPassword:
		m.newPassword.Focus()
	}
}

func (m Model) adminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		m.adminFocus = (m.adminFocus + 1) % adminFocusCount
		m.focusAdmin()
		return m, nil
	case tea.KeyShiftTab:
		m.adminFocus = (m.adminFocus + adminFocusCount - 1) % adminFocusCount
		m.focusAdmin()
		return m, nil
	}

	if m.adminFocus == focusNewUsername || m.adminFocus == focusNewPassword {
		return m.adminFormKey(msg)
	}

	switch msg.String() {
	case "q", "esc":
		return m.requestExit()
	case "up", "k":
		m.moveAdminCursor(-1)
	case "down", "j":
		m.moveAdminCursor(1)
	case "a", "enter":
		if m.busy != "" {
			return m, nil
		}
		var worker string
		var campaign domain.CampaignID
		if m.workerCursor < len(m.snap.Admin.Workers) {
			worker = m.snap.Admin.Workers[m.workerCursor]
		}
		if m.campaignCursor < len(m.snap.Admin.Campaigns) {
			campaign = m.snap.Admin.Campaigns[m.campaignCursor].ID
		}
		m.busy = "Assigning..."
		ctrl := m.ctrl
		return m, m.run(opAssign, func(ctx context.Context) error {
			return ctrl.AssignCampaign(ctx, worker, campaign)
		})
	case "r":
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Loading..."
		ctrl := m.ctrl
		return m, m.run(opAdminGet, ctrl.LoadAdminData)
	case "s":
		return m.pressMainButton()
	}
	return m, nil
}

func (m *Model) moveAdminCursor(delta int) {
	switch m.adminFocus {
	case focusCampaigns:
		m.campaignCursor = clamp(m.campaignCursor+delta, len(m.snap.Admin.Campaigns))
	case focusWorkers:
		m.workerCursor = clamp(m.workerCursor+delta, len(m.snap.Admin.Workers))
	}
}

func (m Model) adminFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		if m.adminFocus == focusNewUsername {
			m.adminFocus = focusNewPassword
			m.focusAdmin()
			return m, nil
		}
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Creating user..."
		ctrl := m.ctrl
		username, password := m.newUsername.Value(), m.newPassword.Value()
		return m, m.run(opCreate, func(ctx context.Context) error {
			return ctrl.CreateUser(ctx, username, password)
		})
	}

	var cmd tea.Cmd
	if m.adminFocus == focusNewUsername {
		m.newUsername, cmd = m.newUsername.Update(msg)
	} else {
		m.newPassword, cmd = m.newPassword.Update(msg)
	}
	m.ctrl.SetAdminForm(session.AdminForm{Username: m.newUsername.Value(), Password: m.newPassword.Value()})
	return m, cmd
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
