package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"reviewdesk/internal/domain"
	"reviewdesk/internal/views"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return lipgloss.JoinVertical(lipgloss.Left, m.header(), "", m.styles.Muted.Render("Starting..."))
	}

	var body string
	switch m.snap.View {
	case views.Orders:
		body = m.ordersView()
	case views.Admin:
		body = m.adminView()
	default:
		body = m.loginView()
	}

	screen := lipgloss.JoinVertical(lipgloss.Left, m.header(), "", body, "", m.footer())

	switch {
	case m.scan != nil:
		return screen + "\n\n" + m.styles.Modal.Render(
			m.styles.Subtitle.Render(m.scan.prompt)+"\n\n"+m.scanInput.View())
	case len(m.modals) > 0:
		return screen + "\n\n" + m.modalView()
	}
	return screen
}

func (m Model) header() string {
	title := m.styles.Title.Render("Order review")
	if u := m.snap.User; u != nil {
		title += m.styles.Muted.Render(fmt.Sprintf("  %s (%s)", u.Username, u.Role))
	}
	return title
}

func (m Model) footer() string {
	var lines []string
	if m.buttonShown && m.snap.View != views.Login {
		btn := m.styles.MainButton(m.button)
		pending := len(m.snap.Decisions)
		if pending > 0 && !m.snap.Saved {
			btn += m.styles.Muted.Render(fmt.Sprintf("  %d unsaved", pending))
		}
		lines = append(lines, btn)
	}
	if m.busy != "" {
		lines = append(lines, m.styles.Muted.Render(m.busy))
	} else if m.status != "" {
		lines = append(lines, m.styles.Muted.Render(m.status))
	}
	if m.exitWarned {
		lines = append(lines, m.styles.Error.Render("Press ctrl+c again to quit without saving."))
	}
	lines = append(lines, m.styles.Muted.Render(m.help()))
	return strings.Join(lines, "\n")
}

func (m Model) help() string {
	switch m.snap.View {
	case views.Orders:
		return "↑/↓ order • ←/→ campaign • y approve • n reject • x skip • b scan • r reload • s save • q quit"
	case views.Admin:
		if m.adminFocus == focusNewUsername || m.adminFocus == focusNewPassword {
			return "tab focus • enter next field / create worker • ctrl+c quit"
		}
		return "tab focus • ↑/↓ select • a/enter assign • r reload • q quit"
	default:
		return "tab switch field • enter log in • ctrl+c quit"
	}
}

func (m Model) loginView() string {
	return m.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Subtitle.Render("Log in"),
		"",
		m.username.View(),
		m.password.View(),
	))
}

func (m Model) ordersView() string {
	w := m.snap.Worker
	if len(w.Campaigns) == 0 {
		return m.styles.Muted.Render("No campaigns assigned.")
	}

	tabs := make([]string, 0, len(w.Campaigns))
	for _, id := range w.Campaigns {
		label := "Campaign " + id.String()
		if id == w.Selected {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	switch {
	case w.LoadFailed:
		return tabRow + "\n\n" + m.styles.Error.Render("Could not load orders. Press r to retry.")
	case !w.OrdersLoaded:
		return tabRow + "\n\n" + m.styles.Muted.Render("Loading orders...")
	case w.NoOrders():
		return tabRow + "\n\n" + m.styles.Muted.Render("No orders found.")
	}

	start, end := m.window(len(w.Orders), 4)
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, m.orderCard(w.Orders[i], i == m.orderCursor))
	}
	return tabRow + "\n\n" + strings.Join(rows, "\n")
}

// window picks the visible slice of n rows around the cursor.
func (m Model) window(n, rowHeight int) (int, int) {
	visible := n
	if m.height > 0 {
		visible = max(1, (m.height-12)/rowHeight)
	}
	if visible >= n {
		return 0, n
	}
	start := m.orderCursor - visible/2
	start = max(0, min(start, n-visible))
	return start, start + visible
}

func (m Model) orderCard(o domain.Order, selected bool) string {
	cursor := "  "
	if selected {
		cursor = m.styles.Cursor.Render("> ")
	}
	name := m.styles.Subtitle.Render(o.ProductName)
	if outcome, ok := m.snap.Outcome(o.ID); ok {
		name += " " + m.styles.Outcome(outcome)
	}
	details := fmt.Sprintf("SKU: %s | Qty: %d | Order: %s", o.SKU, o.Quantity, o.ID)
	if o.Barcode != "" {
		details += " | Barcode: " + o.Barcode
	}
	lines := []string{cursor + name, "  " + m.styles.Muted.Render(details)}
	if o.ImagePath != "" {
		lines = append(lines, "  "+m.styles.Muted.Render("Image: "+o.ImagePath))
	}
	return strings.Join(lines, "\n")
}

func (m Model) adminView() string {
	a := m.snap.Admin

	campaigns := []string{m.sectionTitle("Campaigns", m.adminFocus == focusCampaigns)}
	if len(a.Campaigns) == 0 {
		campaigns = append(campaigns, m.styles.Muted.Render("none"))
	}
	for i, c := range a.Campaigns {
		campaigns = append(campaigns, m.listRow(c.Label(), i == m.campaignCursor && m.adminFocus == focusCampaigns))
	}

	workers := []string{m.sectionTitle("Workers", m.adminFocus == focusWorkers)}
	if len(a.Workers) == 0 {
		workers = append(workers, m.styles.Muted.Render("none"))
	}
	for i, w := range a.Workers {
		workers = append(workers, m.listRow(w, i == m.workerCursor && m.adminFocus == focusWorkers))
	}

	lists := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Card.Render(strings.Join(campaigns, "\n")),
		" ",
		m.styles.Card.Render(strings.Join(workers, "\n")),
	)

	stats := []string{m.styles.Subtitle.Render("Worker stats")}
	if len(a.Stats) == 0 {
		stats = append(stats, m.styles.Muted.Render("no data"))
	}
	for _, s := range a.Stats {
		ids := make([]string, 0, len(s.AssignedCampaigns))
		for _, id := range s.AssignedCampaigns {
			ids = append(ids, id.String())
		}
		assigned := "none"
		if len(ids) > 0 {
			assigned = strings.Join(ids, ", ")
		}
		stats = append(stats, fmt.Sprintf("%s | campaigns: %s | processed: %d | balance: %s",
			s.Username, assigned, s.ProcessedOrders, strconv.FormatFloat(s.Balance, 'f', -1, 64)))
	}
	if !a.LoadedAt.IsZero() {
		stats = append(stats, m.styles.Muted.Render("updated "+a.LoadedAt.Format("15:04:05")))
	}

	form := m.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.sectionTitle("New worker", m.adminFocus == focusNewUsername || m.adminFocus == focusNewPassword),
		m.newUsername.View(),
		m.newPassword.View(),
	))

	return lipgloss.JoinVertical(lipgloss.Left, lists, "", strings.Join(stats, "\n"), "", form)
}

func (m Model) sectionTitle(title string, focused bool) string {
	if focused {
		return m.styles.Cursor.Render(title)
	}
	return m.styles.Subtitle.Render(title)
}

func (m Model) listRow(label string, selected bool) string {
	if selected {
		return m.styles.Cursor.Render("> " + label)
	}
	return "  " + label
}

func (m Model) modalView() string {
	md := m.modals[0]
	label := "OK"
	if len(md.buttons) > 0 && md.buttons[0].Text != "" {
		label = md.buttons[0].Text
	}

	var b strings.Builder
	if md.title != "" {
		b.WriteString(m.styles.Subtitle.Render(md.title))
		b.WriteString("\n\n")
	}
	b.WriteString(md.text)
	b.WriteString("\n\n")
	b.WriteString(m.styles.Cursor.Render("[" + label + "]"))
	return m.styles.Modal.Render(b.String())
}
