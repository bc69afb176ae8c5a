package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Geek-master-100/ai-customer-reception/internal/desk"
	"github.com/Geek-master-100/ai-customer-reception/internal/styles"
)

const noticeWidth = 36

// View renders the shell.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.previewing {
		return m.preview.Overlay(m.width, m.height)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Reception"))
	b.WriteString("\n")

	if !m.loaded {
		b.WriteString(mutedStyle.Render(" loading..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.renderPlatformBar())
	b.WriteString("\n")
	b.WriteString(styles.DividerStyle.Render(strings.Repeat("─", max(m.width, 40))))
	b.WriteString("\n")

	body := m.renderBody()
	if notices := m.renderNotices(); notices != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(max(m.width-noticeWidth-4, 40)).Render(body), notices)
	}
	b.WriteString(body)
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(" " + m.err.Error()))
		b.WriteString("\n")
	case m.snap.Status != "":
		b.WriteString(statusStyle.Render(m.snap.Status))
		b.WriteString("\n")
	}

	b.WriteString(" " + m.help.View(m.keys))
	return b.String()
}

func (m Model) renderPlatformBar() string {
	parts := make([]string, 0, len(m.snap.Platforms))
	for i, p := range m.snap.Platforms {
		label := desk.WithBadge(fmt.Sprintf("%d %s", i+1, p.Name), p.Badge)
		if p.ID == m.snap.Focused {
			parts = append(parts, platformFocusedStyle.Render(label))
		} else {
			parts = append(parts, platformStyle.Render(label))
		}
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderBody() string {
	p, ok := m.focused()
	if !ok {
		return mutedStyle.Render(" No platform enabled. Enable one in the config file.")
	}
	if p.View == desk.ViewSessionTabs && len(p.Tabs) > 0 {
		return renderTabs(p)
	}
	return m.renderShops(p)
}

func (m Model) renderShops(p desk.PlatformState) string {
	var b strings.Builder
	b.WriteString(selectedStyle.Render(" " + p.Name + " shops"))
	b.WriteString("\n\n")

	if len(p.Saved) == 0 {
		b.WriteString(mutedStyle.Render(" No saved shops. Press n to log in to a new account."))
		return b.String()
	}

	open := map[string]bool{}
	for _, t := range p.Tabs {
		open[t.SessionID] = true
	}

	cursor := m.cursors[p.ID]
	for i, r := range p.Saved {
		line := r.DisplayName()
		if r.MallName != "" && r.MallName != line {
			line += " " + mutedStyle.Render(r.MallName)
		}
		if open[r.SessionID] {
			line += " " + attachedStyle.Render(iconDot+" open")
		}

		if i == cursor {
			b.WriteString(selectedStyle.Render(" > ") + line)
		} else {
			b.WriteString(normalStyle.Render("   ") + line)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderTabs(p desk.PlatformState) string {
	tabs := make([]string, 0, len(p.Tabs))
	for _, t := range p.Tabs {
		if t.Active {
			tabs = append(tabs, tabActiveStyle.Render(t.Title))
		} else {
			tabs = append(tabs, tabStyle.Render(t.Title))
		}
	}

	var b strings.Builder
	b.WriteString(" " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	if p.Active < 0 || p.Active >= len(p.Tabs) {
		return b.String()
	}
	t := p.Tabs[p.Active]

	state := loadingStyle.Render("loading")
	if t.Attached {
		state = attachedStyle.Render("connected")
	}
	b.WriteString(fmt.Sprintf(" %s %s %s", mutedStyle.Render("session "+t.SessionID), iconDot, state))
	if t.Unread > 0 {
		b.WriteString(" " + iconDot + " " + styles.BadgeStyle.Render(fmt.Sprintf("%d unread", t.Unread)))
	}
	return b.String()
}

// renderNotices stacks the notices newest first.
func (m Model) renderNotices() string {
	if len(m.snap.Notices) == 0 {
		return ""
	}

	boxes := make([]string, 0, len(m.snap.Notices))
	for i := len(m.snap.Notices) - 1; i >= 0; i-- {
		n := m.snap.Notices[i]
		boxes = append(boxes, noticeStyle.Width(noticeWidth).Render(
			noticeTitleStyle.Render(n.Title)+"\n"+n.Body,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}
