package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Geek-master-100/ai-customer-reception/internal/desk"
)

// Raw message preview layout.
const (
	previewMaxWidth  = 100
	previewMaxHeight = 30
	previewMargin    = 4
	previewChrome    = 7 // title, metadata, help and spacing rows
	previewPadding   = 6 // border and horizontal padding
	glamourGutter    = 2
)

// Preview shows the last raw message of a page as highlighted JSON.
type Preview struct {
	msg      desk.RawMessage
	viewport viewport.Model
}

// NewPreview renders msg for a terminal of the given size.
func NewPreview(msg desk.RawMessage, width, height int) Preview {
	w := max(min(width-previewMargin, previewMaxWidth)-previewPadding, 10)
	h := max(min(height-previewMargin, previewMaxHeight)-previewChrome, 3)

	p := Preview{msg: msg, viewport: viewport.New(w, h)}
	p.viewport.SetContent(renderPayload(msg.Payload, w-glamourGutter))
	return p
}

// renderPayload pretty prints payload and highlights it as a JSON code block.
// Anything glamour cannot render falls back to the indented text.
func renderPayload(payload []byte, width int) string {
	var buf bytes.Buffer
	text := string(payload)
	if err := json.Indent(&buf, payload, "", "  "); err == nil {
		text = buf.String()
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}

	rendered, err := renderer.Render("```json\n" + text + "\n```")
	if err != nil {
		return text
	}

	content := strings.TrimSpace(rendered)
	content = stripLeadingDecorative(content)
	return stripTrailingDecorative(content)
}

// ScrollUp scrolls the payload up one line.
func (p *Preview) ScrollUp() { p.viewport.ScrollUp(1) }

// ScrollDown scrolls the payload down one line.
func (p *Preview) ScrollDown() { p.viewport.ScrollDown(1) }

// Overlay renders the preview centered in a width x height area.
func (p Preview) Overlay(width, height int) string {
	title := "Raw Message"
	if p.viewport.TotalLineCount() > p.viewport.VisibleLineCount() {
		title += mutedStyle.Render(fmt.Sprintf(" (%.0f%%)", p.viewport.ScrollPercent()*100))
	}

	meta := fmt.Sprintf("%s %s %s",
		selectedStyle.Render(p.msg.Platform),
		iconDot,
		mutedStyle.Render("session "+p.msg.SessionID),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		modalTitleStyle.Render(title),
		meta,
		"",
		p.viewport.View(),
		modalHelpStyle.Render("[↑/↓/j/k] scroll  [p/esc] close"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(content))
}

// ansiPattern matches ANSI escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// isDecorativeLine reports whether line holds only rule characters once
// ANSI codes are stripped.
func isDecorativeLine(line string) bool {
	stripped := strings.TrimSpace(ansiPattern.ReplaceAllString(line, ""))
	if stripped == "" {
		return true
	}
	for _, r := range stripped {
		if r != '─' && r != '━' && r != '-' && r != '=' {
			return false
		}
	}
	return true
}

func stripLeadingDecorative(content string) string {
	lines := strings.Split(content, "\n")
	start := 0
	for start < len(lines) && isDecorativeLine(lines[start]) {
		start++
	}
	return strings.Join(lines[start:], "\n")
}

func stripTrailingDecorative(content string) string {
	lines := strings.Split(content, "\n")
	end := len(lines)
	for end > 0 && isDecorativeLine(lines[end-1]) {
		end--
	}
	return strings.Join(lines[:end], "\n")
}
