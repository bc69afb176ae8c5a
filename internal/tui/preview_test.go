package tui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Geek-master-100/ai-customer-reception/internal/desk"
)

func TestStripDecorative(t *testing.T) {
	content := "\x1b[38;5;60m────────\x1b[0m\n\n{\n  \"a\": 1\n}\n  ---  \n"

	got := stripTrailingDecorative(stripLeadingDecorative(content))
	assert.Equal(t, "{\n  \"a\": 1\n}", got)
}

func TestIsDecorativeLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{line: "", want: true},
		{line: "   ", want: true},
		{line: "━━━━", want: true},
		{line: "\x1b[1m====\x1b[0m", want: true},
		{line: "-- note", want: false},
		{line: "{", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isDecorativeLine(tt.line), "%q", tt.line)
	}
}

func TestPreview_RendersPayload(t *testing.T) {
	p := NewPreview(desk.RawMessage{
		Platform:  "pdd",
		SessionID: "s1",
		Payload:   json.RawMessage(`{"text":"hello buyer"}`),
	}, 120, 40)

	out := p.Overlay(120, 40)
	assert.Contains(t, out, "Raw Message")
	assert.Contains(t, out, "session s1")
	assert.Contains(t, out, "hello buyer")
}
