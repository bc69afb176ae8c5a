// Package bridge turns diagnostic output from an embedded seller console into
// typed host events.
//
// Wire contract, version 1: the page logs a single line made of Marker
// followed by a JSON object
//
//	{"type": "<kind>", "response": <payload>}
//
// where <payload> is either a JSON value or a string holding JSON. Lines
// starting with LegacyMarker are accepted with the same grammar. All other
// lines are ignored.
package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
)

const (
	// Marker prefixes every host-bound line.
	Marker = "RECEPTION_MESSAGE/1:"
	// LegacyMarker is emitted by platform scripts written for the pywebview
	// desktop shell.
	LegacyMarker = "PYWEBVIEW_MESSAGE:"
)

// ErrMalformed is returned for marked lines that cannot be decoded.
var ErrMalformed = errors.New("malformed bridge message")

// Kind classifies an envelope.
type Kind string

const (
	KindCurrentUser    Kind = "currentuser"
	KindNewMessage     Kind = "newmessage"
	KindReceiveMessage Kind = "receiveMessage"
	KindUnknown        Kind = "unknown"
)

func parseKind(s string) Kind {
	switch k := Kind(s); k {
	case KindCurrentUser, KindNewMessage, KindReceiveMessage:
		return k
	default:
		return KindUnknown
	}
}

// Envelope is one decoded host-bound message.
type Envelope struct {
	Type    Kind
	Name    string          // type as sent, kept for unknown kinds
	Payload json.RawMessage // never a JSON string; string payloads are unwrapped
}

type wireEnvelope struct {
	Type     string          `json:"type"`
	Response json.RawMessage `json:"response"`
}

// StripMarker returns the text after a known marker.
func StripMarker(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, m := range []string{Marker, LegacyMarker} {
		if rest, ok := strings.CutPrefix(line, m); ok {
			return rest, true
		}
	}
	return "", false
}

// ParseLine decodes a console line. ok is false when the line carries no
// marker; err is non-nil when it does but cannot be decoded.
func ParseLine(line string) (env Envelope, ok bool, err error) {
	body, ok := StripMarker(line)
	if !ok {
		return Envelope{}, false, nil
	}

	var wire wireEnvelope
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return Envelope{}, true, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	payload, err := unwrapPayload(wire.Response)
	if err != nil {
		return Envelope{}, true, err
	}

	return Envelope{
		Type:    parseKind(wire.Type),
		Name:    wire.Type,
		Payload: payload,
	}, true, nil
}

// unwrapPayload accepts a native JSON value or a string holding JSON. A
// missing or null response decodes as an empty object.
func unwrapPayload(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return json.RawMessage("{}"), nil
	}

	if raw[0] != '"' {
		return raw, nil
	}

	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, fmt.Errorf("%w: response string: %v", ErrMalformed, err)
	}
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid([]byte(inner)) {
		return nil, fmt.Errorf("%w: response string is not JSON", ErrMalformed)
	}
	return json.RawMessage(inner), nil
}

type userPayload struct {
	UserName string  `json:"userName"`
	MallName string  `json:"mallName"`
	UserID   idValue `json:"userId"`
	MallID   idValue `json:"mallId"`
	Avatar   string  `json:"avatar"`
}

// idValue is an id reported as a JSON string or number. Numbers keep their
// literal form, so 1234567890123 stays exact.
type idValue string

func (v *idValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = idValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*v = idValue(n.String())
	return nil
}

// DecodeUser builds a shop record from a currentuser payload. The payload must
// name the user by userName or userId.
func DecodeUser(payload json.RawMessage, platform, sessionID string) (shop.Record, error) {
	var p userPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return shop.Record{}, fmt.Errorf("%w: currentuser: %v", ErrMalformed, err)
	}

	r := shop.Record{
		UserName:  p.UserName,
		MallName:  p.MallName,
		UserID:    string(p.UserID),
		MallID:    string(p.MallID),
		AvatarURL: p.Avatar,
		SessionID: sessionID,
		Platform:  platform,
	}
	if !r.Identified() {
		return shop.Record{}, fmt.Errorf("%w: currentuser: missing userName and userId", ErrMalformed)
	}
	return r, nil
}

type unreadPayload struct {
	HasNewMessage   *bool `json:"hasNewMessage"`
	NewMessageCount *int  `json:"newMessageCount"`
}

// DecodeUnread builds an unread event from a newmessage payload. When
// hasNewMessage is absent it is inferred from the count.
func DecodeUnread(payload json.RawMessage) (shop.NewMessageEvent, error) {
	var p unreadPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return shop.NewMessageEvent{}, fmt.Errorf("%w: newmessage: %v", ErrMalformed, err)
	}

	if p.HasNewMessage == nil && p.NewMessageCount == nil {
		return shop.NewMessageEvent{}, fmt.Errorf("%w: newmessage: missing hasNewMessage and newMessageCount", ErrMalformed)
	}

	var ev shop.NewMessageEvent
	if p.NewMessageCount != nil {
		if *p.NewMessageCount < 0 {
			return shop.NewMessageEvent{}, fmt.Errorf("%w: newmessage: negative count %d", ErrMalformed, *p.NewMessageCount)
		}
		ev.Count = *p.NewMessageCount
	}

	if p.HasNewMessage != nil {
		ev.HasNewMessage = *p.HasNewMessage
	} else {
		ev.HasNewMessage = ev.Count > 0
	}
	return ev, nil
}

// hostShim defines the functions platform scripts call to reach the host.
const hostShim = `(function () {
  var post = function (data) {
    try {
      console.log(%q + JSON.stringify(data));
    } catch (e) {}
  };
  window.reception = window.reception || {};
  window.reception.postMessage = post;
  window.pywebview = window.pywebview || {};
  window.pywebview.api = window.pywebview.api || {};
  window.pywebview.api.post_message = post;
})();
`

// HostShim returns the script that installs the host-bound post functions.
func HostShim() string {
	return fmt.Sprintf(hostShim, Marker)
}
