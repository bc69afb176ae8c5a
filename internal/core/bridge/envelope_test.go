package bridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantOK   bool
		wantErr  bool
		wantKind Kind
		payload  string
	}{
		{
			name:   "unmarked line ignored",
			line:   "page loaded",
			wantOK: false,
		},
		{
			name:     "native object payload",
			line:     Marker + `{"type":"newmessage","response":{"newMessageCount":3}}`,
			wantOK:   true,
			wantKind: KindNewMessage,
			payload:  `{"newMessageCount":3}`,
		},
		{
			name:     "string payload is unwrapped",
			line:     Marker + `{"type":"currentuser","response":"{\"userName\":\"Alice\"}"}`,
			wantOK:   true,
			wantKind: KindCurrentUser,
			payload:  `{"userName":"Alice"}`,
		},
		{
			name:     "legacy marker accepted",
			line:     LegacyMarker + `{"type":"receiveMessage","response":{"text":"hi"}}`,
			wantOK:   true,
			wantKind: KindReceiveMessage,
			payload:  `{"text":"hi"}`,
		},
		{
			name:     "surrounding whitespace trimmed",
			line:     "  " + Marker + `{"type":"newmessage","response":{}}` + "\n",
			wantOK:   true,
			wantKind: KindNewMessage,
			payload:  `{}`,
		},
		{
			name:     "missing response becomes empty object",
			line:     Marker + `{"type":"receiveMessage"}`,
			wantOK:   true,
			wantKind: KindReceiveMessage,
			payload:  `{}`,
		},
		{
			name:     "unknown type",
			line:     Marker + `{"type":"heartbeat","response":{}}`,
			wantOK:   true,
			wantKind: KindUnknown,
			payload:  `{}`,
		},
		{
			name:    "invalid envelope json",
			line:    Marker + `{"type":`,
			wantOK:  true,
			wantErr: true,
		},
		{
			name:    "string payload that is not json",
			line:    Marker + `{"type":"currentuser","response":"not json"}`,
			wantOK:  true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, ok, err := ParseLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantKind, env.Type)
			assert.JSONEq(t, tt.payload, string(env.Payload))
		})
	}
}

func TestParseLine_KeepsUnknownName(t *testing.T) {
	env, ok, err := ParseLine(Marker + `{"type":"heartbeat"}`)
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, "heartbeat", env.Name)
}

func TestDecodeUser(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		r, err := DecodeUser([]byte(`{
			"userName": "Alice",
			"mallName": "Alice Shop",
			"userId": "u1",
			"mallId": "m1",
			"avatar": "https://a/1.png"
		}`), "pdd", "s1")
		require.NoError(t, err)

		assert.Equal(t, shop.Record{
			UserName:  "Alice",
			MallName:  "Alice Shop",
			UserID:    "u1",
			MallID:    "m1",
			AvatarURL: "https://a/1.png",
			SessionID: "s1",
			Platform:  "pdd",
		}, r)
	})

	t.Run("user id alone is enough", func(t *testing.T) {
		r, err := DecodeUser([]byte(`{"userId":"u1"}`), "jd", "s2")
		require.NoError(t, err)
		assert.Equal(t, "u1", r.UserID)
		assert.Equal(t, "s2", r.SessionID)
	})

	t.Run("unidentified payload rejected", func(t *testing.T) {
		_, err := DecodeUser([]byte(`{"mallName":"Shop"}`), "pdd", "s1")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("wrong field type rejected", func(t *testing.T) {
		_, err := DecodeUser([]byte(`{"userName":42}`), "pdd", "s1")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("numeric ids accepted", func(t *testing.T) {
		r, err := DecodeUser([]byte(`{"userId":1234567890123,"mallId":77}`), "pdd", "s1")
		require.NoError(t, err)
		assert.Equal(t, "1234567890123", r.UserID)
		assert.Equal(t, "77", r.MallID)
	})

	t.Run("null id treated as missing", func(t *testing.T) {
		_, err := DecodeUser([]byte(`{"userId":null}`), "pdd", "s1")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("non scalar id rejected", func(t *testing.T) {
		_, err := DecodeUser([]byte(`{"userName":"Alice","mallId":{"id":1}}`), "pdd", "s1")
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestDecodeUnread(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    shop.NewMessageEvent
		wantErr bool
	}{
		{
			name:    "both fields",
			payload: `{"hasNewMessage":true,"newMessageCount":3}`,
			want:    shop.NewMessageEvent{HasNewMessage: true, Count: 3},
		},
		{
			name:    "count only infers flag",
			payload: `{"newMessageCount":2}`,
			want:    shop.NewMessageEvent{HasNewMessage: true, Count: 2},
		},
		{
			name:    "zero count clears flag",
			payload: `{"newMessageCount":0}`,
			want:    shop.NewMessageEvent{},
		},
		{
			name:    "flag only",
			payload: `{"hasNewMessage":true}`,
			want:    shop.NewMessageEvent{HasNewMessage: true},
		},
		{
			name:    "empty payload",
			payload: `{}`,
			wantErr: true,
		},
		{
			name:    "negative count",
			payload: `{"newMessageCount":-1}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeUnread([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHostShim(t *testing.T) {
	shim := HostShim()

	assert.Contains(t, shim, `"`+Marker+`"`)
	assert.Contains(t, shim, "window.reception.postMessage")
	assert.Contains(t, shim, "window.pywebview.api.post_message")
	assert.False(t, strings.Contains(shim, "%!"), "shim must not contain format errors")
}
