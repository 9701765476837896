package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeCallbackData(t *testing.T) {
	require.Equal(t, "confirm_receipt:42", EncodeCallbackData(ActionConfirm, 42))
	require.Equal(t, "discard_receipt:7", EncodeCallbackData(ActionDiscard, 7))
}

func TestDecodeCallbackData(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantAction string
		wantID     int64
		wantOK     bool
	}{
		{name: "confirm", data: "confirm_receipt:42", wantAction: ActionConfirm, wantID: 42, wantOK: true},
		{name: "discard", data: "discard_receipt:7", wantAction: ActionDiscard, wantID: 7, wantOK: true},
		{name: "unknown action", data: "edit_receipt:42", wantOK: false},
		{name: "missing separator", data: "confirm_receipt", wantOK: false},
		{name: "non-numeric id", data: "confirm_receipt:abc", wantOK: false},
		{name: "negative id", data: "confirm_receipt:-1", wantOK: false},
		{name: "empty", data: "", wantOK: false},
		{name: "trailing garbage", data: "confirm_receipt:42:extra", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, id, ok := DecodeCallbackData(tt.data)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.Equal(t, tt.wantAction, action)
				require.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestCallbackDataRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		action := rapid.SampledFrom([]string{ActionConfirm, ActionDiscard}).Draw(t, "action")
		id := rapid.Int64Range(0, 1<<62).Draw(t, "id")

		gotAction, gotID, ok := DecodeCallbackData(EncodeCallbackData(action, id))
		if !ok {
			t.Fatalf("round trip failed for %s:%d", action, id)
		}
		if gotAction != action || gotID != id {
			t.Fatalf("round trip mismatch: got %s:%d, want %s:%d", gotAction, gotID, action, id)
		}
	})
}
