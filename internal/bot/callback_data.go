package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback actions form a closed set. The wire format is "<action>:<receiptID>";
// unknown actions decode as !ok and are ignored by the dispatcher.
const (
	ActionConfirm = "confirm_receipt"
	ActionDiscard = "discard_receipt"
)

// EncodeCallbackData builds the inline-keyboard callback payload for a receipt.
func EncodeCallbackData(action string, receiptID int64) string {
	return fmt.Sprintf("%s:%d", action, receiptID)
}

// DecodeCallbackData parses a callback payload. ok is false when the payload
// is malformed or carries an action outside the closed set.
func DecodeCallbackData(data string) (action string, receiptID int64, ok bool) {
	action, idStr, found := strings.Cut(data, ":")
	if !found {
		return "", 0, false
	}
	if action != ActionConfirm && action != ActionDiscard {
		return "", 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 0 {
		return "", 0, false
	}
	return action, id, true
}
