package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TypeSnapshotRefreshed = "snapshot_refreshed"
	TypeRefreshFailed     = "refresh_failed"
	TypeConfigSaved       = "config_saved"
	TypePing              = "ping"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewRequestID tags work that did not start from an HTTP request, such as a
// scheduled refresh.
func NewRequestID() string {
	return uuid.NewString()
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
