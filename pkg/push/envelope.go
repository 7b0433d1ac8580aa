package push

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire frame for socket-delivered events. The payload
// stays raw; only the event name routes it.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func decodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode push envelope: %w", err)
	}

	if env.Event == "" {
		return Envelope{}, errMissingEvent
	}

	return env, nil
}
