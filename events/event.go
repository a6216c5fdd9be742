package events

import (
	"errors"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Event is implemented by every notification the broker can dispatch.
type Event interface {
	// EventType is the type name the event is published under by default.
	EventType() string
}

// ErrUnknownType is returned by FromJSON for a discriminator nobody registered.
var ErrUnknownType = errors.New("unknown event type")

// Decoder restores a concrete event from its JSON form.
type Decoder func([]byte) (Event, error)

var (
	decodersMu sync.RWMutex
	decoders   = map[string]Decoder{}
)

// Register makes FromJSON understand events whose "type" field equals
// eventType. Registering the same type twice replaces the decoder.
func Register(eventType string, decode Decoder) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[eventType] = decode
}

// ToJSON encodes an event. Variants are expected to include their "type"
// discriminator in their own MarshalJSON.
func ToJSON(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, errors.New("event is required")
	}
	return json.Marshal(ev)
}

// FromJSON decodes an event produced by ToJSON.
func FromJSON(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}
	typ := gjson.GetBytes(data, "type")
	if !typ.Exists() {
		return nil, errors.New("missing required field 'type'")
	}

	decodersMu.RLock()
	decode, ok := decoders[typ.String()]
	decodersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ.String())
	}
	return decode(data)
}
