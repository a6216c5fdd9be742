package events

import (
	"fmt"
	"slices"
	"time"

	"github.com/casualjim/conduit/pkg/uuidx"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// StatusChangeType is the event type name status changes are published under.
const StatusChangeType = "StatusChangeEvent"

const (
	StatusReceive = "Receive"
	StatusPause   = "Pause"
)

var statusChangeJSON = []byte(`{"type":"` + StatusChangeType + `"}`)

func init() {
	Register(StatusChangeType, func(data []byte) (Event, error) {
		var s StatusChange
		if err := s.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return s, nil
	})
}

// StatusChange announces that Sender switched to Status.
type StatusChange struct {
	ID        uuid.UUID       `json:"id"`
	Status    string          `json:"status"`
	Sender    string          `json:"sender,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

// NewStatusChange stamps a status change with a fresh id and the current time.
func NewStatusChange(sender, status string) StatusChange {
	return StatusChange{
		ID:        uuidx.New(),
		Status:    status,
		Sender:    sender,
		Timestamp: strfmt.DateTime(time.Now()),
	}
}

func (StatusChange) EventType() string { return StatusChangeType }

// MarshalJSON implements custom JSON marshaling for StatusChange
func (s StatusChange) MarshalJSON() ([]byte, error) {
	result := slices.Clone(statusChangeJSON)

	var err error
	result, err = sjson.SetBytes(result, "id", s.ID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "status", s.Status)
	if err != nil {
		return nil, err
	}

	if s.Sender != "" {
		result, err = sjson.SetBytes(result, "sender", s.Sender)
		if err != nil {
			return nil, err
		}
	}

	if !time.Time(s.Timestamp).IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", s.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for StatusChange
func (s *StatusChange) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != StatusChangeType {
		return fmt.Errorf("missing or invalid type, expected '%s'", StatusChangeType)
	}

	id := gjson.GetBytes(data, "id")
	if !id.Exists() {
		return fmt.Errorf("missing required field 'id'")
	}
	if err := s.ID.UnmarshalText([]byte(id.String())); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}

	status := gjson.GetBytes(data, "status")
	if !status.Exists() {
		return fmt.Errorf("missing required field 'status'")
	}
	s.Status = status.String()

	if sender := gjson.GetBytes(data, "sender"); sender.Exists() {
		s.Sender = sender.String()
	}

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := s.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}
