package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"moodjournal/internal/core"
)

// Entry event actions
const (
	ActionUpserted = "upserted"
	ActionDeleted  = "deleted"
	ActionCleared  = "cleared"
)

var (
	ErrUnknownAction    = errors.New("unknown entry event action")
	ErrInvalidEventDate = errors.New("entry event date must be YYYY-MM-DD")
)

// EntryEvent announces a change to the journal. It carries only the entry
// identity; consumers read the current entry from the database.
type EntryEvent struct {
	Action    string    `json:"action"`
	ID        string    `json:"id,omitempty"`
	Date      string    `json:"date,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntryEvent creates an event stamped with the current time
func NewEntryEvent(action, id, date string) *EntryEvent {
	return &EntryEvent{
		Action:    action,
		ID:        id,
		Date:      date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EntryEventFromJSON decodes an event and checks its action. Deleted events
// must carry the date of the removed entry.
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var ev EntryEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Action {
	case ActionUpserted, ActionCleared:
		return &ev, nil
	case ActionDeleted:
		if _, err := core.ParseDate(ev.Date); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEventDate, ev.Date)
		}
		return &ev, nil
	default:
		return nil, ErrUnknownAction
	}
}
