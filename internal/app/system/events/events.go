// Package events carries refresh signals between the parts of the file
// manager. A mutation publishes an event; every open view of the same user
// subscribes and reloads its listing when one arrives.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names a refresh signal.
type Kind string

const (
	// FilesMoved is published after a file was moved to another folder.
	FilesMoved Kind = "filesMoved"
	// FolderCreated is published after a folder was created.
	FolderCreated Kind = "folderCreated"
)

// Event is one refresh signal.
type Event struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	UserID   string    `json:"user_id"`
	FileID   string    `json:"file_id,omitempty"`
	FolderID string    `json:"folder_id,omitempty"`
	At       time.Time `json:"at"`
}

// New returns an event with a fresh id and timestamp.
func New(kind Kind, userID string) Event {
	return Event{
		ID:     uuid.NewString(),
		Kind:   kind,
		UserID: userID,
		At:     time.Now().UTC(),
	}
}

// Bus publishes events to all current subscribers.
//
// Delivery is best effort: a subscriber that is not keeping up misses
// events instead of blocking the publisher.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe returns a channel of events and a cancel func that must be
	// called to release the subscription. The channel is closed on cancel
	// or when ctx is done.
	Subscribe(ctx context.Context) (<-chan Event, func())
	Close() error
}

// subscriberBuffer is how many events a slow subscriber may lag behind.
const subscriberBuffer = 16

func encode(ev Event) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return b, nil
}

func decode(b []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Kind == "" {
		return Event{}, fmt.Errorf("decode event: missing kind")
	}
	return ev, nil
}
