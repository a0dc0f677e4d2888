package events

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const EventTypePathsStale = "paths.stale"

// PathsStaleEvent announces views whose data changed. Origin is the instance
// that produced the mutation; Remote is set when it arrived from another one.
type PathsStaleEvent struct {
	BaseEvent
	Paths  []string `json:"paths"`
	Origin string   `json:"origin"`
	Remote bool     `json:"remote"`
}

func NewPathsStaleEvent(origin string, paths ...string) *PathsStaleEvent {
	return &PathsStaleEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePathsStale,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"paths":  paths,
				"origin": origin,
			},
		},
		Paths:  paths,
		Origin: origin,
	}
}

// Touches reports whether any stale path is prefix or equal to one under root.
func (e *PathsStaleEvent) Touches(root string) bool {
	root = strings.TrimSuffix(root, "/")
	for _, p := range e.Paths {
		if p == root || strings.HasPrefix(p, root+"/") {
			return true
		}
	}
	return false
}
