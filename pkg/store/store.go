// Package store keeps the client's global state: session, favorites, courses
// and the registration draft. Every store is safe for concurrent use and
// announces changes on an EventBus topic.
package store

import (
	"go-rise-platform/pkg/client"

	"github.com/asaskevich/EventBus"
)

var (
	TopicAuthChanged         = "store.auth.changed"
	TopicFavoritesChanged    = "store.favorites.changed"
	TopicSelectionChanged    = "store.jobs.selection_changed"
	TopicCoursesChanged      = "store.courses.changed"
	TopicRegistrationChanged = "store.registration.changed"
)

type AuthChanged struct {
	Status string
	UserID string
}

type FavoritesChanged struct {
	IDs []int64
}

type SelectionChanged struct {
	Job *client.Job
}

type CoursesChanged struct {
	Count int
}

type RegistrationChanged struct {
	Field string
}

// notifier publishes outside the store locks so subscribers may read the store.
type notifier struct {
	bus EventBus.Bus
}

func (n notifier) publish(topic string, event any) {
	if n.bus == nil {
		return
	}
	n.bus.Publish(topic, event)
}
