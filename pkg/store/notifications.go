package store

import (
	"time"
)

// NotificationTTL is how long a notification lives before its timer
// removes it.
const NotificationTTL = 5 * time.Second

// Notification kinds.
const (
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// Notification is an ephemeral UI-level status message.
type Notification struct {
	ID      int64
	Kind    string
	Title   string
	Message string
}

// AddNotification appends a notification and schedules its removal after
// the TTL. Identifiers are millisecond wall-clock values, nudged forward
// on a same-millisecond collision so live ids stay unique. Returns the
// assigned id.
func (s *Store) AddNotification(kind, title, message string) int64 {
	s.mu.Lock()

	id := time.Now().UnixMilli()
	if id <= s.lastNotificationID {
		id = s.lastNotificationID + 1
	}

	s.lastNotificationID = id

	n := Notification{
		ID:      id,
		Kind:    kind,
		Title:   title,
		Message: message,
	}

	s.state = addNotification{notification: n}.apply(s.state)
	s.timers[id] = time.AfterFunc(s.notificationTTL, func() {
		s.RemoveNotification(id)
	})

	snap := s.state.clone()
	subs := make([]func(State), len(s.subscribers))
	copy(subs, s.subscribers)

	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}

	return id
}

// RemoveNotification drops the notification and cancels its pending
// timer. Removing an absent id is a no-op, so a timer that loses the
// race with a manual removal fires harmlessly.
func (s *Store) RemoveNotification(id int64) {
	s.mu.Lock()

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}

	s.state = removeNotification{id: id}.apply(s.state)

	snap := s.state.clone()
	subs := make([]func(State), len(s.subscribers))
	copy(subs, s.subscribers)

	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
