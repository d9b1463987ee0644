package schedule

import (
	"fmt"
	"sort"
	"time"
)

// DeriveNotifications recomputes the active notification set from scratch.
//
// Every event strictly inside (now, now+window) yields one reminder
// surfacing `lead` before the event. Alert events instead surface
// immediately at their own timestamp - they report administrative actions
// that already happened - and stay active while less than `window` old.
//
// Full recomputation on every timeline change is deliberate: the window is
// small, and incremental patching is where staleness bugs live.
func DeriveNotifications(events []Event, now time.Time, window, lead time.Duration, timeFormat string) []Notification {
	notifs := make([]Notification, 0, len(events))
	for _, evt := range events {
		var n Notification
		switch {
		case evt.Kind == KindAlert:
			if !evt.Timestamp.After(now.Add(-window)) || !evt.Timestamp.Before(now.Add(window)) {
				continue
			}
			n = Notification{
				ID:      NotificationID(evt.ID),
				Message: fmt.Sprintf("Alert: %s on %s", evt.Title, evt.Timestamp.Format(timeFormat)),
				Time:    evt.Timestamp,
				EventID: evt.ID,
			}
		default:
			if !evt.Timestamp.After(now) || !evt.Timestamp.Before(now.Add(window)) {
				continue
			}
			n = Notification{
				ID:      NotificationID(evt.ID),
				Message: fmt.Sprintf("Reminder: %s on %s", evt.Title, evt.Timestamp.Format(timeFormat)),
				Time:    evt.Timestamp.Add(-lead),
				EventID: evt.ID,
			}
		}
		notifs = append(notifs, n)
	}

	sort.Slice(notifs, func(i, j int) bool {
		if notifs[i].Time.Equal(notifs[j].Time) {
			return notifs[i].ID < notifs[j].ID
		}
		return notifs[i].Time.Before(notifs[j].Time)
	})
	return notifs
}
