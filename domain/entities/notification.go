package entities

import "time"

// NotificationKind identifies what a channel announcement is about
type NotificationKind string

const (
	NotificationFinalWarning   NotificationKind = "final_warning"
	NotificationClosingWarning NotificationKind = "closing_warning"
	NotificationResult         NotificationKind = "result"
	NotificationReroll         NotificationKind = "reroll"
)

// Notification is handed to the notifier. Only the fields relevant to Kind are set.
type Notification struct {
	Kind    NotificationKind
	Lottery *Lottery
	Result  *DrawResult
	Reroll  *RerollRecord
	DrawAt  time.Time
}
