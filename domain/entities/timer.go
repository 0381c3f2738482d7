package entities

// TimerKind identifies one of the three weekly timers of a lottery
type TimerKind string

const (
	TimerFinalWarning   TimerKind = "final_warning"
	TimerClosingWarning TimerKind = "closing_warning"
	TimerDraw           TimerKind = "draw"
)

// NotificationKind returns the announcement sent when a warning timer fires.
// ok is false for the draw timer.
func (k TimerKind) NotificationKind() (NotificationKind, bool) {
	switch k {
	case TimerFinalWarning:
		return NotificationFinalWarning, true
	case TimerClosingWarning:
		return NotificationClosingWarning, true
	default:
		return "", false
	}
}
