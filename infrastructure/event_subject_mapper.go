package infrastructure

import (
	"fmt"

	"drawbot/domain/events"
)

// LotteryEventStream is the JetStream stream lottery events are retained in
const LotteryEventStream = "lottery_events"

// EventSubjectMapper handles mapping between lottery events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts an event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeLotteryCreated:
		return "lottery.created"
	case events.EventTypeLotteryRemoved:
		return "lottery.removed"
	case events.EventTypeDrawCompleted:
		return "lottery.draw.completed"
	case events.EventTypeRerollCreated:
		return "lottery.reroll.created"
	case events.EventTypeMissedDrawSkipped:
		return "lottery.draw.missed"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "lottery.created":
		return events.EventTypeLotteryCreated
	case "lottery.removed":
		return events.EventTypeLotteryRemoved
	case "lottery.draw.completed":
		return events.EventTypeDrawCompleted
	case "lottery.reroll.created":
		return events.EventTypeRerollCreated
	case "lottery.draw.missed":
		return events.EventTypeMissedDrawSkipped
	default:
		return ""
	}
}

// GetAllSubjects returns every subject lottery events are published on
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"lottery.created",
		"lottery.removed",
		"lottery.draw.completed",
		"lottery.reroll.created",
		"lottery.draw.missed",
	}
}
