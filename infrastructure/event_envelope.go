package infrastructure

import (
	"encoding/json"
	"fmt"
	"time"

	"drawbot/domain/events"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// SourceService identifies this process in event envelopes
const SourceService = "drawbot"

// EventEnvelope is the decoded form of a published event
type EventEnvelope struct {
	EventID       string
	EventType     events.EventType
	Timestamp     time.Time
	SourceService string
	Payload       map[string]any
}

// EncodeEnvelope wraps an event with an id and timestamp and renders it as protojson
func EncodeEnvelope(event events.Event, at time.Time) (string, []byte, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", nil, fmt.Errorf("failed to decode event payload: %w", err)
	}

	ts := timestamppb.New(at)
	if err := ts.CheckValid(); err != nil {
		return "", nil, fmt.Errorf("failed to encode event timestamp: %w", err)
	}

	eventID := uuid.New().String()
	envelope, err := structpb.NewStruct(map[string]any{
		"event_id":       eventID,
		"event_type":     string(event.Type()),
		"timestamp":      ts.AsTime().Format(time.RFC3339Nano),
		"source_service": SourceService,
		"payload":        payload,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to build event envelope: %w", err)
	}

	data, err := protojson.Marshal(envelope)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return eventID, data, nil
}

// DecodeEnvelope parses an envelope produced by EncodeEnvelope
func DecodeEnvelope(data []byte) (*EventEnvelope, error) {
	var envelope structpb.Struct
	if err := protojson.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	fields := envelope.GetFields()
	ts, err := time.Parse(time.RFC3339Nano, fields["timestamp"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
	}

	return &EventEnvelope{
		EventID:       fields["event_id"].GetStringValue(),
		EventType:     events.EventType(fields["event_type"].GetStringValue()),
		Timestamp:     ts,
		SourceService: fields["source_service"].GetStringValue(),
		Payload:       fields["payload"].GetStructValue().AsMap(),
	}, nil
}
