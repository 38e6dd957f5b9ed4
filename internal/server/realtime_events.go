package server

import (
	"context"
	"time"

	"musefeed/internal/notifications"
	"musefeed/internal/observability"
)

// publishTimeout bounds a realtime publish so a slow Redis never stalls a request.
const publishTimeout = 2 * time.Second

// publishBroadcastEvent fans a mutation out to every WebSocket client. With
// Redis the event goes through pub/sub so every replica delivers it; without
// it only local clients are reached. Failures are logged and never fail the request.
func (s *Server) publishBroadcastEvent(ctx context.Context, eventType string, payload map[string]any) {
	message, err := notifications.Event{Type: eventType, Payload: payload}.Encode()
	if err != nil {
		observability.RealtimeEvents.WithLabelValues(eventType, "encode_failed").Inc()
		observability.Logger.ErrorContext(ctx, "failed to marshal realtime event",
			"event_type", eventType, "error", err)
		return
	}

	if s.notifier == nil {
		s.hub.BroadcastAll(message)
		observability.RealtimeEvents.WithLabelValues(eventType, "local").Inc()
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.notifier.PublishBroadcast(pubCtx, message); err != nil {
		observability.RealtimeEvents.WithLabelValues(eventType, "failed").Inc()
		observability.Logger.WarnContext(ctx, "failed to publish realtime event",
			"event_type", eventType, "error", err)
		return
	}
	observability.RealtimeEvents.WithLabelValues(eventType, "published").Inc()
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
