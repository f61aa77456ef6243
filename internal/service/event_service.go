package service

import (
	"context"

	"github.com/YatinKare/DesignDual/internal/model"
	"github.com/YatinKare/DesignDual/internal/repository"
	"github.com/YatinKare/DesignDual/internal/websocket"
)

// EventService persists grading progress events and mirrors each one to live
// WebSocket subscribers. The database write is the source of truth; the
// broadcast is best effort.
type EventService struct {
	events *repository.EventRepository
	hub    *websocket.Hub
}

func NewEventService(events *repository.EventRepository, hub *websocket.Hub) *EventService {
	return &EventService{
		events: events,
		hub:    hub,
	}
}

// Append persists one event, then fans it out to subscribers.
func (s *EventService) Append(ctx context.Context, event *model.GradingEvent) error {
	if err := s.events.Append(ctx, event); err != nil {
		return err
	}
	s.hub.BroadcastEvent(event)
	return nil
}
