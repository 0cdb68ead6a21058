package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"teamspace/domain"
	"teamspace/domain/event"
	"teamspace/runtime"
)

// PresencePayload announces connections and users coming and going.
type PresencePayload struct {
	Type         string    `json:"Type"`
	ConnectionID string    `json:"ConnectionId,omitempty"`
	UserID       string    `json:"UserId"`
	Name         string    `json:"Name"`
	Timestamp    time.Time `json:"Timestamp"`
}

// streamEvents holds a server-sent events stream open for the caller.
// The connection starts in the general chat group, other groups are joined through the membership routes.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "streaming unsupported"})
		return
	}

	claims := identity(r)
	name := claims.Name
	if name == "" {
		name = claims.UserID
	}
	connectionID := s.newID()

	conn := s.hub.Connect(connectionID, claims.UserID, s.cfg.ConnectionBuffer)
	_ = s.hub.JoinGroup(connectionID, domain.GeneralChatGroup)
	s.presence.Set(connectionID, name)
	defer func() {
		s.hub.Disconnect(connectionID)
		s.presence.Remove(connectionID)
		s.hub.SendToAll(event.UserLeftEvent, PresencePayload{
			Type: event.UserLeftEvent, UserID: claims.UserID, Name: name, Timestamp: time.Now().UTC(),
		})
		s.log.Info("Stream closed", "connection_id", connectionID, "user_id", claims.UserID)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	now := time.Now().UTC()
	connected, _ := json.Marshal(PresencePayload{
		Type: event.ConnectedEvent, ConnectionID: connectionID, UserID: claims.UserID, Name: name, Timestamp: now,
	})
	if err := writeEvent(w, runtime.Envelope{Event: event.ConnectedEvent, Data: connected, At: now}); err != nil {
		return
	}
	flusher.Flush()
	s.hub.SendToAll(event.UserJoinedEvent, PresencePayload{
		Type: event.UserJoinedEvent, UserID: claims.UserID, Name: name, Timestamp: now,
	})
	s.log.Info("Stream opened", "connection_id", connectionID, "user_id", claims.UserID)

	heartbeat := time.NewTicker(s.cfg.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case envelope, open := <-conn.Outbound:
			if !open {
				// Replaced by a newer connection with the same id
				return
			}
			if err := writeEvent(w, envelope); err != nil {
				s.log.Debug("Stream write failed", "connection_id", connectionID, "error", err)
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, envelope runtime.Envelope) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", envelope.Event, envelope.Data)
	return err
}
