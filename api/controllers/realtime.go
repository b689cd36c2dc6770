package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/printlink/printlink-backend/api/responses"
	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/pkg/enums"
	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/realtime"
)

const sseHeartbeatInterval = 25 * time.Second

// RealtimeSubscribe streams events for the requested channels over SSE.
// Channels are passed as a comma-separated `channels` query parameter.
func RealtimeSubscribe(hub *realtime.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("channels"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "channels query parameter required"))
			return
		}
		channels := strings.Split(raw, ",")
		actor := actorFromContext(r.Context())
		for i, channel := range channels {
			channels[i] = strings.TrimSpace(channel)
			if err := authorizeChannel(actor, channels[i]); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		conn := hub.NewConnection()
		for _, channel := range channels {
			hub.Subscribe(conn, channel)
		}
		defer hub.Disconnect(conn)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		heartbeat := time.NewTicker(sseHeartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			case evt, open := <-conn.Events():
				if !open {
					return
				}
				data, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Name, data)
				flusher.Flush()
			}
		}
	}
}

// authorizeChannel gates channel membership by role. Admins see everything;
// print centers their own dashboard channel; every authenticated caller may
// follow order channels (order-level detail stays behind the tracking
// endpoints).
func authorizeChannel(actor assignments.Actor, channel string) error {
	if channel == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "empty channel name")
	}
	if actor.Role == enums.RoleAdmin {
		return nil
	}
	switch {
	case channel == realtime.AdminChannel:
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin channel requires admin role")
	case strings.HasPrefix(channel, "center:"):
		if actor.Role == enums.RolePrintCenter && actor.CenterID != nil && channel == realtime.CenterChannel(*actor.CenterID) {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to join this center channel")
	case strings.HasPrefix(channel, "order:"):
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown channel name")
	}
}
