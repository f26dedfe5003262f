package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/secmon-lab/talentbridge/pkg/service/activity"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
)

const heartbeatInterval = 30 * time.Second

// eventsHandler streams stage change events as server-sent events until
// the client goes away
func eventsHandler(hub *activity.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rc := http.NewResponseController(w)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		ch := hub.Subscribe()
		defer hub.Unsubscribe(ch)

		if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			logging.From(ctx).Warn("event stream cannot be flushed", "error", err)
			return
		}

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}

			case ev, ok := <-ch:
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					logging.From(ctx).Error("failed to marshal stage change event", "error", err)
					continue
				}
				if _, err := fmt.Fprintf(w, "id: %s\nevent: stage_change\ndata: %s\n\n", ev.ID, data); err != nil {
					return
				}
			}

			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
