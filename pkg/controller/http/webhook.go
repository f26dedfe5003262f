package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
)

// webhookEvent is one CRM change notification
type webhookEvent struct {
	EventType      string          `json:"eventType"`
	SubscriptionID json.Number     `json:"subscriptionId,omitempty"`
	ObjectID       json.Number     `json:"objectId,omitempty"`
	PortalID       json.Number     `json:"portalId,omitempty"`
	PropertyName   string          `json:"propertyName,omitempty"`
	PropertyValue  json.RawMessage `json:"propertyValue,omitempty"`
}

type webhookResponse struct {
	Received bool `json:"received"`
	Count    int  `json:"count"`
}

// webhookHandler acknowledges CRM notifications. The CRM posts either a
// single event or an array of events; both are logged and otherwise ignored.
func webhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		badRequest(w, r, goerr.Wrap(err, "failed to read webhook body"))
		return
	}

	var events []webhookEvent
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		err = json.Unmarshal(trimmed, &events)
	default:
		var ev webhookEvent
		err = json.Unmarshal(trimmed, &ev)
		events = []webhookEvent{ev}
	}
	if err != nil {
		badRequest(w, r, goerr.Wrap(err, "invalid webhook payload"))
		return
	}

	for _, ev := range events {
		switch ev.EventType {
		case "contact.creation", "contact.deletion", "deal.creation", "deal.propertyChange", "contact.propertyChange":
			logging.From(ctx).Info("CRM webhook received",
				"event_type", ev.EventType,
				"object_id", ev.ObjectID.String(),
				"portal_id", ev.PortalID.String(),
				"property", ev.PropertyName,
			)
		default:
			logging.From(ctx).Info("unhandled CRM webhook event", "event_type", ev.EventType)
		}
	}

	writeJSON(ctx, w, http.StatusOK, webhookResponse{Received: true, Count: len(events)})
}
