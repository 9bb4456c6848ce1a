package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
)

const heartbeatInterval = 25 * time.Second

// Subscriber is the subscribing half of the notification broker.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan domain.Notification, func())
}

type NotificationHandler struct {
	broker    Subscriber
	heartbeat time.Duration
}

func NewNotificationHandler(broker Subscriber) *NotificationHandler {
	return &NotificationHandler{broker: broker, heartbeat: heartbeatInterval}
}

// Stream sends admin notifications as server-sent events until the client
// disconnects.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	events, cancel := h.broker.Subscribe(r.Context())
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case n, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				logger.Errorf("encoding notification: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
