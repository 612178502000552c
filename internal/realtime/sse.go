package realtime

import (
	"net/http"
	"strings"
	"time"
)

// ServeSSE streams events to the viewer as a text/event-stream until the
// request is cancelled or the hub stops
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, viewer Viewer) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// the stream outlives the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	client := NewClient(viewer)
	hub.Register(client)
	defer hub.Unregister(client)

	_, _ = w.Write(formatSSEMessage("connected", `{"status":"connected"}`))
	flusher.Flush()

	ticker := time.NewTicker(keepalivePeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(formatSSEMessage(msg.Event, string(msg.Data))); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// formatSSEMessage formats an event; each line of data gets its own
// "data: " prefix
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteString("\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits on \n, dropping \r and a trailing empty line
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
