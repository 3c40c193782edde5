package stream

import (
	"net/http"

	"github.com/gin-contrib/sse"
)

type sseSender struct {
	w http.ResponseWriter
}

// NewSSESender writes events as server-sent events. The SSE event name is
// the event type and the data line is the whole JSON event.
func NewSSESender(w http.ResponseWriter) Sender {
	return &sseSender{w: w}
}

func (s *sseSender) Send(event Event) error {
	if err := sse.Encode(s.w, sse.Event{Event: event.Type, Data: event}); err != nil {
		return err
	}
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// PrepareSSE sets the headers a streaming response needs.
func PrepareSSE(w http.ResponseWriter) {
	header := w.Header()
	header.Set("Content-Type", sse.ContentType)
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
}
