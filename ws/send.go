package ws

import (
	"encoding/json"
	"log/slog"
)

// safeSend sends data to a channel without panicking if the channel is closed.
// If the channel is full or closed, the send is skipped.
func safeSend(ch chan []byte, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("send on closed client channel", "tag", "ws", "panic", r)
		}
	}()
	select {
	case ch <- data:
	default:
	}
}

func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshaling message", "tag", "ws", "err", err)
		return
	}
	safeSend(c.Send, data)
}

func (c *Client) sendError(message string) {
	c.sendJSON(ErrorMsg{Type: "error", Message: message})
}
