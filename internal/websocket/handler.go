package websocket

import (
	"context"
	"strings"

	"ai-research-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

// Dispatcher receives the inbound frames that carry application commands.
// The research service implements it; the read loop stays transport-only.
type Dispatcher interface {
	HandleStart(ctx context.Context, payload []byte, conn Conn)
	HandleChat(ctx context.Context, message string, conn Conn)
}

const (
	startPrefix = "start "
	chatPrefix  = "chat "
)

// ServeWs owns a websocket connection for its whole lifetime: register,
// read frames until the peer goes away, unregister. Runs on the fiber
// handler goroutine; all writes go through the Manager's sender.
func ServeWs(m *Manager, d Dispatcher, log logger.ILogger, c *websocket.Conn) {
	m.Connect(c)
	defer m.Disconnect(c)

	for {
		messageType, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		text := string(data)
		switch {
		case text == pingPayload:
			// Answered by the sender so the pong cannot overtake
			// messages already queued.
			m.Enqueue(c, data)

		case strings.HasPrefix(text, startPrefix):
			d.HandleStart(context.Background(), []byte(strings.TrimPrefix(text, startPrefix)), c)

		case strings.HasPrefix(text, chatPrefix):
			d.HandleChat(context.Background(), strings.TrimPrefix(text, chatPrefix), c)

		default:
			log.Warn("WebsocketHandler", "Unrecognized frame", map[string]interface{}{
				"prefix": firstWord(text),
			})
		}
	}
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	if len(s) > 32 {
		return s[:32]
	}
	return s
}
