package websocket

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"golang.org/x/net/websocket"
)

const (
	clientIDTag = "client_id"
	worldIDTag  = "world_id"
)

// HandlerWithLogs decorates h with connection logs, per message debug logs
// and a periodic summary of the received message types.
func HandlerWithLogs(h Handler, summaryInterval time.Duration) Handler {
	ctx, cancel := context.WithCancel(context.Background())

	handler := &handlerWithLogs{
		Handler:            h,
		summaryInterval:    summaryInterval,
		closeSummaryWorker: cancel,
		counter:            make(map[string]int),
	}

	go handler.startSummaryWorker(ctx)
	return handler
}

type handlerWithLogs struct {
	Handler

	originalRequest *http.Request

	summaryInterval    time.Duration
	closeSummaryWorker func()
	counterMutex       sync.Mutex
	counter            map[string]int
}

func (h *handlerWithLogs) HandleConnect(conn *websocket.Conn) {
	h.Handler.HandleConnect(conn)
	h.originalRequest = conn.Request()

	logs.WithTag(clientIDTag, h.GetClientID()).
		WithTag("user_agent", h.userAgent()).
		Info("new client is connected")
}

func (h *handlerWithLogs) HandleWorldJoin(ctx context.Context, respond ResponseSender, msg Msg) error {
	if err := h.Handler.HandleWorldJoin(ctx, respond, msg); err != nil {
		return err
	}

	world := h.CurrentWorld()
	if world == nil {
		logs.WithTag(clientIDTag, h.GetClientID()).
			WithTag("request_id", msg.RequestID).
			Info("client failed to join a world")
		return nil
	}

	logs.WithTag(clientIDTag, h.GetClientID()).
		WithTag(worldIDTag, world.ID).
		WithTag("seed", world.Noise.Seed()).
		Info("client joined a world")
	return nil
}

func (h *handlerWithLogs) HandleWorldDelete(ctx context.Context, respond ResponseSender, msg Msg) error {
	world := h.CurrentWorld()

	if err := h.Handler.HandleWorldDelete(ctx, respond, msg); err != nil {
		return err
	}

	if world != nil && h.CurrentWorld() == nil {
		logs.WithTag(clientIDTag, h.GetClientID()).
			WithTag(worldIDTag, world.ID).
			Info("client deleted a world")
	}
	return nil
}

func (h *handlerWithLogs) HandleDisconnect(err error) {
	h.Handler.HandleDisconnect(err)

	logs.WithTag(clientIDTag, h.GetClientID()).
		WithTag("reason", err).
		Info("client disconnected")
}

func (h *handlerWithLogs) Receiver() Receiver {
	receive := h.Handler.Receiver()

	return func() (Msg, int, error) {
		msg, n, err := receive()
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
			logs.WithTag(clientIDTag, h.GetClientID()).
				WithTag(worldIDTag, h.worldID()).
				Error(errors.New("receiving message failed").Wrap(err))
		} else if err == nil {
			logs.WithTag(clientIDTag, h.GetClientID()).
				WithTag(worldIDTag, h.worldID()).
				WithTag("msg_type", msg.Type).
				WithTag("request_id", msg.RequestID).
				Debug("message received")
			h.incCounter(string(msg.Type))
		}
		return msg, n, err
	}
}

func (h *handlerWithLogs) Sender() Sender {
	send := h.Handler.Sender()

	return func(msg Msg) (int, error) {
		n, err := send(msg)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			logs.WithTag(clientIDTag, h.GetClientID()).
				WithTag(worldIDTag, h.worldID()).
				WithTag("msg_type", msg.Type).
				Error(errors.New("sending message failed").Wrap(err))
		} else if err == nil {
			logs.WithTag(clientIDTag, h.GetClientID()).
				WithTag(worldIDTag, h.worldID()).
				WithTag("msg_type", msg.Type).
				WithTag("request_id", msg.RequestID).
				Debug("message sent")
		}
		return n, err
	}
}

func (h *handlerWithLogs) Close() {
	h.Handler.Close()
	h.closeSummaryWorker()
	h.logSummary()
}

func (h *handlerWithLogs) startSummaryWorker(ctx context.Context) {
	ticker := time.NewTicker(h.summaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			h.logSummary()
		}
	}
}

func (h *handlerWithLogs) incCounter(msgType string) {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	h.counter[msgType]++
}

func (h *handlerWithLogs) logSummary() {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	if len(h.counter) == 0 {
		return
	}

	entry := logs.
		WithTag(clientIDTag, h.GetClientID()).
		WithTag(worldIDTag, h.worldID()).
		WithTag("time_interval", h.summaryInterval)

	for k, v := range h.counter {
		entry = entry.WithTag(k, v)
		delete(h.counter, k)
	}

	entry.Info("inbound message summary")
}

func (h *handlerWithLogs) worldID() string {
	if w := h.CurrentWorld(); w != nil {
		return w.ID
	}
	return ""
}

func (h *handlerWithLogs) userAgent() string {
	if h.originalRequest == nil {
		return ""
	}
	return h.originalRequest.UserAgent()
}
