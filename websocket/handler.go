package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/hitscan/models"
	"golang.org/x/net/websocket"
)

const (
	sendChanSize    = 512
	receiveChanSize = 64
)

// Handler represents a realtime handler.
type Handler interface {
	// Handles a client connection.
	HandleConnect(conn *websocket.Conn)

	// Handles a client's disconnection.
	HandleDisconnect(error)

	// Handles a ping request.
	HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a request to join or create a world.
	HandleWorldJoin(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a request to delete the joined world.
	HandleWorldDelete(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a request to register a volume in the joined world.
	HandleVolumeAdd(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a request to replace the transform of a volume.
	HandleVolumeUpdateTransform(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a request to cast a ray against the volumes of the joined world.
	HandleRaycast(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a request to sample the noise of the joined world.
	HandleNoise(ctx context.Context, respond ResponseSender, msg Msg) error

	// Creates a message receiver used to receive incoming messages.
	Receiver() Receiver

	// Creates a message sender used to send messages.
	Sender() Sender

	// Closes the handler and releases its allocated resources.
	Close()

	// The time a client is idle before being disconnected.
	IdleTimeout() time.Duration

	// The currently joined world.
	CurrentWorld() *models.World

	GetClientID() string
}

// Handle runs h against conn until the client disconnects, stays idle for
// too long or ctx is canceled.
func Handle(ctx context.Context, conn *websocket.Conn, h Handler) {
	handler := handler{
		Conn:    conn,
		Handler: h,
	}

	handler.Handle(ctx)
}

type handler struct {
	Conn    *websocket.Conn
	Handler Handler

	sendChan       chan Msg
	receiveChan    chan Msg
	sender         Sender
	receiver       Receiver
	disconnectChan chan error
}

func (h *handler) Handle(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.Handler.HandleConnect(h.Conn)

	h.disconnectChan = make(chan error, 8)
	defer func() {
		for len(h.disconnectChan) != 0 {
			<-h.disconnectChan
		}
	}()

	var wg sync.WaitGroup

	h.sendChan = make(chan Msg, sendChanSize)
	h.sender = h.Handler.Sender()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startSending(ctx)
	}()

	h.receiveChan = make(chan Msg, receiveChanSize)
	h.receiver = h.Handler.Receiver()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startReceiving(ctx)
	}()

	idleTimeout := h.Handler.IdleTimeout()
	idleTimer := time.NewTimer(idleTimeout)
	defer idleTimer.Stop()

	responder := responseSender{send: h.send}

	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			// closing the connection unblocks the receiving go routine
			h.handleDisconnect(ctx.Err())

		case <-idleTimer.C:
			h.disconnect(errors.New("idle connection").WithTag("duration", idleTimeout))

		case msg := <-h.receiveChan:
			idleTimer.Stop()
			idleTimer.Reset(idleTimeout)

			if err := h.handleMessage(ctx, msg, responder); err != nil {
				h.disconnect(errors.New("handling message failed").Wrap(err))
			}

		case err := <-h.disconnectChan:
			h.handleDisconnect(err)
			if ctx.Err() == nil {
				// cancel context so go routines can cleanly exit
				cancel()
			}
		}
	}

	wg.Wait()
}

func (h *handler) send(msg Msg) {
	h.sendChan <- msg
}

func (h *handler) startSending(ctx context.Context) {
	defer func() {
		for len(h.sendChan) != 0 {
			<-h.sendChan
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-h.sendChan:
			if _, err := h.sender(msg); err != nil {
				h.disconnect(errors.New("sending message failed").Wrap(err))
				return
			}
		}
	}
}

func (h *handler) startReceiving(ctx context.Context) {
	for {
		msg, _, err := h.receiver()
		if err != nil {
			h.disconnect(errors.New("receiving message failed").Wrap(err))
			return
		}

		select {
		case <-ctx.Done():
			return
		case h.receiveChan <- msg:
		}
	}
}

func (h *handler) handleMessage(ctx context.Context, msg Msg, respond ResponseSender) error {
	switch msg.Type {
	case MsgTypePing:
		return h.Handler.HandlePing(ctx, respond, msg)

	case MsgTypeWorldJoin:
		return h.Handler.HandleWorldJoin(ctx, respond, msg)

	case MsgTypeWorldDelete:
		return h.Handler.HandleWorldDelete(ctx, respond, msg)

	case MsgTypeVolumeAdd:
		return h.Handler.HandleVolumeAdd(ctx, respond, msg)

	case MsgTypeVolumeUpdateTransform:
		return h.Handler.HandleVolumeUpdateTransform(ctx, respond, msg)

	case MsgTypeRaycast:
		return h.Handler.HandleRaycast(ctx, respond, msg)

	case MsgTypeNoise:
		return h.Handler.HandleNoise(ctx, respond, msg)

	default:
		logs.WithTag(clientIDTag, h.Handler.GetClientID()).
			WithTag("msg_type", msg.Type).
			Debug("unknown message type")

		respondError(respond, msg, errors.New("unknown message type").
			WithType(ErrTypeMsgUnknown).
			WithTag("msg_type", msg.Type))
		return nil
	}
}

func (h *handler) disconnect(err error) {
	select {
	case h.disconnectChan <- err:
	default:
	}
}

func (h *handler) handleDisconnect(err error) {
	h.Conn.Close()
	h.Handler.HandleDisconnect(err)
}

type responseSender struct {
	send func(Msg)
}

func (r responseSender) Send(msg Msg) {
	r.send(msg)
}

// respondError sends an error message answering req. The code of the error
// is its type.
func respondError(respond ResponseSender, req Msg, err error) {
	code := errors.Type(err)
	if code == "" {
		code = "internal"
	}

	msg, newErr := NewMsg(MsgTypeError, req.RequestID, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
	if newErr != nil {
		logs.WithTag("msg_type", req.Type).
			WithTag("request_id", req.RequestID).
			Warn(errors.New("creating error response failed").
				WithTag("code", code).
				Wrap(newErr))
		return
	}
	respond.Send(msg)
}
