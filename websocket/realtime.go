package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/hitscan/featureflag"
	"github.com/aukilabs/hitscan/geom"
	"github.com/aukilabs/hitscan/models"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

// HeaderClientID is the header where clients can pass their identifier.
const HeaderClientID = "X-Hitscan-Client-Id"

// RealtimeHandler serves the requests of a single client connection against
// the worlds it joins.
type RealtimeHandler struct {
	// The time a client is idle before being disconnected.
	ClientIdleTimeout time.Duration

	// The store that contains all the server worlds.
	Worlds *models.WorldStore

	// The seed of the worlds created without an explicit seed.
	DefaultSeed int

	FeatureFlags featureflag.FeatureFlag

	conn     *websocket.Conn
	clientID string

	worldMutex   sync.RWMutex
	currentWorld *models.World
}

func (h *RealtimeHandler) HandleConnect(conn *websocket.Conn) {
	h.conn = conn

	if req := conn.Request(); req != nil {
		h.clientID = req.Header.Get(HeaderClientID)
	}
	if h.clientID == "" {
		h.clientID = uuid.NewString()
	}
}

func (h *RealtimeHandler) HandleDisconnect(_ error) {
	h.setCurrentWorld(nil)
}

func (h *RealtimeHandler) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	return h.respond(respond, MsgTypePingResponse, msg, nil)
}

func (h *RealtimeHandler) HandleWorldJoin(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req WorldJoinRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	h.setCurrentWorld(nil)

	var world *models.World
	if req.WorldID != "" {
		w, err := h.Worlds.Get(req.WorldID)
		if err != nil {
			respondError(respond, msg, err)
			return nil
		}
		world = w
	} else {
		seed := h.DefaultSeed
		if req.Seed != nil {
			seed = *req.Seed
		}

		world = models.NewWorld(seed, h.FeatureFlags)
		h.Worlds.Add(world)
	}

	h.setCurrentWorld(world)

	return h.respond(respond, MsgTypeWorldJoinResponse, msg, WorldJoinResponse{
		WorldID: world.ID,
		Seed:    world.Noise.Seed(),
	})
}

func (h *RealtimeHandler) HandleWorldDelete(ctx context.Context, respond ResponseSender, msg Msg) error {
	world, ok := h.joinedWorld(respond, msg)
	if !ok {
		return nil
	}

	if err := h.Worlds.Remove(world.ID); err != nil {
		respondError(respond, msg, err)
		return nil
	}
	h.setCurrentWorld(nil)

	return h.respond(respond, MsgTypeWorldDeleteResponse, msg, nil)
}

func (h *RealtimeHandler) HandleVolumeAdd(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req VolumeAddRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	world, ok := h.joinedWorld(respond, msg)
	if !ok {
		return nil
	}

	handle, err := world.Volumes.Create(req.Min, req.Max, req.Tag)
	if err != nil {
		respondError(respond, msg, err)
		return nil
	}

	return h.respond(respond, MsgTypeVolumeAddResponse, msg, VolumeAddResponse{
		Handle: handle,
	})
}

func (h *RealtimeHandler) HandleVolumeUpdateTransform(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req VolumeUpdateTransformRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	world, ok := h.joinedWorld(respond, msg)
	if !ok {
		return nil
	}

	if req.Transform == nil {
		respondError(respond, msg, errors.New("transform is missing").
			WithType(ErrTypeMsgInvalid).
			WithTag("handle", req.Handle))
		return nil
	}

	if err := world.Volumes.UpdateTransform(req.Handle, *req.Transform); err != nil {
		respondError(respond, msg, err)
		return nil
	}

	return h.respond(respond, MsgTypeVolumeUpdateTransformResponse, msg, nil)
}

func (h *RealtimeHandler) HandleRaycast(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req RaycastRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	world, ok := h.joinedWorld(respond, msg)
	if !ok {
		return nil
	}

	var res RaycastResponse
	if hit, ok := world.Volumes.Raycast(geom.NewRay(req.Origin, req.Direction)); ok {
		res.Found = true
		res.Hit = &hit
	}

	return h.respond(respond, MsgTypeRaycastResponse, msg, res)
}

func (h *RealtimeHandler) HandleNoise(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req NoiseRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	world, ok := h.joinedWorld(respond, msg)
	if !ok {
		return nil
	}

	value, err := world.Noise.Perlin2D(req.X, req.Y, req.Frequency, req.Octaves)
	if err != nil {
		respondError(respond, msg, err)
		return nil
	}

	return h.respond(respond, MsgTypeNoiseResponse, msg, NoiseResponse{
		Value: value,
	})
}

func (h *RealtimeHandler) Receiver() Receiver {
	return NewReceiver(h.conn)
}

func (h *RealtimeHandler) Sender() Sender {
	return NewSender(h.conn)
}

func (h *RealtimeHandler) Close() {
}

func (h *RealtimeHandler) IdleTimeout() time.Duration {
	return h.ClientIdleTimeout
}

func (h *RealtimeHandler) CurrentWorld() *models.World {
	h.worldMutex.RLock()
	defer h.worldMutex.RUnlock()

	return h.currentWorld
}

func (h *RealtimeHandler) setCurrentWorld(w *models.World) {
	h.worldMutex.Lock()
	defer h.worldMutex.Unlock()

	h.currentWorld = w
}

func (h *RealtimeHandler) GetClientID() string {
	return h.clientID
}

func (h *RealtimeHandler) joinedWorld(respond ResponseSender, msg Msg) (*models.World, bool) {
	world := h.CurrentWorld()
	if world == nil {
		respondError(respond, msg, errors.New("world not joined").
			WithType(ErrTypeWorldNotJoined).
			WithTag("msg_type", msg.Type))
		return nil, false
	}
	return world, true
}

func (h *RealtimeHandler) respond(respond ResponseSender, t MsgType, req Msg, data any) error {
	msg, err := NewMsg(t, req.RequestID, data)
	if err != nil {
		return err
	}

	respond.Send(msg)
	return nil
}
