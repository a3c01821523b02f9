package smoketest

import (
	"context"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/hitscan/geom"
	hwebsocket "github.com/aukilabs/hitscan/websocket"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	ErrTypeUnexpectedResponse = "unexpected-response"

	defaultTimeout = time.Second * 10
	smokeTestTag   = 0x5EED
)

var smokeTestCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "smoke_test_count_total",
	Help: "The total number of smoke tests by status.",
}, []string{"status"})

type Options struct {
	// The public endpoint of the server running the smoke test.
	Endpoint  string
	UserAgent string

	// Called with the result of each smoke test. Results are only logged
	// when nil.
	SendResult func(context.Context, Results) error
}

// Request is the optional body of a smoke test request.
type Request struct {
	// The endpoint to test. Defaults to the server endpoint.
	Endpoint string        `json:"endpoint,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

type Results struct {
	FromEndpoint    string  `json:"from_endpoint"`
	ToEndpoint      string  `json:"to_endpoint"`
	Status          string  `json:"status"`
	LatencyMilliSec float64 `json:"latency_ms"`
	Error           string  `json:"error,omitempty"`
}

type testCtxKey string

var testCtxKeyValue testCtxKey = "test-context"

type testContext struct {
	context.Context
	Cancel func()
}

// HandleSmokeTest starts a smoke test in the background and responds right
// away.
func HandleSmokeTest(ctx context.Context, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			logs.Warn(errors.New("reading body failed").Wrap(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var req Request
		if len(b) != 0 {
			if err := json.Unmarshal(b, &req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
		}
		if req.Endpoint == "" {
			req.Endpoint = opts.Endpoint
		}

		go func() {
			defer func() {
				// if context is of testContext
				// cancel context on exit to signal function exited
				// this is used for testing
				if tctx := ctx.Value(testCtxKeyValue); tctx != nil {
					testCtx := tctx.(testContext)
					if testCtx.Cancel != nil {
						testCtx.Cancel()
					}
				}
			}()

			res, err := RunSmokeTest(ctx, RunSmokeTestOptions{
				FromEndpoint: opts.Endpoint,
				ToEndpoint:   req.Endpoint,
				UserAgent:    opts.UserAgent,
				Timeout:      req.Timeout,
			})
			smokeTestCount.With(prometheus.Labels{"status": res.Status}).Inc()

			entry := logs.WithTag("from_endpoint", res.FromEndpoint).
				WithTag("to_endpoint", res.ToEndpoint).
				WithTag("latency_ms", res.LatencyMilliSec)
			if err != nil {
				entry.Warn(err)
			} else {
				entry.Info("smoke test succeeded")
			}

			if opts.SendResult == nil {
				return
			}
			if err := opts.SendResult(ctx, res); err != nil {
				logs.WithTag("from_endpoint", opts.Endpoint).
					WithTag("to_endpoint", req.Endpoint).
					Warn(errors.New("sending smoke test result failed").Wrap(err))
			}
		}()

		w.WriteHeader(http.StatusOK)
	}
}

type RunSmokeTestOptions struct {
	FromEndpoint string
	ToEndpoint   string
	UserAgent    string
	Timeout      time.Duration
}

// RunSmokeTest connects to the realtime endpoint of a server, creates a world,
// registers a volume, casts a ray through it and checks the hit. The created
// world is deleted before returning.
func RunSmokeTest(ctx context.Context, opts RunSmokeTestOptions) (Results, error) {
	res := Results{
		FromEndpoint: opts.FromEndpoint,
		ToEndpoint:   opts.ToEndpoint,
		Status:       StatusFailed,
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	start := time.Now()
	if err := runSmokeTest(ctx, opts, timeout); err != nil {
		err = errors.New("smoke test failed").
			WithTag("to_endpoint", opts.ToEndpoint).
			Wrap(err)
		res.Error = err.Error()
		return res, err
	}

	res.Status = StatusSuccess
	res.LatencyMilliSec = float64(time.Since(start)) / float64(time.Millisecond)
	return res, nil
}

func runSmokeTest(ctx context.Context, opts RunSmokeTestOptions, timeout time.Duration) error {
	origin := opts.FromEndpoint
	if origin == "" {
		origin = "http://localhost"
	}

	config, err := websocket.NewConfig(websocketURL(opts.ToEndpoint), origin)
	if err != nil {
		return errors.New("creating websocket config failed").Wrap(err)
	}
	config.Header.Set("User-Agent", opts.UserAgent)
	config.Header.Set(hwebsocket.HeaderClientID, uuid.NewString())
	config.Dialer = &net.Dialer{Timeout: timeout}

	conn, err := websocket.DialConfig(config)
	if err != nil {
		return errors.New("dialing websocket failed").Wrap(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	c := client{
		conn:    conn,
		send:    hwebsocket.NewSender(conn),
		receive: hwebsocket.NewReceiver(conn),
	}

	var join hwebsocket.WorldJoinResponse
	if err := c.request(hwebsocket.MsgTypeWorldJoin, hwebsocket.MsgTypeWorldJoinResponse, hwebsocket.WorldJoinRequest{}, &join); err != nil {
		return err
	}
	defer c.request(hwebsocket.MsgTypeWorldDelete, hwebsocket.MsgTypeWorldDeleteResponse, nil, nil)

	var added hwebsocket.VolumeAddResponse
	if err := c.request(hwebsocket.MsgTypeVolumeAdd, hwebsocket.MsgTypeVolumeAddResponse, hwebsocket.VolumeAddRequest{
		Min: geom.Vector3f{X: -1, Y: -1, Z: -1},
		Max: geom.Vector3f{X: 1, Y: 1, Z: 1},
		Tag: smokeTestTag,
	}, &added); err != nil {
		return err
	}

	var raycast hwebsocket.RaycastResponse
	if err := c.request(hwebsocket.MsgTypeRaycast, hwebsocket.MsgTypeRaycastResponse, hwebsocket.RaycastRequest{
		Origin:    geom.Vector3f{Z: -10},
		Direction: geom.Vector3f{Z: 1},
	}, &raycast); err != nil {
		return err
	}

	if !raycast.Found ||
		raycast.Hit == nil ||
		raycast.Handle != added.Handle ||
		raycast.Tag != smokeTestTag ||
		math.Abs(float64(raycast.Distance)-9) > 0.001 {
		return errors.New("unexpected raycast result").
			WithType(ErrTypeUnexpectedResponse).
			WithTag("world_id", join.WorldID).
			WithTag("raycast", raycast)
	}
	return nil
}

type client struct {
	conn          *websocket.Conn
	send          hwebsocket.Sender
	receive       hwebsocket.Receiver
	lastRequestID uint32
}

func (c *client) request(reqType, resType hwebsocket.MsgType, req, res any) error {
	c.lastRequestID++

	msg, err := hwebsocket.NewMsg(reqType, c.lastRequestID, req)
	if err != nil {
		return err
	}

	if _, err := c.send(msg); err != nil {
		return errors.New("sending request failed").
			WithTag("msg_type", reqType).
			Wrap(err)
	}

	for {
		resMsg, _, err := c.receive()
		if err != nil {
			return errors.New("receiving response failed").
				WithTag("msg_type", reqType).
				Wrap(err)
		}

		if resMsg.RequestID != c.lastRequestID {
			continue
		}

		if resMsg.Type != resType {
			var errRes hwebsocket.ErrorResponse
			resMsg.DataTo(&errRes)

			return errors.New("unexpected response").
				WithType(ErrTypeUnexpectedResponse).
				WithTag("msg_type", resMsg.Type).
				WithTag("expected_msg_type", resType).
				WithTag("code", errRes.Code)
		}

		if res == nil {
			return nil
		}
		return resMsg.DataTo(res)
	}
}

func websocketURL(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")

	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")

	default:
		return endpoint
	}
}
