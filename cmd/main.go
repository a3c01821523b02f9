package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/events"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/aukilabs/hitscan/featureflag"
	hhttp "github.com/aukilabs/hitscan/http"
	"github.com/aukilabs/hitscan/models"
	"github.com/aukilabs/hitscan/smoketest"
	hwebsocket "github.com/aukilabs/hitscan/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The Hitscan version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "hitscan_info",
		Help:        "Hitscan information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr               string        `cli:""        env:"HITSCAN_ADDR"                 help:"Listening address for client connections."`
	AdminAddr          string        `cli:""        env:"HITSCAN_ADMIN_ADDR"           help:"Admin listening address."`
	PublicEndpoint     string        `cli:""        env:"HITSCAN_PUBLIC_ENDPOINT"      help:"The public endpoint where this Hitscan server is reachable."`
	LogLevel           string        `cli:""        env:"HITSCAN_LOG_LEVEL"            help:"Log level (debug|info|warning|error)."`
	LogIndent          bool          `cli:""        env:"HITSCAN_LOG_INDENT"           help:"Indent logs."`
	DefaultSeed        int           `cli:""        env:"HITSCAN_DEFAULT_SEED"         help:"The noise seed of worlds created without an explicit seed."`
	ClientIdleTimeout  time.Duration `cli:",hidden" env:"HITSCAN_CLIENT_IDLE_TIMEOUT"  help:"Time until an idle client will be disconnected"`
	LogSummaryInterval time.Duration `cli:",hidden" env:"HITSCAN_LOG_SUMMARY_INTERVAL" help:"The duration between each log summary by connection."`
	Events             eventsConfig  `cli:",hidden" env:"-"                            help:"Event pusher configuration."`
	FeatureFlags       []string      `cli:",hidden" env:"HITSCAN_FEATURE_FLAGS"        help:"Comma separated feature flags"`
	Version            bool          `cli:""        env:"-"                            help:"Show version."`
	Help               bool          `cli:""        env:"-"                            help:"Show help."`
}

type eventsConfig struct {
	Endpoint      string        `cli:",hidden" env:"HITSCAN_EVENTS_ENDPOINT"       help:"Endpoint to where events are pushed."`
	FlushInterval time.Duration `cli:",hidden" env:"HITSCAN_EVENTS_FLUSH_INTERVAL" help:"The duration between each event flush."`
	BatchSize     int           `cli:",hidden" env:"HITSCAN_EVENTS_BATCH_SIZE"     help:"The maximum number of events sent at once."`
	QueueSize     int           `cli:",hidden" env:"HITSCAN_EVENTS_QUEUE_SIZE"     help:"The size of the queue where events are stored."`
}

func main() {
	conf := config{
		Addr:               ":4000",
		AdminAddr:          ":18190",
		PublicEndpoint:     "http://localhost:4000",
		LogLevel:           logs.InfoLevel.String(),
		ClientIdleTimeout:  time.Minute * 5,
		LogSummaryInterval: time.Minute,
		Events: eventsConfig{
			FlushInterval: events.DefaultFlushInterval,
			BatchSize:     events.DefaultBatchSize,
			QueueSize:     events.DefaultQueueSize,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts Hitscan server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if conf.Events.Endpoint != "" {
		eventsPusher := events.Pusher{
			Endpoint:      conf.Events.Endpoint,
			FlushInterval: conf.Events.FlushInterval,
			BatchSize:     conf.Events.BatchSize,
			QueueSize:     conf.Events.QueueSize,
			Transport:     metrics.HTTPTransport(http.DefaultTransport),
		}
		go eventsPusher.Start()
		defer eventsPusher.Close()

		eventsLogger := events.Logger{
			Pusher:           &eventsPusher,
			SDKType:          "hitscan",
			SDKVersionFamily: version,
		}
		logs.SetLogger(eventsLogger.Log)
	}

	flags := featureflag.New(conf.FeatureFlags)
	var worlds models.WorldStore

	readinessCheck := func() bool {
		return ctx.Err() == nil
	}

	service := newServiceMux(ctx, conf, &worlds, flags, readinessCheck)
	admin := newAdminMux(ctx, conf, readinessCheck)

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("endpoint", conf.PublicEndpoint).
		WithTag("feature_flags", flags.Strings()).
		Info("starting hitscan server")

	hhttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(service,
			hhttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: admin},
	)
}

// newServiceMux returns the routes served to clients.
func newServiceMux(ctx context.Context, conf config, worlds *models.WorldStore, flags featureflag.FeatureFlag, readinessCheck func() bool) *http.ServeMux {
	api := &hhttp.API{
		Worlds:       worlds,
		DefaultSeed:  conf.DefaultSeed,
		FeatureFlags: flags,
	}

	service := http.NewServeMux()
	service.Handle("/worlds", hhttp.HandleWithCORS(api))
	service.Handle("/worlds/", hhttp.HandleWithCORS(api))
	service.Handle("/health", hhttp.HandleWithCORS(http.HandlerFunc(hhttp.HandleHealthCheck)))
	service.Handle("/version", hhttp.HandleWithCORS(hhttp.HandleVersion(version)))
	service.Handle("/ready", hhttp.HandleWithCORS(hhttp.HandleReadyCheck(readinessCheck)))

	service.Handle("/", hhttp.HandleWithCORS(websocket.Server{
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			var rh hwebsocket.Handler = &hwebsocket.RealtimeHandler{
				ClientIdleTimeout: conf.ClientIdleTimeout,
				Worlds:            worlds,
				DefaultSeed:       conf.DefaultSeed,
				FeatureFlags:      flags,
			}
			h := hwebsocket.HandlerWithLogs(rh, conf.LogSummaryInterval)
			h = hwebsocket.HandlerWithMetrics(h, conf.PublicEndpoint)
			defer h.Close()

			hwebsocket.Handle(ctx, conn, h)
		},
	}))
	return service
}

// newAdminMux returns the routes served on the admin address. The smoke test
// dials the endpoint given in its request, so it is only reachable from there.
func newAdminMux(ctx context.Context, conf config, readinessCheck func() bool) *http.ServeMux {
	admin := http.NewServeMux()
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", hhttp.HandleHealthCheck)
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	admin.Handle("/debug/pprof/block", pprof.Handler("block"))
	admin.HandleFunc("/ready", hhttp.HandleReadyCheck(readinessCheck))
	admin.HandleFunc("/smoke-test", smoketest.HandleSmokeTest(ctx, smoketest.Options{
		Endpoint:  conf.PublicEndpoint,
		UserAgent: fmt.Sprintf("Hitscan %s", version),
	}))
	return admin
}

func validateConfig(conf config) error {
	if _, err := url.ParseRequestURI(conf.PublicEndpoint); err != nil {
		return errors.New("invalid public endpoint").Wrap(err)
	}

	if conf.ClientIdleTimeout <= 0 {
		return errors.New("client idle timeout must be greater than zero").
			WithTag("client_idle_timeout", conf.ClientIdleTimeout)
	}

	if conf.LogSummaryInterval <= 0 {
		return errors.New("log summary interval must be greater than zero").
			WithTag("log_summary_interval", conf.LogSummaryInterval)
	}

	return nil
}
