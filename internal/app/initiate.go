package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/cors"
	"github.com/segmentio/kafka-go"
	"github.com/shandysiswandi/webotp/internal/pkg/clock"
	"github.com/shandysiswandi/webotp/internal/pkg/config"
	"github.com/shandysiswandi/webotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/webotp/internal/pkg/hash"
	"github.com/shandysiswandi/webotp/internal/pkg/instrument"
	"github.com/shandysiswandi/webotp/internal/pkg/messaging"
	"github.com/shandysiswandi/webotp/internal/pkg/otp"
	"github.com/shandysiswandi/webotp/internal/pkg/router"
	"github.com/shandysiswandi/webotp/internal/pkg/uid"
	"github.com/shandysiswandi/webotp/internal/pkg/validator"
	"github.com/shandysiswandi/webotp/internal/simulator"
	"github.com/shandysiswandi/webotp/internal/webotp"
	"google.golang.org/api/option"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		Mask:             webotp.MaskCode,
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	a.totp = otp.NewTOTP(
		a.config.GetString("simulator.totp.issuer"),
		a.config.GetUint("simulator.totp.period"),
		a.config.GetUint("simulator.totp.skew"),
		otp.Digits(a.config.GetInt("simulator.totp.digits")),
	)
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")

	var pubsubOptions []option.ClientOption
	if v := strings.TrimSpace(a.config.GetString("messaging.pubsub.endpoint")); v != "" {
		pubsubOptions = append(pubsubOptions, option.WithEndpoint(v))
	}
	if a.config.GetBool("messaging.pubsub.without_auth") {
		pubsubOptions = append(pubsubOptions, option.WithoutAuthentication())
	}

	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			NSQDAddrs:    a.config.GetArray("messaging.nsq.nsqd_addrs"),
			LookupdAddrs: a.config.GetArray("messaging.nsq.lookupd_addrs"),
			Channel:      a.config.GetString("messaging.nsq.channel"),
		},
		NATS: messaging.NATSConfig{
			URL:        a.config.GetString("messaging.nats.url"),
			QueueGroup: a.config.GetString("messaging.nats.queue_group"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
			GroupID: a.config.GetString("messaging.kafka.group_id"),
			Dialer: &kafka.Dialer{
				ClientID:  a.config.GetString("messaging.kafka.client_id"),
				Timeout:   a.config.GetSecond("messaging.kafka.dial_timeout_seconds"),
				DualStack: true,
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
			Subscription:  a.config.GetString("messaging.pubsub.subscription"),
			ClientOptions: pubsubOptions,
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initSimulator() {
	a.platform = simulator.NewPlatform(simulator.PlatformConfig{
		Protocol:       a.config.GetString("simulator.page.protocol"),
		Host:           a.config.GetString("simulator.page.host"),
		OTPCredential:  a.config.GetBool("simulator.page.otp_credential"),
		CredentialsAPI: a.config.GetBool("simulator.page.credentials_api"),
		Cancellation:   a.config.GetBool("simulator.page.cancellation"),
		Timeout:        a.config.GetSecond("simulator.request_timeout_seconds"),
	}, a.uuid, a.clock)

	generator, err := simulator.NewGenerator(
		a.totp,
		a.config.GetString("simulator.totp.secret"),
		a.config.GetString("simulator.page.host"),
		a.clock,
	)
	if err != nil {
		slog.Error("failed to init sms generator", "error", err)
		os.Exit(1)
	}
	a.generator = generator

	var pubOpts []simulator.PublisherOption
	if secret := a.config.GetString("messaging.publish.signing_secret"); secret != "" {
		pubOpts = append(pubOpts, simulator.SignWith(hash.NewHMACSHA256(secret)))
	}

	a.hub = simulator.NewHub(a.config.GetSecond("app.server.sse.heartbeat_seconds"))
	publisher := simulator.NewPublisher(
		a.messaging,
		a.config.GetString("messaging.topics.events"),
		a.uuid,
		uint64(a.config.GetUint("messaging.publish.max_retries")),
		time.Duration(a.config.GetInt("messaging.publish.backoff_millis"))*time.Millisecond,
		pubOpts...,
	)

	bridge, err := webotp.New(a.platform, simulator.NewFanout(a.hub, publisher),
		webotp.WithLogger(slog.Default()),
		webotp.WithEventName(a.config.GetString("bridge.event_name")),
		webotp.WithTransports(a.config.GetArray("bridge.transports")...),
		webotp.WithGoroutine(a.goroutine),
		webotp.WithClock(a.clock),
		webotp.WithMeter(a.ins.Meter("webotp")),
	)
	if errors.Is(err, webotp.ErrUnsupported) {
		slog.Warn("simulated page has no OTPCredential, start requests will be refused")
		return
	}
	if err != nil {
		slog.Error("failed to init webotp bridge", "error", err)
		os.Exit(1)
	}
	a.bridge = bridge
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		UUID:       a.uuid,
		Instrument: a.ins,
		Welcome:    a.config.GetString("app.welcome"),
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}

	a.sseServer = &http.Server{
		Addr:              a.config.GetString("app.server.sse.address"),
		Handler:           routerWithCORS,
		ReadHeaderTimeout: a.config.GetSecond("app.server.sse.read_header_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
