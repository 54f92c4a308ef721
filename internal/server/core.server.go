package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notification-relay/internal/broker"
	"notification-relay/internal/config"
	"notification-relay/internal/delivery"
	"notification-relay/internal/domain"
	hrest "notification-relay/internal/handler/http"
	"notification-relay/internal/repository"
	"notification-relay/internal/router"
	"notification-relay/internal/usecase"
	"notification-relay/pkg/kafka"
)

// Server owns every process-lifetime resource: the HTTP listener, the
// consumer's broker client, the DLQ producer, and the optional stores.
type Server struct {
	httpServer *http.Server
	consumer   *kafka.QueueConsumer
	forwarder  *kafka.DLQForwarder
	dbpool     *pgxpool.Pool
	rdb        *redis.Client
	logger     *zap.Logger

	consumerDone   chan struct{}
	cancelConsumer context.CancelFunc
}

func New(cfg config.AppConfig, logger *zap.Logger) (*Server, error) {
	// --- Optional delivery audit store ---
	var dbpool *pgxpool.Pool
	var recorder broker.DeliveryRecorder
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		dbpool = pool
		recorder = repository.NewDeliveryLogRepo(pool)
		logger.Info("delivery audit log enabled")
	}

	// --- Redis (rate limiting) ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	// --- Publish path ---
	factory := kafka.NewSessionFactory(cfg.KafkaBrokers)
	publisher := broker.NewPublisher(factory, cfg.PublishAckTimeout, logger)
	relay := usecase.NewRelay(publisher, cfg.QueueNameBackend, cfg.QueueNameAPIM, logger)

	// --- Consume path ---
	forwarder, err := kafka.NewDLQForwarder(cfg.KafkaBrokers)
	if err != nil {
		return nil, err
	}
	senders := map[string]broker.Sender{
		domain.ChannelSMS:   delivery.NewSMSSender(cfg.SMSGatewayURL, cfg.SMSApplicationID, cfg.SMSPassword, logger),
		domain.ChannelEmail: delivery.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS, logger),
	}
	dispatcher := broker.NewConsumer(senders, forwarder, recorder, logger)
	consumer, err := kafka.NewQueueConsumer(
		cfg.KafkaBrokers,
		cfg.ConsumerGroup,
		[]string{cfg.QueueNameBackend, cfg.QueueNameAPIM},
		dispatcher,
		logger,
	)
	if err != nil {
		forwarder.Close()
		return nil, err
	}

	// --- HTTP ---
	restHandler := hrest.NewRelayHandler(relay, logger)
	r := chi.NewRouter()
	r = router.SetupRoutes(r, restHandler, cfg.Token, rdb).(*chi.Mux)

	return &Server{
		httpServer: &http.Server{Addr: cfg.HTTPAddr, Handler: r},
		consumer:   consumer,
		forwarder:  forwarder,
		dbpool:     dbpool,
		rdb:        rdb,
		logger:     logger,
	}, nil
}

// Start runs the consumer in the background and blocks serving HTTP.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelConsumer = cancel
	s.consumerDone = make(chan struct{})

	go func() {
		defer close(s.consumerDone)
		if err := s.consumer.Start(ctx); err != nil {
			s.logger.Error("consumer stopped with error", zap.Error(err))
		}
	}()

	s.logger.Info("HTTP server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops intake first, then tears down the consumer subscriptions
// and broker clients. In-flight deliveries are abandoned; their messages
// stay queued until acknowledged.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	if s.cancelConsumer != nil {
		s.cancelConsumer()
		select {
		case <-s.consumerDone:
		case <-ctx.Done():
		}
	}
	if cerr := s.consumer.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if cerr := s.forwarder.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if s.dbpool != nil {
		s.dbpool.Close()
	}
	if cerr := s.rdb.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
