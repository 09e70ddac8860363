package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"hotel-reservation-backend/config"
	"hotel-reservation-backend/internal/api"
	"hotel-reservation-backend/internal/booking"
	"hotel-reservation-backend/internal/db"
	"hotel-reservation-backend/internal/events"
	"hotel-reservation-backend/internal/lock"
	"hotel-reservation-backend/internal/notification"
	"hotel-reservation-backend/internal/store"
	"hotel-reservation-backend/internal/sweeper"
)

// timeoutLocker bounds how long a booking waits for its room-type lock.
type timeoutLocker struct {
	lock.Locker
	timeout time.Duration
}

func (l timeoutLocker) Lock(ctx context.Context, key string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.Locker.Lock(ctx, key)
}

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "hoteld ", log.LstdFlags)

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded from %s", configPath)

	rooms, err := cfg.Catalog()
	if err != nil {
		logger.Fatalf("invalid room catalog: %v", err)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Printf("%s database initialized", cfg.Database.Driver)

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.Booking.LockBackend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Booking.Redis.Addr,
			Password: cfg.Booking.Redis.Password,
			DB:       cfg.Booking.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			logger.Fatalf("redis lock backend unreachable at %s: %v", cfg.Booking.Redis.Addr, err)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Booking.Redis.KeyPrefix, cfg.Booking.LockTTL, 0)
		logger.Printf("using redis room-type locks at %s", cfg.Booking.Redis.Addr)
	}
	locker = timeoutLocker{Locker: locker, timeout: cfg.Booking.LockTimeout}

	// Event publishers
	var publishers []events.Publisher
	if cfg.Events.AMQP.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.Events.AMQP.URL, cfg.Events.AMQP.Queue)
		if err != nil {
			logger.Printf("rabbitmq publisher disabled: %v", err)
		} else {
			publishers = append(publishers, p)
			logger.Printf("publishing events to rabbitmq queue %s", cfg.Events.AMQP.Queue)
		}
	}
	if len(cfg.Events.Kafka.Brokers) > 0 {
		publishers = append(publishers, events.NewKafkaPublisher(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic))
		logger.Printf("publishing events to kafka topic %s", cfg.Events.Kafka.Topic)
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		publishers = append(publishers, notification.NewPushPublisher(appStore, webpushOptions))
	} else {
		logger.Println("VAPID keys not configured; web push disabled")
	}

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, cfg.Events.PublishTimeout, publishers...)
	pool.Start(ctx)

	engine := booking.NewEngine(appStore, rooms, locker, pool)

	if cfg.Sweeper.Enabled {
		sweep := sweeper.NewService(appStore, engine, cfg.Sweeper.Interval(), cfg.Sweeper.Grace())
		go sweep.Run(ctx)
	}

	// Initialize router
	router := api.NewRouter(api.NewHandler(engine, appStore, webpushOptions), cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}

	cancel()
	pool.Wait()
	pool.Close()

	logger.Println("Server gracefully stopped")
}
