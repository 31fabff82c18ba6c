package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/flightdesk/flightdesk/internal/auth"
	"github.com/flightdesk/flightdesk/internal/booking"
	"github.com/flightdesk/flightdesk/internal/cache"
	"github.com/flightdesk/flightdesk/internal/events"
	"github.com/flightdesk/flightdesk/internal/handler"
	"github.com/flightdesk/flightdesk/internal/ratelimit"
	"github.com/flightdesk/flightdesk/internal/upstream"
)

type Config struct {
	Port         string
	FlightsURL   string
	BookingsURL  string
	PaymentsURL  string
	JWTSecret    string
	CacheEnabled bool
	RedisHost    string
	RedisPort    string
	RedisTTL     time.Duration
	KafkaBrokers []string
	EventsTopic  string
}

func main() {
	cfg := loadConfig()
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	rateLimiter := ratelimit.NewServiceLimiterWithDefaults()
	rateLimiter.SetServiceLimit(upstream.ServiceFlights, 20, 30)
	rateLimiter.SetServiceLimit(upstream.ServiceBookings, 10, 20)
	rateLimiter.SetServiceLimit(upstream.ServicePayments, 10, 20)

	client := upstream.NewClient(upstream.Config{
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		RetryDelays: []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
		},
		RateLimiter: rateLimiter,
	})
	flightsClient := upstream.NewFlightsClient(cfg.FlightsURL, client)
	bookingsClient := upstream.NewBookingsClient(cfg.BookingsURL, client)
	paymentsClient := upstream.NewPaymentsClient(cfg.PaymentsURL, client)

	var flightCache cache.Cache
	if cfg.CacheEnabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host: cfg.RedisHost,
			Port: cfg.RedisPort,
			TTL:  cfg.RedisTTL,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		flightCache = redisCache
		log.Printf("Redis cache enabled (host: %s:%s, TTL: %v)", cfg.RedisHost, cfg.RedisPort, cfg.RedisTTL)
	} else {
		flightCache = cache.NewNoOpCache()
		log.Println("Cache disabled")
	}

	var producer events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaProducer := events.NewKafkaProducer(cfg.KafkaBrokers)
		defer kafkaProducer.Close()
		producer = kafkaProducer
		log.Printf("Kafka events enabled (brokers: %v, topic: %s)", cfg.KafkaBrokers, cfg.EventsTopic)
	} else {
		log.Println("Kafka events disabled")
	}

	bookingService := booking.NewService(bookingsClient, paymentsClient, nil, producer, booking.Config{
		EventsTopic: cfg.EventsTopic,
	})

	verifier := auth.NewVerifier(cfg.JWTSecret)
	searchHandler := handler.NewSearchHandler(flightsClient, flightCache)
	bookingHandler := handler.NewBookingHandler(bookingService, verifier)

	api := e.Group("/api/v1")
	api.GET("/flights", searchHandler.Search)
	api.POST("/bookings", bookingHandler.Create)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.POST("/bookings/:id/payments", bookingHandler.CreatePaymentOrder)
	api.POST("/bookings/:id/verify", bookingHandler.Verify)
	api.POST("/bookings/:id/fail", bookingHandler.Fail)
	e.GET("/health", handler.HealthHandler)

	log.Printf("Starting flight desk server on port %s", cfg.Port)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadConfig() Config {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		FlightsURL:   getEnv("FLIGHTS_SERVICE_URL", "http://localhost:3001/api/v1"),
		BookingsURL:  getEnv("BOOKINGS_SERVICE_URL", "http://localhost:3002/api/v1"),
		PaymentsURL:  getEnv("PAYMENTS_SERVICE_URL", "http://localhost:3002/api/v1"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret"),
		CacheEnabled: getEnvBool("CACHE_ENABLED", true),
		RedisHost:    getEnv("REDIS_HOST", "localhost"),
		RedisPort:    getEnv("REDIS_PORT", "6379"),
		RedisTTL:     getEnvDuration("REDIS_TTL", 5*time.Minute),
		KafkaBrokers: getEnvList("KAFKA_BROKERS"),
		EventsTopic:  getEnv("KAFKA_EVENTS_TOPIC", "booking-events"),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
