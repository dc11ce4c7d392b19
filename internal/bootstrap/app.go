// Package bootstrap loads configuration and wires the application
// components together.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	httpHandler "github.com/hamspncr/CSCI3280-Project/internal/handler/http"
	wsHandler "github.com/hamspncr/CSCI3280-Project/internal/handler/websocket"
	"github.com/hamspncr/CSCI3280-Project/internal/hub"
	"github.com/hamspncr/CSCI3280-Project/internal/middleware"
	"github.com/hamspncr/CSCI3280-Project/internal/store"
)

// Config holds everything loaded from the environment.
type Config struct {
	ServerHost      string
	ServerPort      string
	LogLevel        string
	AppEnv          string
	TLSCertFile     string
	TLSKeyFile      string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// LoadConfig reads configuration from the environment, preferring a .env
// file when one exists. Redis is optional: without REDIS_ADDR the rate
// limiter is simply disabled, since the relay itself keeps no state
// outside the process.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerHost:    os.Getenv("SERVER_HOST"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		AppEnv:        os.Getenv("APP_ENV"),
		TLSCertFile:   os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:    os.Getenv("TLS_KEY_FILE"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		// Defaults below.
		RateLimitMax:    100,
		RateLimitWindow: 1 * time.Second,
	}
	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitMax = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitWindow = time.Duration(n) * time.Second
		}
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return nil, fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App holds the application's components.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	RedisClient *redis.Client
	Rooms       *store.RoomStore
	Hub         *hub.Hub
	HttpServer  *http.Server
}

// NewApp creates and wires all application components.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(logLevel)
	log.Infof("Logger initialized (Level: %s)", logLevel.String())

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info("Redis client initialized, rate limiting enabled")
	} else {
		log.Info("REDIS_ADDR not set, rate limiting disabled")
	}

	rooms := store.NewRoomStore()
	h := hub.NewHub(rooms)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if redisClient != nil {
		router.Use(middleware.RateLimit(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow))
	}

	roomHandler := httpHandler.NewRoomHandler(rooms)
	wsH := wsHandler.NewWebSocketHandler(h)

	router.GET("/healthz", httpHandler.Healthz)
	api := router.Group("/api")
	{
		api.GET("/rooms", roomHandler.ListRooms)
		api.GET("/rooms/:id", roomHandler.GetRoom)
	}
	router.GET("/ws", wsH.HandleConnection)

	server := &http.Server{
		Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
		Handler: router,
	}

	return &App{
		Config:      cfg,
		Log:         log,
		RedisClient: redisClient,
		Rooms:       rooms,
		Hub:         h,
		HttpServer:  server,
	}, nil
}

// Start launches the hub loop and the HTTP(S) listener.
func (a *App) Start() {
	go a.Hub.Run()

	go func() {
		var err error
		if a.Config.TLSCertFile != "" {
			a.Log.Infof("Listening on wss://%s", a.HttpServer.Addr)
			err = a.HttpServer.ListenAndServeTLS(a.Config.TLSCertFile, a.Config.TLSKeyFile)
		} else {
			a.Log.Infof("Listening on ws://%s", a.HttpServer.Addr)
			err = a.HttpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("HTTP server error: %v", err)
		}
	}()
}

// Shutdown stops the listener and releases external clients.
func (a *App) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.WithError(err).Error("HTTP server shutdown failed")
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.WithError(err).Error("Redis client close failed")
		}
	}
	a.Log.Info("Shutdown complete")
}
