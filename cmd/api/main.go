package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"meetingrooms/internal/app"
	"meetingrooms/internal/clock"
	"meetingrooms/internal/config"
	"meetingrooms/internal/database"
	"meetingrooms/internal/notify"
	jwtsvc "meetingrooms/internal/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	venue, err := clock.NewVenue(cfg.VenueTimezone)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := app.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}
	if n, err := app.Seed(context.Background(), db); err != nil {
		log.Fatal("seed failed:", err)
	} else if n > 0 {
		log.Printf("seeded rooms count=%d", n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := notify.NewHub(cfg.CORSAllowedOrigins)

	// With Redis, every instance publishes there and its relay feeds the
	// local hub; without it the hub is fed directly.
	var fanout notify.Broadcaster = hub
	if cfg.RedisURL != "" {
		client, err := notify.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		relay := notify.NewRedisRelay(client, cfg.RedisChannel, hub)
		go relay.Run(ctx)
		fanout = relay
	}

	broadcasters := notify.Multi{fanout}
	if cfg.AMQPURL != "" {
		pub := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		defer pub.Close()
		go pub.Run(ctx)
		broadcasters = append(broadcasters, pub)
	}

	deps := app.Deps{
		DB:          db,
		Clock:       venue,
		JWT:         jwtsvc.New(cfg.JWTSecret, 24*time.Hour),
		Hub:         hub,
		Broadcaster: broadcasters,
	}
	router := app.NewRouter(cfg, deps, app.NewServices(cfg, deps))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening addr=%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	hub.Close()
}
