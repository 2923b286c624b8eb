package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zenclass.org/internal/auth"
	"zenclass.org/internal/booking"
	"zenclass.org/internal/httpapi"
	"zenclass.org/internal/obs"
	"zenclass.org/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	dsn := os.Getenv("ZENCLASS_PG_DSN")
	if dsn == "" {
		log.Fatal("ZENCLASS_PG_DSN is required")
	}
	secret := os.Getenv("ZENCLASS_AUTH_SECRET")
	if secret == "" {
		log.Fatal("ZENCLASS_AUTH_SECRET is required")
	}
	ttl := 24 * time.Hour
	if raw := os.Getenv("ZENCLASS_TOKEN_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("parse ZENCLASS_TOKEN_TTL: %v", err)
		}
		ttl = parsed
	}
	addr := os.Getenv("ZENCLASS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	codec, err := auth.NewTokenCodec(secret, ttl)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	users := store.Users()
	api := httpapi.New(httpapi.Config{
		Version:    version,
		ReadyProbe: httpapi.ReadyProbe{DB: store.DB()},
		Auth:       auth.NewService(users, auth.BcryptHasher{}, codec),
		Codec:      codec,
		Resolver:   auth.NewResolver(users),
		Users:      users,
		Bookings:   booking.NewService(store.Sessions(), users, store.Teachers()),
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting zenclass-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
