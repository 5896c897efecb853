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

	"github.com/GitGautamHub/smart-doctor-cli/internal/config"
	"github.com/GitGautamHub/smart-doctor-cli/internal/stub"
)

func main() {
	cfg := config.Load()

	db, err := stub.Open(cfg.StubDBDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := stub.Seed(context.Background(), db); err != nil {
		log.Fatalf("seed database: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.StubAddr,
		Handler: stub.NewRouter(db, cfg),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("stub backend listening addr=%s db=%s", cfg.StubAddr, cfg.StubDBDSN)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("stub backend shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
