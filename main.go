package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/sirupsen/logrus"

	"github.com/DavinciDreams/vscrabbleproject/internal/auth"
	"github.com/DavinciDreams/vscrabbleproject/internal/config"
	"github.com/DavinciDreams/vscrabbleproject/internal/game"
	"github.com/DavinciDreams/vscrabbleproject/internal/handlers"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	for _, arg := range os.Args[1:] {
		if arg == "-v" {
			logger.SetLevel(logrus.DebugLevel)
			logger.Debug("verbose mode enabled")
		}
	}

	cfg := config.Load(logger)

	// init signing keys for resume tokens
	auth.Init()

	rooms := game.NewRoomStore(logger, cfg.GracePeriod)
	gateway := handlers.NewServer(logger, rooms, cfg.OriginPatterns)

	server := &http.Server{
		Handler: handlers.Routes(logger, gateway),
		// No WriteTimeout: it would sever long-lived game sockets.
		ReadHeaderTimeout: time.Second * 10,
	}

	l, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}

	logger.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}
