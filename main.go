package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Piero-design/VETAQP/server"
	"github.com/labstack/gommon/log"
)

func main() {
	s := server.NewServer()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			log.Error("Shutdown failed:", err)
		}
	}()

	s.Start(s.Config.Server.Addr)
}
