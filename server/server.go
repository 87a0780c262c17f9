package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greenearthng/greenloop/config"
	"github.com/greenearthng/greenloop/db"
	"github.com/greenearthng/greenloop/mailingservices"
	"github.com/greenearthng/greenloop/services"
)

type Server struct {
	Config                 *config.Config
	Mail                   mailingservices.Mailer
	DB                     *db.GormDB
	AuthRepository         db.AuthRepository
	ReportRepository       db.ReportRepository
	RewardRepository       db.RewardRepository
	NotificationRepository db.NotificationRepository
	AuthService            services.AuthService
	ReportService          services.ReportService
	RewardService          services.RewardService
	NotificationService    services.NotificationService
	ClassifierService      services.ClassifierService
	MediaService           services.MediaService
	FeedHub                *FeedHub
}

// Start runs the HTTP server until an interrupt, then drains in-flight
// requests.
func (s *Server) Start() {
	if s.FeedHub == nil {
		s.FeedHub = NewFeedHub()
	}

	r := s.setupRouter()

	port := s.Config.Port
	if port == 0 {
		port = 8080
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		log.Printf("listening on :%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
}
