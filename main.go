package main

import (
	"context"
	"log"

	firebase "firebase.google.com/go"
	"github.com/google/generative-ai-go/genai"
	"github.com/greenearthng/greenloop/config"
	"github.com/greenearthng/greenloop/db"
	"github.com/greenearthng/greenloop/mailingservices"
	"github.com/greenearthng/greenloop/server"
	"github.com/greenearthng/greenloop/services"
	"google.golang.org/api/option"
)

// initPusher wires Firebase Cloud Messaging when credentials are
// configured. Without them the app still runs, notifications just stay
// in-app only.
func initPusher(conf *config.Config) services.Pusher {
	if conf.FirebaseCredentialsFile == "" {
		log.Println("firebase credentials not configured, push delivery disabled")
		return nil
	}
	opt := option.WithCredentialsFile(conf.FirebaseCredentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v", err)
	}
	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Fatalf("error getting messaging client: %v", err)
	}
	return services.NewFirebasePusher(client)
}

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	mailgunClient := &mailingservices.Mailgun{}
	mailgunClient.Init()

	genaiClient, err := genai.NewClient(context.Background(), option.WithAPIKey(conf.GeminiApiKey))
	if err != nil {
		log.Fatalf("error creating genai client: %v", err)
	}

	gormDB := db.GetDB(conf)
	if err := db.SeedRewardCatalog(gormDB.DB); err != nil {
		log.Fatalf("error seeding reward catalog: %v", err)
	}

	authRepo := db.NewAuthRepo(gormDB)
	mediaRepo := db.NewMediaRepo(gormDB)
	reportRepo := db.NewReportRepo(gormDB)
	rewardRepo := db.NewRewardRepo(gormDB)
	notificationRepo := db.NewNotificationRepo(gormDB)

	notificationService := services.NewNotificationService(notificationRepo, initPusher(conf))
	authService := services.NewAuthService(authRepo, mailgunClient, conf)
	mediaService := services.NewMediaService(mediaRepo, conf)
	classifierService := services.NewClassifierService(genaiClient)
	rewardService := services.NewRewardService(gormDB, rewardRepo, notificationRepo, conf)
	reportService := services.NewReportService(gormDB, reportRepo, rewardRepo, authRepo, notificationService, conf)

	s := &server.Server{
		Config:                 conf,
		Mail:                   mailgunClient,
		DB:                     gormDB,
		AuthRepository:         authRepo,
		ReportRepository:       reportRepo,
		RewardRepository:       rewardRepo,
		NotificationRepository: notificationRepo,
		AuthService:            authService,
		ReportService:          reportService,
		RewardService:          rewardService,
		NotificationService:    notificationService,
		ClassifierService:      classifierService,
		MediaService:           mediaService,
		FeedHub:                server.NewFeedHub(),
	}

	s.Start()
}
