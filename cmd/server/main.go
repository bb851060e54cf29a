package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/database"
	"github.com/everydaycare/server/internal/handler"
	"github.com/everydaycare/server/internal/middleware"
	"github.com/everydaycare/server/internal/provider"
	"github.com/everydaycare/server/internal/queue"
	"github.com/everydaycare/server/internal/repository"
	"github.com/everydaycare/server/internal/router"
	"github.com/everydaycare/server/internal/scheduler"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("mysql open failed", zap.Error(err))
	}
	defer db.Close()

	mongoDB := config.NewMongoDatabase()
	if mongoDB == nil {
		logger.Fatal("mongodb unavailable")
	}
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting and caches disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	groups := repository.NewGroupRepo(db)
	members := repository.NewMemberRepo(db)
	channels := repository.NewChannelRepo(db)
	events := repository.NewEventRepo(db)
	appts := repository.NewAppointmentRepo(db)
	meds := repository.NewMedicationRepo(db)
	contacts := repository.NewContactRepo(db)
	hotlines := repository.NewHotlineRepo(db)
	helpReqs := repository.NewHelpRequestRepo(db)
	friends := repository.NewFriendRepo(db)
	messages := repository.NewMessageRepo(db)
	places := repository.NewPlaceRepo(db)
	chat := repository.NewChatRepo(mongoDB)

	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := chat.EnsureIndexes(ctx); err != nil {
			logger.Warn("chat index creation failed", zap.Error(err))
		}
		cancel()
	}

	mailer := provider.NewMailer(cfg.MailDomain, cfg.MailAPIKey, cfg.MailFrom, logger)
	translator := provider.NewTranslator(cfg.TranslateURLs, logger)
	geocoder := provider.NewGeocoder(cfg.GeocodeURL, logger)
	busClient := provider.NewBusClient(cfg.BusAPIKey, logger)
	calendar := provider.NewCalendarClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, mailer, logger), cfg.JWTSecret)
	router.RegisterCommunity(e, cfg.JWTSecret, groups,
		handler.NewGroupHandler(cfg, groups, members, chat, logger),
		handler.NewChannelHandler(cfg, channels, chat, logger),
		handler.NewEventHandler(cfg, groups, events),
		handler.NewChatHandler(cfg, groups, members, channels, chat))
	router.RegisterCare(e, cfg.JWTSecret,
		handler.NewAppointmentHandler(cfg, appts),
		handler.NewMedicationHandler(cfg, meds),
		handler.NewContactHandler(cfg, contacts),
		handler.NewHotlineHandler(cfg, hotlines))
	router.RegisterSocial(e, cfg.JWTSecret,
		handler.NewFriendHandler(cfg, friends, users),
		handler.NewMessageHandler(cfg, messages, friends, translator),
		handler.NewHelpRequestHandler(cfg, helpReqs, logger))
	router.RegisterUtilities(e, cfg.JWTSecret,
		handler.NewPlaceHandler(cfg, places, geocoder, logger),
		handler.NewBusHandler(cfg, busClient, rdb, logger),
		handler.NewCalendarHandler(cfg, calendar, appts))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.NewMedicationReset(meds, logger).Start(ctx)
	go queue.StartHelpRequestConsumer(logger)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProd() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
