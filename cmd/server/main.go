package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticketing/internal/booking"
	"github.com/iliyamo/cinema-ticketing/internal/config"
	"github.com/iliyamo/cinema-ticketing/internal/database"
	"github.com/iliyamo/cinema-ticketing/internal/handler"
	"github.com/iliyamo/cinema-ticketing/internal/logger"
	"github.com/iliyamo/cinema-ticketing/internal/queue"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
	"github.com/iliyamo/cinema-ticketing/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, database.Pool{
		MaxOpen: cfg.DBMaxOpen,
		MaxIdle: cfg.DBMaxIdle,
		ConnTTL: cfg.DBConnTTL,
	})
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		zlog.Warn("redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	halls := repository.NewHallRepo(db)
	films := repository.NewFilmRepo(db)
	actors := repository.NewActorRepo(db)
	sessions := repository.NewSessionRepo(db)
	tickets := repository.NewTicketRepo(db)

	store := booking.NewSQLStore(db, sessions, tickets, users)
	booker := booking.NewService(store, zlog)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	filmH := handler.NewFilmHandler(films, actors, tickets)
	actorH := handler.NewActorHandler(actors)
	hallH := handler.NewHallHandler(halls)
	sessionH := handler.NewSessionHandler(sessions, halls, films)
	ticketH := handler.NewTicketHandler(booker, tickets, sessions, films, zlog)
	userH := handler.NewUserHandler(users, cfg.BcryptCost)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, router.PublicDeps{
		Films:    filmH,
		Actors:   actorH,
		Halls:    hallH,
		Sessions: sessionH,
		Tickets:  ticketH,
	}, config.LoadCacheConfig(), rdb)
	router.RegisterCustomer(e, ticketH, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)
	router.RegisterAdmin(e, router.AdminDeps{
		Films:    filmH,
		Actors:   actorH,
		Halls:    hallH,
		Sessions: sessionH,
		Tickets:  ticketH,
		Users:    userH,
	}, cfg.JWTSecret)

	// Background consumer appends issued tickets to logs/tickets.log.
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			zlog.Error("ticket consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	zlog.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
