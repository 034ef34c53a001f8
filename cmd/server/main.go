package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/gamearena/arena-server/internal/config"
	"github.com/gamearena/arena-server/internal/database"
	"github.com/gamearena/arena-server/internal/handler"
	"github.com/gamearena/arena-server/internal/matchmaking"
	"github.com/gamearena/arena-server/internal/middleware"
	"github.com/gamearena/arena-server/internal/queue"
	"github.com/gamearena/arena-server/internal/repository"
	"github.com/gamearena/arena-server/internal/router"
	"github.com/gamearena/arena-server/internal/service/notifier"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	tickets := repository.NewTicketRepo(db)
	requests := repository.NewMatchRequestRepo(db)
	tournaments := repository.NewTournamentRepo(db)
	notifications := repository.NewNotificationRepo(db)
	contacts := repository.NewContactRepo(db)

	// Matchmaking engine with its durable timeout supervisor.  The
	// notifier publishes to RabbitMQ only when a broker is configured.
	notify := notifier.New(notifications, cfg.AMQPURL != "")
	engine := matchmaking.NewEngine(tickets, notify, cfg.MatchTimeout, nil)
	defer engine.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go engine.RunSweeper(ctx, cfg.MatchSweepInterval)
	go func() {
		if err := queue.StartMatchConsumer(); err != nil {
			log.Printf("match consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Redis-backed rate limiting and response caching degrade to
	// no-ops when Redis is unreachable at startup.  The cache applies
	// to the public listings only; per-user endpoints must not share
	// cached responses.
	var cacheMW []echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		cacheMW = append(cacheMW, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	// Handlers
	auth := handler.NewAuthHandler(cfg, users, tokens, profiles)
	vs := handler.NewVSMatchHandler(engine, tickets)
	players := handler.NewPlayerHandler(profiles)
	reqs := handler.NewRequestHandler(requests, profiles, notifications)
	notifs := handler.NewNotificationHandler(notifications)
	tourns := handler.NewTournamentHandler(tournaments)
	contact := handler.NewContactHandler(contacts)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterPublic(e, players, tourns, vs, contact, cacheMW...)
	router.RegisterArena(e, vs, reqs, notifs, tourns, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()
	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
