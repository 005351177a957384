package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/config"
	"github.com/iliyamo/desk-rental-marketplace/internal/database"
	"github.com/iliyamo/desk-rental-marketplace/internal/handler"
	"github.com/iliyamo/desk-rental-marketplace/internal/middleware"
	"github.com/iliyamo/desk-rental-marketplace/internal/payment"
	"github.com/iliyamo/desk-rental-marketplace/internal/queue"
	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
	"github.com/iliyamo/desk-rental-marketplace/internal/router"
	"github.com/iliyamo/desk-rental-marketplace/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	desks := repository.NewDeskRepo(db)
	bookings := repository.NewBookingRepo(db)
	availability := repository.NewAvailabilityRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	messages := repository.NewMessageRepo(db)

	// Booking lifecycle with event publishing
	publisher := queue.NewAMQPPublisher()
	lifecycle := service.NewBookingLifecycle(db, desks, bookings, availability, publisher)

	// Payment gateway; empty keys leave checkout disabled.
	var gateway payment.Gateway
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gateway = payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	} else {
		log.Println("razorpay keys not set; checkout endpoint disabled")
	}

	// Handlers
	authH := handler.NewAuthHandler(users, tokens, cfg)
	deskH := handler.NewOwnerDeskHandler(desks)
	availH := handler.NewOwnerAvailabilityHandler(desks, availability, bookings)
	browseH := handler.NewBrowseHandler(desks, availability)
	bookingH := handler.NewRenterBookingHandler(lifecycle, bookings)
	paymentH := handler.NewPaymentHandler(gateway, lifecycle, bookings, cfg.RazorpayKeyID, cfg.RazorpayWebhookSecret)
	favH := handler.NewFavoriteHandler(favorites, desks)
	msgH := handler.NewMessageHandler(messages, desks)

	// Redis-backed middleware; both degrade to pass-through without Redis.
	rdb := config.NewRedisClient()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterPublic(e, browseH, paymentH, cache)
	router.RegisterOwner(e, deskH, availH, cfg.JWTSecret, limiter)
	router.RegisterRenter(e, bookingH, paymentH, favH, cfg.JWTSecret, limiter)
	router.RegisterShared(e, msgH, cfg.JWTSecret, limiter)

	// Consume booking events in the background.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
