package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/campusbook/resource-booking/internal/booking"
	"github.com/campusbook/resource-booking/internal/config"
	"github.com/campusbook/resource-booking/internal/database"
	"github.com/campusbook/resource-booking/internal/handler"
	"github.com/campusbook/resource-booking/internal/middleware"
	"github.com/campusbook/resource-booking/internal/queue"
	"github.com/campusbook/resource-booking/internal/repository"
	"github.com/campusbook/resource-booking/internal/router"
	queue_publisher "github.com/campusbook/resource-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the public response cache.  A nil
	// client just disables both.
	rdb := config.NewRedisClient()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	resources := repository.NewResourceRepo(db)
	bookings := repository.NewBookingRepo(db)
	messages := repository.NewMessageRepo(db)
	reviews := repository.NewReviewRepo(db)
	taxonomy := repository.NewTaxonomyRepo(db)
	adminLogs := repository.NewAdminLogRepo(db)

	// The booking engine owns conflict detection and status transitions;
	// committed changes are published to RabbitMQ for the log consumer.
	engine := booking.NewEngine(bookings, queue_publisher.Notifier{}, time.Duration(cfg.BookingMinMinutes)*time.Minute)

	e := echo.New()
	e.HideBanner = true

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := &handler.PublicHandler{Resources: resources, Bookings: bookings, Reviews: reviews, Taxonomy: taxonomy}
	staffH := handler.NewStaffHandler(resources)
	bookingH := handler.NewBookingHandler(engine, bookings, resources, messages)
	messageH := handler.NewMessageHandler(messages, bookings, resources)
	reviewH := handler.NewReviewHandler(reviews, bookings, resources)
	adminH := handler.NewAdminHandler(bookings, messages, reviews, users, resources, taxonomy, adminLogs)

	// Routes.
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterBookings(e, bookingH, messageH, reviewH, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterStaff(e, staffH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Background consumer appending status changes to logs/booking.log.
	go func() {
		if err := queue.StartStatusConsumer(); err != nil {
			log.Printf("status consumer stopped: %v", err)
		}
	}()

	// Sweep approved bookings whose window has elapsed into COMPLETED.
	go completeElapsedLoop(bookings)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// completeElapsedLoop runs the auto-complete sweep once a minute.
func completeElapsedLoop(bookings *repository.BookingRepo) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := bookings.CompleteElapsed(ctx, time.Now().UTC())
		cancel()
		if err != nil {
			log.Printf("complete sweep failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("complete sweep: %d booking(s) marked COMPLETED", n)
		}
	}
}
