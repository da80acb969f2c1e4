package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Abrahamm4/HomeCare/internal/auth"
	"github.com/Abrahamm4/HomeCare/internal/schedule"
)

type RouterConfig struct {
	Slots    *schedule.SlotService
	Bookings *schedule.BookingService
	Auth     *auth.Service
	Tokens   *auth.TokenIssuer
	Validate *validator.Validate
	Logger   *zap.Logger
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(cfg.Logger))

	// Health endpoints
	if cfg.PgPool != nil && cfg.Redis != nil {
		health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
		r.Get("/health/live", health.Liveness)
		r.Get("/health/ready", health.Readiness)
	}

	authH := newAuthHandlers(cfg.Auth, cfg.Tokens, cfg.Validate, cfg.Logger)
	r.Post("/auth/register", authH.register)
	r.Post("/auth/login", authH.login)

	slots := newSlotHandlers(cfg.Slots, cfg.Validate, cfg.Logger)
	bookings := newBookingHandlers(cfg.Bookings, cfg.Validate, cfg.Logger)

	// Everything below requires a valid bearer token.
	r.Group(func(r chi.Router) {
		r.Use(Authenticator(cfg.Tokens))

		r.Get("/slots", slots.list)
		r.Post("/slots", slots.create)
		r.Get("/slots/{id}", slots.get)
		r.Put("/slots/{id}", slots.update)
		r.Delete("/slots/{id}", slots.delete)

		r.Get("/bookings", bookings.list)
		r.Post("/bookings", bookings.create)
		r.Get("/bookings/{id}", bookings.get)
		r.Put("/bookings/{id}", bookings.update)
		r.Delete("/bookings/{id}", bookings.delete)
	})

	return r
}
