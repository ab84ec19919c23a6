package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ercaspay/internal/checkout"
	"ercaspay/internal/ercaspay"
	"ercaspay/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config      config
	client      *ercaspay.Client
	checkout    *checkout.Handler
	logger      *zap.SugaredLogger
	rateLimiter *ratelimiter.FixedWindowLimiter
}

type config struct {
	addr        string
	env         string
	redirectURL string
	site        checkout.Site
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
}

type basicConfig struct {
	user string
	pass string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	// The gateway round trips happen inside these handlers, so they sit
	// behind the rate limiter.
	r.Route("/checkout", func(r chi.Router) {
		r.Use(app.RateLimiterMiddleware)
		r.Mount("/", app.checkout.Routes())
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Merchant tooling over the payment client.
		r.Route("/payments", func(r chi.Router) {
			r.Use(app.BasicAuthMiddleware())
			r.Get("/banks", app.supportedBanksHandler)
			r.Post("/status", app.statusPaymentHandler)
			r.Post("/ussd", app.ussdPaymentHandler)
			r.Route("/{transRef}", func(r chi.Router) {
				r.Get("/verify", app.verifyPaymentHandler)
				r.Get("/details", app.detailsPaymentHandler)
				r.Get("/bank-account", app.bankPaymentHandler)
				r.Post("/cancel", app.cancelPaymentHandler)
			})
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
