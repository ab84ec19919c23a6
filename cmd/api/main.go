package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"ercaspay/internal/checkout"
	"ercaspay/internal/ercaspay"
	"ercaspay/internal/ratelimiter"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	// Default values
	defaultRequests := 60
	defaultEnabled := true

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            time.Minute,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	level := zapcore.InfoLevel
	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "0.3.0"

func main() {
	// Gateway credentials come from the env file; everything else below is
	// read from the process environment the same load populated.
	envFile := os.Getenv("ERCASPAY_ENV_FILE")
	gatewayCfg, err := ercaspay.LoadConfig(envFile)
	if err != nil {
		log.Fatalf("Error loading gateway credentials: %v", err)
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		redirectURL: os.Getenv("PAYMENT_REDIRECT_URL"),
		site: checkout.Site{
			Name:         os.Getenv("CHECKOUT_NAME"),
			Description:  os.Getenv("CHECKOUT_DESCRIPTION"),
			RequirePhone: os.Getenv("CHECKOUT_REQUIRE_PHONE") == "true",
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
	}
	if cfg.addr == "" {
		cfg.addr = ":8080"
	}
	if cfg.site.Name == "" {
		cfg.site.Name = "Checkout"
	}

	// Logger
	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Payment client
	client, err := ercaspay.NewClient(gatewayCfg)
	if err != nil {
		logger.Fatal(err)
	}

	// Completion handler: where an integration records the verified payment.
	// This binary only logs it.
	onCompleted := func(ctx context.Context, p checkout.CompletedPayment) {
		logger.Infow("payment completed",
			"transRef", p.TransactionRef,
			"status", p.Status,
			"amount", p.Amount,
			"currency", p.Currency,
			"customer", p.CustomerEmail,
		)
	}

	checkoutHandler := checkout.NewHandler(client, cfg.site, cfg.redirectURL, onCompleted, logger)

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	app := &application{
		config:      cfg,
		client:      client,
		checkout:    checkoutHandler,
		logger:      logger,
		rateLimiter: rateLimiter,
	}

	//Metrics collected at /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
