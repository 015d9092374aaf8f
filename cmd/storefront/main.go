package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/harborline/storefront-go/account"
	"github.com/harborline/storefront-go/cart"
	"github.com/harborline/storefront-go/checkout"
	"github.com/harborline/storefront-go/commerce"
	"github.com/harborline/storefront-go/gateway"
	"github.com/harborline/storefront-go/internal/config"
	"github.com/harborline/storefront-go/session"
)

// Smoke-test harness for the client library: adds an item to the guest
// cart, logs in (triggering the one-time merge), then runs the full
// checkout sequence against the configured API. Ctrl-C aborts the payment
// polling phase cleanly.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	var (
		configPath = flag.String("config", "", "optional YAML config file")
		email      = flag.String("email", os.Getenv("STOREFRONT_EMAIL"), "account email")
		password   = flag.String("password", os.Getenv("STOREFRONT_PASSWORD"), "account password")
		variantID  = flag.String("variant", "", "variant id to add to the cart")
		quantity   = flag.Int("qty", 1, "quantity to add")
		street     = flag.String("street", "", "shipping street address")
		city       = flag.String("city", "", "shipping city")
		postal     = flag.String("postal", "", "shipping postal code")
		country    = flag.String("country", "", "shipping country (defaults to home country)")
		phone      = flag.String("phone", "", "recipient phone")
		weight     = flag.Float64("weight", 1000, "parcel weight in grams")
		method     = flag.String("method", "bank_transfer", "payment method")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	displayAppname(cfg.GetAppName())

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	store := session.NewInMemoryStore()
	api, err := gateway.New(cfg.GetAPIBaseURL(), store,
		gateway.WithLogger(logger),
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.GetRequestTimeout()}),
		gateway.WithRateLimit(rate.Limit(cfg.GetRateLimitPerSecond()), cfg.GetRateLimitBurst()),
	)
	if err != nil {
		return err
	}

	kv := cart.NewMemoryKV()
	basket, err := cart.New(api, store, kv, cart.WithLogger(logger))
	if err != nil {
		return err
	}
	accounts, err := account.New(api, store, account.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *variantID != "" {
		if err := basket.AddItem(ctx, *variantID, *quantity); err != nil {
			return errors.Wrap(err, "add to guest cart")
		}
	}

	if _, err := accounts.Login(ctx, *email, *password); err != nil {
		return errors.Wrap(err, "login")
	}
	summary, err := basket.MergeOnLogin(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("cart merge failed, continuing with server cart")
	}
	logger.Info().Int("lines", len(summary.Items)).Int64("subtotal", summary.Subtotal).Msg("cart ready")

	if *street == "" {
		logger.Info().Msg("no shipping address given, stopping after cart merge")
		return nil
	}

	flow, err := checkout.NewFlow(api,
		checkout.WithHomeCountry(cfg.GetHomeCountry()),
		checkout.WithCart(basket),
		checkout.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	destCountry := *country
	if destCountry == "" {
		destCountry = cfg.GetHomeCountry()
	}
	addr := commerce.Address{
		RecipientName:  *email,
		RecipientPhone: *phone,
		Country:        destCountry,
		City:           *city,
		PostalCode:     *postal,
		Street:         *street,
	}

	quote, err := flow.QuoteShipping(ctx, addr, *weight)
	if err != nil {
		return errors.Wrap(err, "shipping quote")
	}
	logger.Info().Str("destination", string(quote.Destination)).Int("options", len(quote.Options)).Msg("shipping quoted")

	order, err := flow.CreateOrder(ctx, *method, cfg.GetCurrency())
	if err != nil {
		return errors.Wrap(err, "create order")
	}

	launch, err := flow.InitiatePayment(ctx)
	if err != nil {
		return errors.Wrap(err, "initiate payment")
	}
	if launch.RedirectURL != "" {
		fmt.Printf("Complete payment at: %s\n", launch.RedirectURL)
	}

	poller := checkout.NewPoller(
		checkout.WithMaxAttempts(cfg.GetPollMaxAttempts()),
		checkout.WithInterval(cfg.GetPollInterval()),
		checkout.WithErrorBudget(cfg.GetPollErrorBudget()),
		checkout.WithPollerLogger(logger),
	)
	status, err := flow.PollPayment(ctx, poller, func(s commerce.PaymentStatus) {
		logger.Info().Str("status", s.String()).Msg("payment status")
	})
	if err != nil {
		return errors.Wrap(err, "payment polling")
	}

	fmt.Printf("Order %s payment status: %s\n", order.OrderNumber, status)
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.New(), nil
	}
	return config.Load(path)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
