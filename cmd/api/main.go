package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sangreguerrer/Netology-Final/api/routes"
	authsvc "github.com/sangreguerrer/Netology-Final/internal/auth"
	basketsvc "github.com/sangreguerrer/Netology-Final/internal/basket"
	catalogsvc "github.com/sangreguerrer/Netology-Final/internal/catalog"
	checkoutsvc "github.com/sangreguerrer/Netology-Final/internal/checkout"
	contactssvc "github.com/sangreguerrer/Netology-Final/internal/contacts"
	inventorysvc "github.com/sangreguerrer/Netology-Final/internal/inventory"
	notificationsvc "github.com/sangreguerrer/Netology-Final/internal/notifications"
	orderssvc "github.com/sangreguerrer/Netology-Final/internal/orders"
	userssvc "github.com/sangreguerrer/Netology-Final/internal/users"
	"github.com/sangreguerrer/Netology-Final/pkg/config"
	"github.com/sangreguerrer/Netology-Final/pkg/db"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
	"github.com/sangreguerrer/Netology-Final/pkg/migrate"
	"github.com/sangreguerrer/Netology-Final/pkg/outbox"
	"github.com/sangreguerrer/Netology-Final/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	deps, err := buildServices(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	deps.Config = cfg
	deps.Logger = logg
	deps.DB = dbClient
	deps.Redis = redisClient

	addr := ":" + cfg.App.Port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(deps),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (routes.Dependencies, error) {
	gormDB := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(gormDB), logg)
	ledger := inventorysvc.NewLedger(logg)

	authService, err := authsvc.NewService(userssvc.NewRepository(gormDB), dbClient, emitter, cfg.JWT, cfg.Password, logg)
	if err != nil {
		return routes.Dependencies{}, err
	}
	basketService, err := basketsvc.NewService(basketsvc.NewRepository(gormDB), dbClient, logg)
	if err != nil {
		return routes.Dependencies{}, err
	}
	checkoutService, err := checkoutsvc.NewService(
		checkoutsvc.NewRepository(gormDB),
		dbClient,
		ledger,
		emitter,
		logg,
		cfg.Checkout.LowStockThreshold,
	)
	if err != nil {
		return routes.Dependencies{}, err
	}
	ordersService, err := orderssvc.NewService(orderssvc.NewRepository(gormDB))
	if err != nil {
		return routes.Dependencies{}, err
	}
	contactsService, err := contactssvc.NewService(gormDB)
	if err != nil {
		return routes.Dependencies{}, err
	}
	catalogService, err := catalogsvc.NewService(catalogsvc.NewRepository(gormDB))
	if err != nil {
		return routes.Dependencies{}, err
	}
	partnerService, err := userssvc.NewPartnerService(userssvc.NewRepository(gormDB))
	if err != nil {
		return routes.Dependencies{}, err
	}
	inventoryService, err := inventorysvc.NewService(dbClient, ledger)
	if err != nil {
		return routes.Dependencies{}, err
	}

	return routes.Dependencies{
		Auth:          authService,
		Basket:        basketService,
		Checkout:      checkoutService,
		Orders:        ordersService,
		Contacts:      contactsService,
		Catalog:       catalogService,
		Partner:       partnerService,
		Inventory:     inventoryService,
		Notifications: notificationsvc.NewRepository(gormDB),
	}, nil
}
