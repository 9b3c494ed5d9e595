package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-shop/config"
	"go-shop/controllers"
	"go-shop/middleware"
	"go-shop/routes"
	"go-shop/services"
	"go-shop/store"
	"go-shop/utils"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, closer := utils.NewLogger(utils.LogOptions{
			Service: "go-shop",
			Env:     cfg.AppEnv,
			Level:   cfg.LogLevel,
			File:    cfg.LogFile,
		})
		defer closer.Close()
		if cfg.UsingDevJWTSecret {
			log.Warn("JWT_SECRET is not set; tokens are signed with the public development secret")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func loadConfig() (config.Config, error) {
	if envFile != "" {
		return config.Load(envFile)
	}
	return config.Load()
}

// openUserStore returns the configured user store and a release func.
func openUserStore(ctx context.Context, cfg config.Config, log *slog.Logger) (services.UserStore, func(), error) {
	switch cfg.UserStore {
	case "mongo":
		client, err := store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to MongoDB", "db", cfg.MongoDB)
		release := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Error("mongo disconnect", "err", err)
			}
		}
		return store.NewMongoUserStore(client, cfg.MongoDB), release, nil
	default:
		fs, err := store.OpenFileUserStore(cfg.UserDBFile, log)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	userStore, release, err := openUserStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer release()

	catalog := services.NewProductCatalog(log)
	if cfg.SeedCatalog {
		catalog.Seed()
	}
	carts := services.NewCartService(catalog, log)

	var ledgerOpts []services.LedgerOption
	if cfg.StrictOrderStatus {
		ledgerOpts = append(ledgerOpts, services.WithStatusPolicy(services.StrictStatus))
	}
	ledger := services.NewOrderLedger(carts, log, ledgerOpts...)
	users := services.NewUserService(userStore, log)

	token := cfg.PostmarkToken
	if cfg.EmailProvider == "sendgrid" {
		token = cfg.SendGridAPIKey
	}
	notifier := &utils.OrderNotifier{
		Mailer: utils.NewMailer(cfg.EmailProvider, token, cfg.EmailSender, log),
		Log:    log,
	}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(log), middleware.Recovery)
	routes.RegisterRoutes(router, routes.Controllers{
		Users:    controllers.NewUserController(users, tokens),
		Products: controllers.NewProductController(catalog),
		Carts:    controllers.NewCartController(carts),
		Orders:   controllers.NewOrderController(ledger, users, notifier),
	}, middleware.NewAuth(tokens))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server is running", "port", cfg.Port, "user_store", cfg.UserStore, "email", cfg.EmailProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
