package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yeremiapane/smartmenu-api/database"
	"github.com/yeremiapane/smartmenu-api/hub"
	"github.com/yeremiapane/smartmenu-api/metrics"
	"github.com/yeremiapane/smartmenu-api/router"
	"github.com/yeremiapane/smartmenu-api/utils"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(v)
		},
	}
}

func serve(v *viper.Viper) error {
	cfg, log, err := loadConfig(v)
	if err != nil {
		return err
	}

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	if !cfg.FrontendURLSet {
		log.Warn("FRONTEND_URL is not set; QR codes will point at http://localhost:8080")
	}
	if cfg.UsingDevSecret() {
		log.Warn("JWT_SECRET is not set; using the development secret")
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db, log); err != nil {
		return err
	}

	m, err := metrics.New(true)
	if err != nil {
		return err
	}
	h := hub.New(log)
	h.OnCountChange = func(n int) { m.WebsocketClients.Set(float64(n)) }
	defer h.Close()

	r := router.SetupRouter(router.Deps{
		DB:      db,
		Config:  cfg,
		Log:     log,
		Tokens:  utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, nil),
		Hub:     h,
		Metrics: m,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Smart Menu API listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
