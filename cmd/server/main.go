package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/farhapartex/stream-search/internal/config"
	grpcServer "github.com/farhapartex/stream-search/internal/grpc"
	"github.com/farhapartex/stream-search/internal/handlers"
	"github.com/farhapartex/stream-search/internal/httpapi"
	"github.com/farhapartex/stream-search/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// configuration warnings are logged before the configured level is known
	logging.Init(logging.Config{ServiceName: "stream-search"})

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.L()
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "stream-search",
	})
	logger := logging.L()

	logger.Info().
		Str("http_port", cfg.Server.HTTPPort).
		Str("grpc_port", cfg.Server.GRPCPort).
		Dur("server_timeout", cfg.Server.ServerTimeout).
		Dur("per_api_timeout", cfg.Server.PerAPITimeout).
		Str("page_policy", cfg.Twitch.PagePolicy).
		Str("callback_mode", cfg.Twitch.CallbackMode).
		Msg("configuration loaded")

	searchHandler, err := handlers.NewSearchHandler(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create search handler")
	}

	grpcAddr := fmt.Sprintf(":%s", cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Fatal().Err(err).Str(logging.FieldAddr, grpcAddr).Msg("failed to listen")
	}
	grpcSrv := grpcServer.NewGRPCServer(logger, searchHandler)

	if logging.ParseLevel(cfg.Logging.Level) > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.NewHandler(searchHandler), cfg.Server.CORSOrigins, logger)
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str(logging.FieldAddr, grpcAddr).Msg("gRPC server listening")
		return grpcSrv.Serve(lis)
	})

	g.Go(func() error {
		logger.Info().Str(logging.FieldAddr, httpSrv.Addr).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("received shutdown signal, gracefully stopping servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("servers stopped")
}
