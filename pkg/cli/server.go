package cli

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

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/predict"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	serverPortDefault         = 8080
)

var (
	portFlag = &cli.IntFlag{
		Name:  "port",
		Usage: "Port on which the server will listen",
		Value: serverPortDefault,
	}

	serverCmd = &cli.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start the local scoring HTTP server",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			portFlag,
			artifactsFlag,
			classifierURLFlag,
			debugFlag,
		},
	}
)

func cmdStartServer(c *cli.Context) error {
	cfg := getConfig(c)
	ctx := context.Background()

	classifier, err := getClassifier(ctx, c.String(classifierURLFlag.Name), c.String(artifactsFlag.Name))
	if err != nil {
		return err
	}

	svc, err := predict.New(nil, classifier, cfg.DB)
	if err != nil {
		return fmt.Errorf("creating scoring service: %w", err)
	}

	token, err := getAPIToken()
	if err != nil {
		token = ""
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	address := fmt.Sprintf("127.0.0.1:%d", c.Int(portFlag.Name))
	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(cfg.DB, svc, token),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("error starting server", "error", err)
		}
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", address))

	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	return nil
}
