package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/portal-mafia/mafia/game"
	"github.com/gosuda/portal-mafia/mafia/journal"
)

var rootCmd = &cobra.Command{
	Use:   "mafia",
	Short: "Portal demo: mafia party room coordinator",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(flagLogLevel, flagLogPretty)
	},
	RunE: runServer,
}

var (
	flagServerURLs []string
	flagPort       int
	flagName       string
	flagCredKey    string
	flagAuthKey    string
	flagDataPath   string
	flagRate       float64
	flagBurst      int
	flagLogLevel   string
	flagLogPretty  bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&flagServerURLs, "server-url", strings.Split(os.Getenv("RELAY"), ","), "relayserver base URL(s); repeat or comma-separated (from env RELAY if set)")
	flags.IntVar(&flagPort, "port", -1, "optional local HTTP port (negative to disable)")
	flags.StringVar(&flagName, "name", "mafia", "backend display name")
	flags.StringVar(&flagCredKey, "cred-key", "", "optional credential key to use for the listener (base64 encoded)")
	flags.StringVar(&flagAuthKey, "ws-auth-key", os.Getenv("MAFIA_WS_AUTH"), "optional shared secret required from clients via X-Mafia-Key header")
	flags.StringVar(&flagDataPath, "data-path", os.Getenv("MAFIA_DATA_PATH"), "optional directory for the room journal (empty disables it)")
	flags.Float64Var(&flagRate, "rate", 20, "messages per second accepted from one connection")
	flags.IntVar(&flagBurst, "burst", 40, "message burst accepted from one connection")
	flags.StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&flagLogPretty, "log-pretty", false, "human readable console logs")

	rootCmd.AddCommand(journalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute mafia command")
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := relayServers(flagServerURLs)
	if len(servers) == 0 && flagPort < 0 {
		return errors.New("nothing to serve: set --server-url or --port")
	}

	var opts []game.Option
	if flagDataPath != "" {
		store, err := journal.Open(flagDataPath, nil)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("[mafia] close journal")
			}
		}()
		opts = append(opts, game.WithJournal(store))
		log.Info().Str("path", flagDataPath).Msg("[mafia] journal enabled")
	}

	hub := game.NewHub(game.NewManager(), opts...)
	defer hub.Close()
	router := NewHTTPServer(hub, flagAuthKey, flagRate, flagBurst).Router()

	if len(servers) > 0 {
		relay, err := openRelay(servers, flagName, flagCredKey)
		if err != nil {
			return err
		}
		defer relay.Close()
		go relay.serve(ctx, router)
	} else {
		log.Info().Msg("[mafia] relay disabled; running local mode only")
	}

	if flagPort >= 0 {
		local := serveLocal(flagPort, router)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := local.Shutdown(sctx); err != nil {
				log.Error().Err(err).Msg("[mafia] http server shutdown error")
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("[mafia] shutting down")
	return nil
}

// serveLocal starts a plain HTTP server on port in the background.
func serveLocal(port int, h http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Info().Msgf("[mafia] serving locally at http://127.0.0.1:%d", port)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("[mafia] local http stopped")
		}
	}()
	return srv
}
