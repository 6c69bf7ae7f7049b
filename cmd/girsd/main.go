// Command girsd serves infrared commands over a line protocol.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/girs-server/girsd/internal/auth"
	"github.com/girs-server/girsd/internal/config"
	"github.com/girs-server/girsd/internal/engine"
	"github.com/girs-server/girsd/internal/httpapi"
	"github.com/girs-server/girsd/internal/logging"
	"github.com/girs-server/girsd/internal/repl"
	"github.com/girs-server/girsd/internal/tcpserver"
)

var cfgFile string

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "girsd",
		Short:         "Infrared command server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "configuration file (default girsd.yaml)")
	root.AddCommand(newServeCmd(), newReplCmd(), newEvalCmd(), newTokenCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the TCP line protocol and the HTTP API",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			serve()
		},
	}
}

func serve() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logFile := logging.Setup(loggingOptions(cfg))
	defer logFile.Close()

	log.Printf("Starting %s", cfg.Server.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	var verifier *auth.Verifier
	if cfg.Auth.Secret != "" {
		if verifier, err = auth.NewVerifier(cfg.Auth.Secret); err != nil {
			log.Fatalf("Failed to initialize auth: %v", err)
		}
	}

	var tcpServer *tcpserver.Server
	if cfg.Network.TCP.Enabled {
		tcpServer, err = tcpserver.NewServer(tcpserver.Options{
			Port:         cfg.Network.TCP.Port,
			AllowedCIDRs: cfg.Network.TCP.AllowedCIDRs,
			IdleTimeout:  time.Duration(cfg.Network.TCP.IdleTimeoutSec) * time.Second,
			MaxSessions:  cfg.Network.TCP.MaxSessions,
			Verifier:     verifier,
		}, a.newSession, &a.evalLock)
		if err != nil {
			log.Fatalf("Failed to create TCP server: %v", err)
		}
		go func() {
			if err := tcpServer.ListenAndServe(); err != nil {
				log.Fatalf("TCP server failed: %v", err)
			}
		}()
	}

	var httpServer *httpapi.Server
	if cfg.Network.HTTP.Enabled {
		httpServer, err = httpapi.NewServer(a.newSession, &a.evalLock, verifier, a.events)
		if err != nil {
			log.Fatalf("Failed to create HTTP server: %v", err)
		}
		go func() {
			if err := httpServer.ListenAndServe(cfg.Network.HTTP.Port); err != nil {
				log.Fatalf("HTTP server failed: %v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down servers...")

	if httpServer != nil {
		a.events.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		cancel()
	}
	if tcpServer != nil {
		if err := tcpServer.Close(); err != nil {
			log.Printf("TCP server shutdown error: %v", err)
		}
	}
	log.Println("Servers stopped")
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Evaluate commands interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			a, eng, err := localSession(ctx, "repl")
			if err != nil {
				return err
			}
			defer a.Close()

			editor := repl.NewLineEditor()
			defer editor.Close()
			return repl.Run(ctx, eng, editor, editor.Output(), nil)
		},
	}
}

func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <command>...",
		Short: "Evaluate one command line and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, eng, err := localSession(cmd.Context(), "eval")
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := eng.Exec(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return err
		},
	}
}

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an access token signed with the configured secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return fmt.Errorf("auth.secret is not configured")
			}
			verifier, err := auth.NewVerifier(cfg.Auth.Secret)
			if err != nil {
				return err
			}
			token, err := verifier.Sign(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}

// localSession builds the collaborators and a single engine for a
// command-line session. Logs stay on stderr.
func localSession(ctx context.Context, id string) (*app, *engine.Engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	eng, err := a.newSession(id)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, eng, nil
}
