package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/services"
	"github.com/c14220110/apotek-antrian-backend/pkg/channel"
)

const (
	modeWS   = "ws"
	modePoll = "poll"

	clearScreen = "\033[H\033[2J"
)

type options struct {
	apiURL  string
	wsURL   string
	mode    string
	refresh time.Duration
	poll    time.Duration
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:           "central-screen",
		Short:         "Layar antrian apotek di terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.complete(); err != nil {
				return err
			}
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.apiURL, "api", "http://localhost:8080", "Base URL backend antrian")
	flags.StringVar(&opts.wsURL, "ws", "", "URL push channel (default: diturunkan dari --api)")
	flags.StringVar(&opts.mode, "mode", modeWS, "Sumber update: ws atau poll")
	flags.DurationVar(&opts.refresh, "refresh", 2*time.Second, "Interval render layar")
	flags.DurationVar(&opts.poll, "poll-interval", channel.DefaultPollInterval, "Interval polling untuk --mode poll")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug ke stderr")
	return cmd
}

func (o *options) complete() error {
	switch o.mode {
	case modeWS, modePoll:
	default:
		return fmt.Errorf("invalid --mode %q (want %s or %s)", o.mode, modeWS, modePoll)
	}
	if o.refresh <= 0 || o.poll <= 0 {
		return fmt.Errorf("--refresh and --poll-interval must be positive")
	}
	if o.wsURL == "" {
		ws, err := deriveWSURL(o.apiURL)
		if err != nil {
			return err
		}
		o.wsURL = ws
	}
	return nil
}

// deriveWSURL http://host:port -> ws://host:port/ws
func deriveWSURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid --api: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid --api scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// run menjalankan loop channel dan loop render dalam satu errgroup. Kalau
// salah satu berhenti dengan error, yang lain ikut berhenti.
func run(ctx context.Context, opts options, out io.Writer) error {
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	client := channel.NewAPIClient(opts.apiURL)
	rec := services.NewReconciler(log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if opts.mode == modePoll {
			p := channel.NewPoller(client, rec, log)
			p.Completions = client
			p.Interval = opts.poll
			return p.Run(ctx)
		}
		return channel.NewSubscriber(opts.wsURL, client, rec, log).Run(ctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(opts.refresh)
		defer ticker.Stop()
		for {
			fmt.Fprint(out, clearScreen+renderBoard(rec.Board(), time.Now()))
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
	return g.Wait()
}
