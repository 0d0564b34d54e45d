package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/gillohner/calky/cache"
	"github.com/gillohner/calky/calclient"
	"github.com/gillohner/calky/config"
	"github.com/gillohner/calky/internal/blobclient"
)

var (
	cfgPath string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "calky",
	Short:        "Calendar sync over a path-addressed blob store",
	Long:         `Manage calendars stored as single iCalendar documents in a remote object store, with conditional writes and a local snapshot cache.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultPath()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default: "+config.DefaultPath()+")")
}

// newClient builds the sync client from the loaded configuration.
func newClient() (calclient.Client, error) {
	if cfg.Owner == "" {
		return nil, errors.New("owner is not set; add it to the config file")
	}
	base, err := url.Parse(cfg.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote_url: %w", err)
	}

	httpClient := http.DefaultClient
	if cfg.BasicAuth != nil {
		httpClient = &http.Client{
			Transport: blobclient.NewBasicAuthTransport(cfg.BasicAuth.Username, cfg.BasicAuth.Password, nil, logger),
		}
	}

	blob, err := blobclient.New(httpClient, *base, logger)
	if err != nil {
		return nil, err
	}

	store := cache.NewFile(cfg.CachePath)
	return calclient.New(blob, store, cfg.Owner, logger,
		calclient.WithFreshWindow(cfg.FreshWindowDuration())), nil
}
