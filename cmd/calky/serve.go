package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gillohner/calky/blobserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a development blob store",
	Long:  `Starts an in-memory blob store speaking the object-store contract, so the full stack can run locally. Contents are lost on exit.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	srv := blobserver.New(logger)
	logger.Info("development blob store listening", "addr", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, srv.Handler()); err != nil {
		return fmt.Errorf("blob store stopped: %w", err)
	}
	return nil
}
