package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todo_webapp/internal/client"
	"todo_webapp/internal/config"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/ui"
)

func main() {
	cfgPath := flag.String("config", config.DefaultClientConfigPath(), "client config file (TOML)")
	server := flag.String("server", "", "server URL, overrides the config file")
	flag.Parse()

	cfg, err := config.LoadClient(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.ServerURL = *server
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.ServerURL, cfg.RequestTimeout.Duration)
	q := domain.ParseQuery(cfg.DefaultFilter, cfg.DefaultSort)
	if err := ui.Run(ctx, api, q); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
