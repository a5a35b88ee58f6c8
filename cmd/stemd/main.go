package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oarkflow/porter/config"
	"github.com/oarkflow/porter/logging"
	"github.com/oarkflow/porter/server"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file")
	envFile := flag.String("env", ".env", "dotenv file loaded before the config")
	watch := flag.Bool("watch", true, "reload the stemmer when the config file changes")
	flag.Parse()

	if err := run(*cfgPath, *envFile, *watch); err != nil {
		fmt.Fprintf(os.Stderr, "stemd: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, envFile string, watch bool) error {
	if err := config.LoadEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(log)

	srv, err := server.New(cfg, server.Options{Logger: log, AccessLog: os.Stdout})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watch && cfgPath != "" {
		go func() {
			err := config.Watch(ctx, cfgPath, func(c *config.Config) {
				if err := srv.Reload(c); err != nil {
					log.Error("config reload rejected", slog.String("err", err.Error()))
				}
			}, func(err error) {
				log.Warn("config reload failed", slog.String("err", err.Error()))
			})
			if err != nil {
				log.Error("config watcher stopped", slog.String("err", err.Error()))
			}
		}()
	}

	return srv.Run(ctx)
}
