/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/carverauto/visionradar/pkg/config"
	"github.com/carverauto/visionradar/pkg/dashboard"
	"github.com/carverauto/visionradar/pkg/lifecycle"
	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/tui"
	"github.com/carverauto/visionradar/pkg/version"
)

const (
	logFileName     = "visionradar-dashboard.log"
	shutdownTimeout = 10 * time.Second
)

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to dashboard config file (optional)")
	headless := flag.Bool("headless", false, "Run without the terminal UI and log to stdout")
	flag.Parse()

	ctx := context.Background()

	var cfg dashboard.Config

	cfgLoader := config.NewConfig(nil)

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	if *headless {
		return runHeadless(ctx, &cfg)
	}

	return runUI(ctx, &cfg)
}

// runHeadless runs the poll and push loops alone. Useful for smoke
// testing a backend and for environments without a terminal.
func runHeadless(ctx context.Context, cfg *dashboard.Config) error {
	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = &logger.Config{
			Level:  "info",
			Output: "stdout",
		}
	}

	appLogger, err := lifecycle.CreateComponentLogger(ctx, "dashboard", logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info().Str("version", version.GetFullVersion()).Msg("Starting visionradar dashboard")

	app, err := dashboard.New(cfg, appLogger)
	if err != nil {
		return err
	}

	return lifecycle.Run(ctx, app, appLogger)
}

// runUI runs the app behind the terminal dashboard. The alternate
// screen owns stdout, so logs are redirected to a file for the whole
// session.
func runUI(ctx context.Context, cfg *dashboard.Config) error {
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	level := zerolog.InfoLevel

	if cfg.Logging != nil && cfg.Logging.Level != "" {
		level, err = zerolog.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
	}

	zlog := zerolog.New(logFile).
		Level(level).
		With().
		Timestamp().
		Str("component", "dashboard").
		Logger()

	appLogger := logger.NewWithZerolog(zlog)
	appLogger.Info().Str("version", version.GetFullVersion()).Msg("Starting visionradar dashboard")

	app, err := dashboard.New(cfg, appLogger)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- app.Start(runCtx)
	}()

	uiErr := tui.Run(app)

	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		appLogger.Error().Err(err).Msg("Error stopping dashboard")
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error().Err(err).Msg("Dashboard exited with error")
	}

	return uiErr
}
