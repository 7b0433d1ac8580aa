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
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/carverauto/visionradar/pkg/config"
	"github.com/carverauto/visionradar/pkg/faker"
	"github.com/carverauto/visionradar/pkg/lifecycle"
	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/version"
)

//go:embed config.json
var defaultConfig []byte

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to faker config file (optional; embedded defaults apply)")
	flag.Parse()

	ctx := context.Background()

	var cfg faker.Config

	// Embedded defaults seed the config; a file and environment
	// variables layer on top.
	if err := json.Unmarshal(defaultConfig, &cfg); err != nil {
		return fmt.Errorf("embedded config invalid: %w", err)
	}

	cfgLoader := config.NewConfig(nil)

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = &logger.Config{
			Level:  "info",
			Output: "stdout",
		}
	}

	fakerLogger, err := lifecycle.CreateComponentLogger(ctx, "faker", logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	fakerLogger.Info().Str("version", version.GetFullVersion()).Msg("Starting visionradar-faker")

	srv, err := faker.New(&cfg, fakerLogger)
	if err != nil {
		return err
	}

	return lifecycle.Run(ctx, srv, fakerLogger)
}
