/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package preview serves a live animated scene over HTTP. The latest frame
// is available as PNG, options can be read and changed, and a websocket
// streams frame notifications while accepting pointer events.
//
// All access to the animator happens on one loop goroutine; HTTP and
// websocket handlers hand it closures through a channel.
package preview

import (
	"github.com/kelseyhightower/envconfig"
)

// Config is read from PD_PREVIEW_* environment variables.
type Config struct {
	Addr    string   `envconfig:"ADDR" default:"127.0.0.1:8787"`
	Width   int      `envconfig:"WIDTH" default:"600"`
	Height  int      `envconfig:"HEIGHT" default:"400"`
	FPS     int      `envconfig:"FPS" default:"30"`
	Origins []string `envconfig:"ORIGINS" default:"localhost:*,127.0.0.1:*"`
	// Auth requires an HS256 bearer token on everything but /health.
	Auth bool `envconfig:"AUTH" default:"false"`
}

// LoadConfig processes the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("PD_PREVIEW", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 600
	}
	if c.Height <= 0 {
		c.Height = 400
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	return c
}
