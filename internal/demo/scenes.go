/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package demo

import (
	"fmt"
	"sort"

	"prairiedraw/internal/export"
)

// Scenes returns a fresh instance of every demo scene keyed by name.
// Scenes carry frame-to-frame state, so each render gets its own.
func Scenes() map[string]export.Scene {
	return map[string]export.Scene{
		"fourbar": NewWiperScene().Scene(),
		"gallery": Gallery(),
	}
}

// Names lists the demo scenes in order.
func Names() []string {
	var out []string
	for name := range Scenes() {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns a fresh scene by name.
func Lookup(name string) (export.Scene, error) {
	sc, ok := Scenes()[name]
	if !ok {
		return export.Scene{}, fmt.Errorf("unknown scene %q (have %v)", name, Names())
	}
	return sc, nil
}
