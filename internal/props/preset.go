/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package props

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

var ErrInvalidPreset = errors.New("props: invalid preset")

// presetSchema builds the JSON Schema for preset documents from the
// property table, so the two cannot drift apart.
func presetSchema() map[string]any {
	propsSchema := make(map[string]any, len(schema))
	for name, f := range schema {
		switch f.kind {
		case kindNumber:
			propsSchema[name] = map[string]any{"type": []string{"number", "string"}}
		case kindBool:
			propsSchema[name] = map[string]any{"type": "boolean"}
		case kindPattern:
			propsSchema[name] = map[string]any{"type": "string", "enum": []string{"solid", "dashed", "dotted"}}
		default:
			propsSchema[name] = map[string]any{"type": "string", "minLength": 1}
		}
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"additionalProperties": false,
		"properties":           propsSchema,
	}
}

// ParsePreset decodes a YAML (or JSON) preset and validates it against the
// property schema.
func ParsePreset(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	for k, v := range doc {
		// JSON has no infinities; keep them as strings for validation.
		if f, ok := v.(float64); ok && math.IsInf(f, 0) {
			doc[k] = fmt.Sprint(f)
		}
	}
	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(presetSchema()), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		sort.Strings(msgs)
		return nil, fmt.Errorf("%w: %s", ErrInvalidPreset, strings.Join(msgs, "; "))
	}
	return doc, nil
}

// ApplyPreset validates data and sets every property it names. Nothing is
// changed when validation fails.
func (p *Props) ApplyPreset(data []byte) error {
	doc, err := ParsePreset(data)
	if err != nil {
		return err
	}
	next := *p
	names := make([]string, 0, len(doc))
	for k := range doc {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := next.Set(k, doc[k]); err != nil {
			return err
		}
	}
	*p = next
	return nil
}

// LoadPresetFile applies the preset stored at path.
func (p *Props) LoadPresetFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read preset: %w", err)
	}
	return p.ApplyPreset(data)
}

// MarshalPreset writes every property as a YAML preset.
func (p *Props) MarshalPreset() ([]byte, error) {
	doc := make(map[string]any, len(schema))
	for name := range schema {
		v, _ := p.Get(name)
		if f, ok := v.(float64); ok && math.IsInf(f, 0) {
			v = fmt.Sprint(f)
		}
		doc[name] = v
	}
	return yaml.Marshal(doc)
}
