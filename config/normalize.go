/*
 * Copyright 2025 The RuleGo Authors.
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

package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/rulego/sdpwa/errs"
)

// aliases maps every accepted snake_case or camelCase key (at either
// nesting level) to its canonical snake_case path. The deterministic
// hash canonicalization downstream always uses the snake_case form.
var aliases = map[string]string{
	"epsilon_count":                "dp.epsilon_count",
	"epsilonCount":                 "dp.epsilon_count",
	"epsilon_sum":                  "dp.epsilon_sum",
	"epsilonSum":                   "dp.epsilon_sum",
	"delta_per_window":             "dp.delta_per_window",
	"deltaPerWindow":               "dp.delta_per_window",
	"ledger_delta_tolerance":       "dp.ledger_delta_tolerance",
	"ledgerDeltaTolerance":         "dp.ledger_delta_tolerance",
	"target_delta":                 "dp.target_delta",
	"targetDelta":                  "dp.target_delta",
	"epsilon_cap":                  "dp.epsilon_cap",
	"epsilonCap":                   "dp.epsilon_cap",
	"max_contributions_per_window": "bounds.max_contributions_per_window",
	"maxContributionsPerWindow":    "bounds.max_contributions_per_window",
	"min_value":                    "bounds.min_value",
	"minValue":                     "bounds.min_value",
	"max_value":                    "bounds.max_value",
	"maxValue":                     "bounds.max_value",
	"window_size":                  "window.window_size",
	"windowSize":                   "window.window_size",
	"window_stride":                "window.window_stride",
	"windowStride":                 "window.window_stride",
	"origin_ms":                    "window.origin_ms",
	"originMs":                     "window.origin_ms",
}

// recognized is the full set of canonical keys the boundary accepts.
// Normalize rejects any field that doesn't map to one of these, so a
// host-side typo produces a loud InvalidConfig instead of silently
// keeping a zero-value default.
var recognized = func() map[string]bool {
	m := make(map[string]bool, len(aliases))
	for _, canon := range aliases {
		m[canon] = true
	}
	return m
}()

// Normalize converts a dynamic-typed configuration object — as received
// across a host or WASM binding, with possibly camelCase keys and
// string-encoded durations — into a validated Config. `raw` may nest
// either as {"dp": {...}, "bounds": {...}, "window": {...}} or as a
// single flat map; both forms, and both key cases, are accepted.
func Normalize(raw map[string]interface{}) (Config, error) {
	flat := make(map[string]interface{})
	flatten("", raw, flat)

	canon := make(map[string]interface{}, len(flat))
	for k, v := range flat {
		target, ok := resolveKey(k)
		if !ok {
			return Config{}, errs.New(errs.KindInvalidConfig, "unrecognized configuration field %q", k)
		}
		canon[target] = v
	}

	var c Config
	var err error

	if c.DP.EpsilonCount, err = floatField(canon, "dp.epsilon_count"); err != nil {
		return Config{}, err
	}
	if c.DP.EpsilonSum, err = floatField(canon, "dp.epsilon_sum"); err != nil {
		return Config{}, err
	}
	if c.DP.DeltaPerWindow, err = floatField(canon, "dp.delta_per_window"); err != nil {
		return Config{}, err
	}
	if c.DP.LedgerDeltaTol, err = floatField(canon, "dp.ledger_delta_tolerance"); err != nil {
		return Config{}, err
	}
	if c.DP.TargetDelta, err = floatField(canon, "dp.target_delta"); err != nil {
		return Config{}, err
	}
	// epsilon_cap is optional; absent means "disabled" (0).
	if v, ok := canon["dp.epsilon_cap"]; ok {
		if c.DP.EpsilonCap, err = cast.ToFloat64E(v); err != nil {
			return Config{}, errs.New(errs.KindInvalidConfig, "dp.epsilon_cap: %v", err)
		}
	}

	maxContrib, err := cast.ToUint64E(mustField(canon, "bounds.max_contributions_per_window"))
	if err != nil {
		return Config{}, errs.New(errs.KindInvalidConfig, "bounds.max_contributions_per_window: %v", err)
	}
	c.Bounds.MaxContributionsPerWindow = maxContrib

	if c.Bounds.MinValue, err = floatField(canon, "bounds.min_value"); err != nil {
		return Config{}, err
	}
	if c.Bounds.MaxValue, err = floatField(canon, "bounds.max_value"); err != nil {
		return Config{}, err
	}

	if c.Window.Size, err = durationField(canon, "window.window_size"); err != nil {
		return Config{}, err
	}
	if c.Window.Stride, err = durationField(canon, "window.window_stride"); err != nil {
		return Config{}, err
	}
	if v, ok := canon["window.origin_ms"]; ok {
		origin, cerr := cast.ToInt64E(v)
		if cerr != nil {
			return Config{}, errs.New(errs.KindInvalidConfig, "window.origin_ms: %v", cerr)
		}
		c.Window.OriginMs = origin
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// flatten walks nested maps, producing dotted keys ("dp.epsilonCount")
// alongside the bare leaf key, so both "dp.epsilon_count" and
// "epsilon_count" resolve.
func flatten(prefix string, in map[string]interface{}, out map[string]interface{}) {
	for k, v := range in {
		dotted := k
		if prefix != "" {
			dotted = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flatten(dotted, nested, out)
			continue
		}
		out[dotted] = v
		out[k] = v
	}
}

// resolveKey maps an accepted key — bare ("epsilonCount"), canonical
// dotted ("dp.epsilon_count"), or dotted with a camelCase leaf
// ("dp.epsilonCount") — to its canonical snake_case path.
func resolveKey(k string) (string, bool) {
	if target, ok := aliases[k]; ok {
		return target, true
	}
	if recognized[k] {
		return k, true
	}
	if i := strings.LastIndex(k, "."); i >= 0 {
		if target, ok := aliases[k[i+1:]]; ok && strings.HasPrefix(target, k[:i+1]) {
			return target, true
		}
	}
	return "", false
}

func mustField(m map[string]interface{}, key string) interface{} {
	return m[key]
}

func floatField(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, errs.New(errs.KindInvalidConfig, "missing required field %q", key)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, errs.New(errs.KindInvalidConfig, "%s: %v", key, err)
	}
	return f, nil
}

// durationField accepts a native time.Duration, a bare number of
// milliseconds, or a string with an "ms" suffix, and returns a time.Duration.
func durationField(m map[string]interface{}, key string) (time.Duration, error) {
	v, ok := m[key]
	if !ok {
		return 0, errs.New(errs.KindInvalidConfig, "missing required field %q", key)
	}
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		s := strings.TrimSpace(d)
		if strings.HasSuffix(s, "ms") {
			ms, err := strconv.ParseFloat(strings.TrimSuffix(s, "ms"), 64)
			if err != nil {
				return 0, errs.New(errs.KindInvalidConfig, "%s: invalid duration string %q", key, d)
			}
			return time.Duration(ms * float64(time.Millisecond)), nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, errs.New(errs.KindInvalidConfig, "%s: invalid duration string %q", key, d)
		}
		return parsed, nil
	default:
		ms, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, errs.New(errs.KindInvalidConfig, "%s: %v", key, err)
		}
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
}
