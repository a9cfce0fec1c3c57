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

// Package noise implements the deterministic Laplace sampler SDPWA
// releases are noised with. Draws are a pure function of (seed,
// window_start_ms, metric_name, scale): the same inputs always produce
// the same f64 output, on any compliant host, native or WebAssembly.
//
// A fresh 32-byte subkey is derived per draw with HKDF-SHA256, keyed off
// the caller's seed and domain-separated by the (window_start_ms,
// metric_name) label. The subkey seeds a ChaCha20 counter-mode stream,
// from which two uniform 64-bit words are drawn and folded into a
// single high-precision uniform in (-1/2, 1/2), converted to a Laplace
// sample by a fixed-order arithmetic path.
package noise

import (
	"crypto/sha256"
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"

	"github.com/rulego/sdpwa/errs"
)

// newSHA256 adapts sha256.New to hkdf.New's func() hash.Hash parameter.
var newSHA256 = sha256.New

// zeroNonce is safe to reuse across every draw because the HKDF subkey
// is already domain-separated per (window_start_ms, metric_name); reuse
// under a fixed, unique key is exactly what counter-mode stream ciphers
// are for.
var zeroNonce = make([]byte, chacha20.NonceSize)

// maxResampleAttempts bounds the (astronomically unlikely) boundary
// resample loop so Draw can never spin forever.
const maxResampleAttempts = 8

// Engine draws deterministic Laplace noise for a single aggregator
// instance's seed.
type Engine struct {
	seed []byte
}

// New builds an Engine from the caller-supplied seed. The seed must be
// non-empty.
func New(seed []byte) (*Engine, error) {
	if len(seed) == 0 {
		return nil, errs.New(errs.KindInvalidConfig, "seed must not be empty")
	}
	cp := make([]byte, len(seed))
	copy(cp, seed)
	return &Engine{seed: cp}, nil
}

// Draw produces one Laplace(0, scale) sample labeled by
// (windowStartMs, metric). scale must be > 0; any other scale fails with
// KindInternalInvariant. Callers derive it from sensitivity / epsilon:
// epsilon is validated positive upstream, while sensitivity is 0 when
// both value bounds are 0.
func (e *Engine) Draw(windowStartMs int64, metric string, scale float64) (float64, error) {
	if !(scale > 0) {
		return 0, errs.New(errs.KindInternalInvariant, "laplace scale must be > 0, got %v", scale)
	}

	subkey, err := e.subkey(windowStartMs, metric)
	if err != nil {
		return 0, err
	}

	stream, err := chacha20.NewUnauthenticatedCipher(subkey, zeroNonce)
	if err != nil {
		return 0, errs.New(errs.KindInternalInvariant, "noise stream init failed: %v", err)
	}

	buf := make([]byte, 16)
	zeros := make([]byte, 16)
	for attempt := 0; attempt < maxResampleAttempts; attempt++ {
		stream.XORKeyStream(buf, zeros)
		hi := binary.BigEndian.Uint64(buf[0:8])
		lo := binary.BigEndian.Uint64(buf[8:16])

		u := uniformSigned(hi, lo)
		if u <= -0.5 {
			// float64 rounding puts u exactly on the -1/2 boundary whenever
			// hi is tiny (hi == lo == 0 included); resample.
			continue
		}
		return laplaceFromUniform(u, scale), nil
	}
	return 0, errs.New(errs.KindInternalInvariant, "noise sampler failed to resample a non-boundary uniform")
}

// subkey derives a fresh 32-byte key via HKDF-SHA256, with `info` set to
// a domain-separation label built from the window start and metric name
// so every (window, metric) pair draws from an independent stream.
func (e *Engine) subkey(windowStartMs int64, metric string) ([]byte, error) {
	info := make([]byte, 8+len(metric))
	binary.BigEndian.PutUint64(info[:8], uint64(windowStartMs))
	copy(info[8:], metric)

	r := hkdf.New(newSHA256, e.seed, nil, info)
	key := make([]byte, chacha20.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errs.New(errs.KindInternalInvariant, "subkey derivation failed: %v", err)
	}
	return key, nil
}

// uniformSigned folds two uniform 64-bit words into one high-precision
// uniform real in [-1/2, 1/2). hi supplies the dominant bits, lo refines
// the fraction; the combination is deterministic and order-fixed. Draw
// resamples the -1/2 boundary.
func uniformSigned(hi, lo uint64) float64 {
	const twoPow64 = 18446744073709551616.0 // 2^64
	frac := float64(hi)/twoPow64 + float64(lo)/(twoPow64*twoPow64)
	if frac >= 1 {
		// float64(hi) rounds up to 2^64 for hi near math.MaxUint64; keep
		// frac below 1 so u stays below 1/2.
		frac = math.Nextafter(1, 0)
	}
	return frac - 0.5
}

// laplaceFromUniform converts u in (-1/2, 1/2) to a Laplace(0, scale)
// sample via inverse-CDF sampling, in a fixed operation order: sign(u) first, then the logarithm of the folded magnitude.
func laplaceFromUniform(u, scale float64) float64 {
	sign := 1.0
	if u < 0 {
		sign = -1.0
	}
	magnitude := math.Abs(u)
	return -scale * sign * math.Log(1-2*magnitude)
}
