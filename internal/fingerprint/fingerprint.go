// Package fingerprint derives stable cache keys from generation requests.
// Two requests that agree on symbol, kind, config and the allow-listed subset
// of their inputs always map to the same key, whatever other metadata they
// carry.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/finsight/chartpipe/model"
)

// allowed is the set of inputs fields that participate in fingerprinting, in
// the fixed order they are digested. Everything else on the inputs map is
// volatile metadata and must not influence the key.
var allowed = [...]string{"analysis", "market_data", "quotes", "symbol"}

// EmptyInputsDigest is the reserved marker for requests carrying no
// allow-listed data, so identical empty-data requests still dedupe.
const EmptyInputsDigest = "0000000000000000"

// Inputs digests the allow-listed subset of a request's inputs into 16 hex
// chars. Map serialization goes through encoding/json, which emits object
// keys sorted, so host-map iteration order never leaks into the digest.
func Inputs(in map[string]any) string {
	if len(in) == 0 {
		return EmptyInputsDigest
	}

	parts := make([]string, 0, len(allowed))
	for _, field := range allowed {
		v, ok := in[field]
		if !ok {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			// Unmarshalable values (channels etc.) still need a stable form.
			b = []byte(fmt.Sprintf("%v", v))
		}
		parts = append(parts, field+"="+string(b))
	}
	if len(parts) == 0 {
		return EmptyInputsDigest
	}

	sum := xxh3.Hash128([]byte(strings.Join(parts, ";")))
	return fmt.Sprintf("%016x", sum.Hi^sum.Lo)
}

// Key computes the full cache key for a request: kind and symbol kept
// readable, the tail a sha256 digest over the canonical serialization of
// {symbol, kind, config, fingerprint(inputs)}.
func Key(req *model.GenerationRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", req.Symbol, req.Kind, req.Config.Canonical(), Inputs(req.Inputs))
	return fmt.Sprintf("chart:%s:%s:%s", req.Kind, req.Symbol, hex.EncodeToString(h.Sum(nil)[:8]))
}
