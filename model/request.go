package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ArtifactKind is the closed set of chart artifacts the pipeline produces.
type ArtifactKind string

const (
	KindPrice       ArtifactKind = "price"
	KindCandlestick ArtifactKind = "candlestick"
	KindTechnical   ArtifactKind = "technical"
	KindComparison  ArtifactKind = "comparison"
)

// ParseKind maps a tag to its ArtifactKind, rejecting anything outside the
// closed set.
func ParseKind(s string) (ArtifactKind, error) {
	switch k := ArtifactKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPrice, KindCandlestick, KindTechnical, KindComparison:
		return k, nil
	default:
		return "", fmt.Errorf("unknown artifact kind %q", s)
	}
}

// RenderConfig holds the rendering options of a request. It is data, not
// behavior: only its canonical form participates in cache keys.
type RenderConfig struct {
	Theme      string   `json:"theme"      yaml:"theme"`
	Width      int      `json:"width"      yaml:"width"`
	Height     int      `json:"height"     yaml:"height"`
	Range      string   `json:"range"      yaml:"range"`
	Indicators []string `json:"indicators" yaml:"indicators"`
	ShowVolume bool     `json:"show_volume" yaml:"show_volume"`
}

// Canonical serializes the config with a fixed field order so that equal
// configs always produce equal strings. Indicators are sorted: the set of
// overlays matters, their listing order does not.
func (c RenderConfig) Canonical() string {
	ind := append([]string(nil), c.Indicators...)
	sort.Strings(ind)
	return fmt.Sprintf("theme=%s;w=%d;h=%d;range=%s;ind=%s;vol=%t",
		c.Theme, c.Width, c.Height, c.Range, strings.Join(ind, ","), c.ShowVolume)
}

// GenerationRequest asks the pipeline for one derived artifact.
//
// Inputs carries the data the artifact is computed from. Only allow-listed
// fields of it participate in fingerprinting, so attaching volatile metadata
// (wall-clock stamps, trace ids) does not defeat caching.
type GenerationRequest struct {
	Symbol      string
	Kind        ArtifactKind
	Config      RenderConfig
	Inputs      map[string]any
	Priority    Priority
	RequestedAt time.Time
}
