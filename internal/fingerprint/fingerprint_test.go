package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/finsight/chartpipe/model"
)

func baseRequest() *model.GenerationRequest {
	return &model.GenerationRequest{
		Symbol: "AAPL",
		Kind:   model.KindPrice,
		Config: model.RenderConfig{
			Theme:      "dark",
			Width:      800,
			Height:     600,
			Range:      "1y",
			Indicators: []string{"sma", "ema"},
			ShowVolume: true,
		},
		Inputs: map[string]any{
			"market_data": []float64{101.5, 102.25, 99.75},
			"symbol":      "AAPL",
		},
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	a, b := baseRequest(), baseRequest()
	require.Equal(t, Key(a), Key(b))
}

func TestKeyIgnoresNonAllowListedInputs(t *testing.T) {
	a, b := baseRequest(), baseRequest()
	b.Inputs["trace_id"] = "f3c1"
	b.Inputs["requested_at"] = "2026-08-24T10:00:00Z"
	require.Equal(t, Key(a), Key(b))
}

func TestKeyChangesWithAllowListedInputs(t *testing.T) {
	a, b := baseRequest(), baseRequest()
	b.Inputs["market_data"] = []float64{101.5}
	require.NotEqual(t, Key(a), Key(b))
}

func TestKeyChangesWithConfig(t *testing.T) {
	a, b := baseRequest(), baseRequest()
	b.Config.Theme = "light"
	require.NotEqual(t, Key(a), Key(b))
}

func TestKeyIgnoresIndicatorOrder(t *testing.T) {
	a, b := baseRequest(), baseRequest()
	a.Config.Indicators = []string{"ema", "sma"}
	b.Config.Indicators = []string{"sma", "ema"}
	require.Equal(t, Key(a), Key(b))
}

func TestKeyShape(t *testing.T) {
	key := Key(baseRequest())
	require.Regexp(t, `^chart:price:AAPL:[0-9a-f]{16}$`, key)
}

func TestInputsEmptyMarker(t *testing.T) {
	require.Equal(t, EmptyInputsDigest, Inputs(nil))
	require.Equal(t, EmptyInputsDigest, Inputs(map[string]any{}))
	// Only volatile metadata present counts as empty too.
	require.Equal(t, EmptyInputsDigest, Inputs(map[string]any{"trace_id": "f3c1"}))
}

func TestInputsKeyOrderIndependent(t *testing.T) {
	a := Inputs(map[string]any{
		"analysis": map[string]any{"trend": "up", "score": 0.82},
	})
	b := Inputs(map[string]any{
		"analysis": map[string]any{"score": 0.82, "trend": "up"},
	})
	require.Equal(t, a, b)
}
