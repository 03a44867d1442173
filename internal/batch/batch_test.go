package batch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/finsight/chartpipe/model"
)

func request(symbol string, prio model.Priority, trace string) *model.GenerationRequest {
	req := &model.GenerationRequest{
		Symbol:   symbol,
		Kind:     model.KindPrice,
		Priority: prio,
		Inputs:   map[string]any{"symbol": symbol},
	}
	if trace != "" {
		req.Inputs["trace_id"] = trace
	}
	return req
}

func symbols(reqs []*model.GenerationRequest) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Symbol
	}
	return out
}

func TestOptimizeDedupes(t *testing.T) {
	first := request("AAPL", model.PriorityNormal, "t-1")
	dup := request("AAPL", model.PriorityNormal, "t-2") // metadata differs, fingerprint does not

	out := Optimize([]*model.GenerationRequest{first, dup, request("MSFT", model.PriorityNormal, "")})
	require.Len(t, out, 2)
	require.Same(t, first, out[0], "first occurrence wins")
	require.Equal(t, "MSFT", out[1].Symbol)
}

func TestOptimizeFirstSeenKeepsItsPriority(t *testing.T) {
	// Priority does not participate in the fingerprint; later duplicates are
	// dropped even when they ask for more urgency.
	out := Optimize([]*model.GenerationRequest{
		request("AAPL", model.PriorityLow, ""),
		request("AAPL", model.PriorityUrgent, ""),
		request("AAPL", model.PriorityHigh, ""),
	})
	require.Len(t, out, 1)
	require.Equal(t, model.PriorityLow, out[0].Priority)
}

func TestOptimizeOrdersByPriority(t *testing.T) {
	out := Optimize([]*model.GenerationRequest{
		request("LOW", model.PriorityLow, ""),
		request("URGENT", model.PriorityUrgent, ""),
		request("NORMAL", model.PriorityNormal, ""),
		request("HIGH", model.PriorityHigh, ""),
	})
	require.Equal(t, []string{"URGENT", "HIGH", "NORMAL", "LOW"}, symbols(out))
}

func TestOptimizeStableWithinPriority(t *testing.T) {
	out := Optimize([]*model.GenerationRequest{
		request("A", model.PriorityNormal, ""),
		request("B", model.PriorityNormal, ""),
		request("C", model.PriorityNormal, ""),
	})
	require.Equal(t, []string{"A", "B", "C"}, symbols(out))
}

func TestOptimizeIdempotent(t *testing.T) {
	in := []*model.GenerationRequest{
		request("A", model.PriorityLow, ""),
		request("B", model.PriorityHigh, ""),
		request("A", model.PriorityLow, ""),
	}
	once := Optimize(in)
	twice := Optimize(once)
	require.Equal(t, once, twice)
}

func TestOptimizeLeavesInputUntouched(t *testing.T) {
	in := []*model.GenerationRequest{
		request("LOW", model.PriorityLow, ""),
		request("HIGH", model.PriorityHigh, ""),
	}
	_ = Optimize(in)
	require.Equal(t, []string{"LOW", "HIGH"}, symbols(in))
}

func TestOptimizeEmptyAndNil(t *testing.T) {
	require.Nil(t, Optimize(nil))
	require.Nil(t, Optimize([]*model.GenerationRequest{}))

	out := Optimize([]*model.GenerationRequest{nil, request("A", model.PriorityNormal, ""), nil})
	require.Equal(t, []string{"A"}, symbols(out))
}
