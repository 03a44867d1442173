// Package batch prepares request slices for pipelined execution.
package batch

import (
	"sort"

	"github.com/finsight/chartpipe/internal/fingerprint"
	"github.com/finsight/chartpipe/model"
)

// Optimize collapses fingerprint duplicates and orders the survivors by
// priority, highest first. Among duplicates the first occurrence wins; among
// equal priorities the original submission order is kept. The input slice is
// not modified, and Optimize(Optimize(x)) == Optimize(x).
func Optimize(reqs []*model.GenerationRequest) []*model.GenerationRequest {
	if len(reqs) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(reqs))
	out := make([]*model.GenerationRequest, 0, len(reqs))
	for _, req := range reqs {
		if req == nil {
			continue
		}
		key := fingerprint.Key(req)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, req)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
