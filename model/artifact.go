package model

import "time"

// Artifact is one generated chart. The cache stores and returns copies only,
// so mutating an Artifact received from the pipeline never corrupts a tier.
type Artifact struct {
	Symbol      string       `json:"symbol"`
	Kind        ArtifactKind `json:"kind"`
	ContentType string       `json:"content_type"`
	Data        []byte       `json:"data"`
	GeneratedAt time.Time    `json:"generated_at"`
}

func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Data = append([]byte(nil), a.Data...)
	return &cp
}
