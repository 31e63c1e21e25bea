package refcache

import (
	"github.com/kozaktomas/facegate/internal/facematch"
	"github.com/kozaktomas/facegate/internal/landmark"
)

// SignatureDim is the length of a sample signature vector: the 33 named
// key points flattened to x/y/z in canonical order.
const SignatureDim = 3 * 33

// Signature flattens a normalized capture's key points into a fixed
// vector, the representation shared by the shortlist index and the
// pgvector column. Missing points stay zero.
func Signature(n *facematch.Normalized) []float32 {
	out := make([]float32, SignatureDim)
	for i, l := range landmark.KeyLabels {
		p, ok := n.Lookup(l)
		if !ok {
			continue
		}
		out[i*3] = float32(p.X)
		out[i*3+1] = float32(p.Y)
		out[i*3+2] = float32(p.Z)
	}
	return out
}
