package bonjson

// DefaultMaxDepth is the default maximum container nesting depth enforced
// by both Decoder and Encoder (spec.md §5, §9): "a fixed-size inline array
// in each context (default depth 256)". Implementations here use a slice
// pre-allocated to this capacity rather than a literal Go array, since Go
// has no zero-cost fixed-capacity array type generic over a runtime-chosen
// depth; the allocation still happens exactly once, at construction, never
// on the per-value hot path.
const DefaultMaxDepth = 256

type frameKind int8

const (
	frameArray frameKind = iota
	frameObject
)

// frame is one entry of the container stack shared in spirit by Decoder
// and Encoder (spec.md §3's "Container stack frame"). chunked distinguishes
// a sentinel-length container, which closes only via an explicit
// end-container marker, from a counted container, which closes implicitly
// once remaining reaches zero.
type frame struct {
	kind         frameKind
	chunked      bool
	remaining    uint64
	expectingKey bool // object-only: true if the next scalar must be a key
}
