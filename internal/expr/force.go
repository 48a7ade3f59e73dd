package expr

import "github.com/born-ml/etl/internal/tensor"

// Materializer is implemented by nodes computed ahead of evaluation.
type Materializer interface {
	// Materialize computes the node and reports whether this call did so.
	Materialize() bool
}

// Direct is implemented by temporaries able to write a destination themselves.
type Direct[T tensor.Numeric] interface {
	DirectEvaluate(dst tensor.Destination[T])
}

type hostSyncer interface {
	EnsureHostCurrent()
}

// Force walks the tree rooted at n children first, materializing every
// temporary and making every container read by the tree current on the
// host. It returns the number of temporaries it materialized.
func Force(n tensor.Node) int {
	created := 0
	for _, c := range n.Children() {
		created += Force(c)
	}
	switch v := n.(type) {
	case Materializer:
		if v.Materialize() {
			created++
		}
	case hostSyncer:
		v.EnsureHostCurrent()
	}
	return created
}
