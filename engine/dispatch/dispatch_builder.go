package dispatch

import "github.com/tessera-gl/tessera/engine/atlas"

// DispatcherBuilderOption is a functional option for configuring a Dispatcher via NewDispatcher.
type DispatcherBuilderOption func(*dispatcherImpl)

// WithAtlas is an option builder that sets the atlas used to resolve rect
// handles for atlas-variant batches.
//
// Parameters:
//   - a: the atlas to resolve handles against
//
// Returns:
//   - DispatcherBuilderOption: a function that applies the atlas option to a dispatcher
func WithAtlas(a atlas.Atlas) DispatcherBuilderOption {
	return func(d *dispatcherImpl) {
		d.atlas = a
	}
}
