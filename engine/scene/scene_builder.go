package scene

import (
	"github.com/tessera-gl/tessera/engine/camera"
	"github.com/tessera-gl/tessera/engine/game_object"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs.
// Non-ephemeral objects are persisted in the registry.
// Mesh GPU buffers for these objects are initialized lazily on the first Add
// of the same mesh or can be forced by adding through Scene.Add instead.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if obj.ID() == 0 {
				obj.SetID(s.nextID)
				s.nextID++
			}
			s.objects = append(s.objects, obj)
			if !obj.Ephemeral() {
				s.registry[obj.ID()] = obj
			}
		}
	}
}

// WithMatrixWorkers sets the number of worker goroutines used during the
// parallel model-matrix build phase of Update. Defaults to runtime.NumCPU()-1.
// Higher values may improve throughput with many objects; lower values reduce
// scheduling overhead for simple scenes.
//
// Parameters:
//   - n: the number of matrix workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMatrixWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.matrixWorkers = n
	}
}

// WithResizeStrategy sets the camera resize strategy applied when the surface
// size changes. Defaults to camera.ResizeKeepY.
//
// Parameters:
//   - strategy: the resize strategy for the scene's camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithResizeStrategy(strategy camera.ResizeStrategy) SceneBuilderOption {
	return func(s *scene) {
		s.resizeStrategy = strategy
	}
}
