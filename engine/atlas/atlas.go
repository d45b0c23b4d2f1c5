package atlas

import (
	"fmt"
	"image"
	"image/draw"
	"sort"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tessera-gl/tessera/common"
)

// Rect addresses a sub-region of the atlas texture in texel units.
// Invariant: X+Width <= atlas width and Y+Height <= atlas height for any live rect.
type Rect struct {
	// X, Y is the texel offset of the region's top-left corner.
	X, Y uint32
	// Width, Height is the texel size of the region.
	Width, Height uint32
}

// Handle is a stable, versioned reference to an allocated atlas region.
// Callers hold Handles, never raw Rects — the rect behind a handle may move
// when the atlas is grown and repacked, and the level of indirection keeps
// already-submitted instance data valid across a repack. The zero Handle is
// never issued by an Atlas.
type Handle struct {
	index   uint32
	version uint32
}

// shelf is one horizontal strip of the atlas. Regions are placed left to right;
// the shelf height is fixed by the first region that opened it.
type shelf struct {
	y      uint32
	height uint32
	x      uint32
}

// entry is the live-rect record behind a Handle.
type entry struct {
	rect    Rect
	version uint32
	live    bool
	// pixels is the staged RGBA sub-image for this region, or nil if the caller
	// uploads texels through some other path.
	pixels []byte
}

// atlasImpl is the implementation of the Atlas interface.
type atlasImpl struct {
	mu *sync.Mutex

	width   uint32
	height  uint32
	padding uint32

	shelves []shelf
	entries []entry
	// freed holds whole released rects for reuse. No compaction is ever
	// attempted — compaction would move live rects out from under issued
	// handles mid-frame.
	freed []Rect

	sampler common.SamplerStagingData

	usedArea uint64
	dirty    bool
}

// Atlas packs many source images into one shared texture and hands back stable,
// versioned rectangle handles. All three pipeline variants sample the same bound
// atlas texture; packing many sub-images into it is what keeps texture bindings
// and draw-call count down.
//
// Allocation uses shelf packing: horizontal shelves of fixed height, best-fit
// selection among shelves that can hold the request, a new shelf while vertical
// space remains. Mutation (Allocate/Release/SetPixels/Grow) is single-writer;
// the internal mutex serializes concurrent callers.
type Atlas interface {
	// Width returns the current atlas texture width in texels.
	//
	// Returns:
	//   - uint32: the width in texels
	Width() uint32

	// Height returns the current atlas texture height in texels.
	//
	// Returns:
	//   - uint32: the height in texels
	Height() uint32

	// Allocate reserves a free region of at least width x height texels.
	// Shelves that can hold the request are preferred in best-fit order (least
	// wasted width, then least wasted height); a new shelf is opened while
	// vertical space remains; released regions are reused last. A failed
	// allocation is a no-op on the allocator's accounting.
	//
	// Parameters:
	//   - width: requested region width in texels (must be > 0)
	//   - height: requested region height in texels (must be > 0)
	//
	// Returns:
	//   - Handle: a stable versioned handle to the reserved region
	//   - error: ErrAtlasFull if no region can satisfy the request
	Allocate(width, height uint32) (Handle, error)

	// Release marks the handle's region free for reuse by future Allocate calls
	// of the same or smaller size. The handle becomes stale immediately; any
	// later use returns ErrStaleHandle. No compaction is performed.
	//
	// Parameters:
	//   - h: the handle to release
	//
	// Returns:
	//   - error: ErrStaleHandle if the handle is not live
	Release(h Handle) error

	// Rect resolves a handle to its current rectangle. The rect is only valid
	// until the next Grow — callers that need durability should hold the Handle
	// and re-resolve.
	//
	// Parameters:
	//   - h: the handle to resolve
	//
	// Returns:
	//   - Rect: the current rectangle in texel units
	//   - error: ErrStaleHandle if the handle is not live
	Rect(h Handle) (Rect, error)

	// Remap converts a mesh-local [0,1] uv coordinate into the normalized atlas
	// coordinate for the handle's region:
	//
	//	adjusted = offset/dimensions + uv * size/dimensions
	//
	// computed against the current texture dimensions, queried at call time.
	// This exact formula is what the atlas fragment contract evaluates on the
	// GPU; host-side callers use it for CPU-built overlay geometry. uv values
	// outside [0,1] are legal (tiling meshes) and are remapped by the same
	// affine rule.
	//
	// Parameters:
	//   - h: the handle whose region maps the uv
	//   - u, v: the mesh-local texture coordinate
	//
	// Returns:
	//   - float32: the normalized atlas u coordinate
	//   - float32: the normalized atlas v coordinate
	//   - error: ErrStaleHandle or ErrRectOutOfBounds
	Remap(h Handle, u, v float32) (float32, float32, error)

	// SetPixels stages RGBA pixel data for the handle's region, to be composited
	// into the atlas texture by StagingData. len(pixels) must equal
	// rect.Width*rect.Height*4.
	//
	// Parameters:
	//   - h: the handle whose region the pixels fill
	//   - pixels: tightly packed RGBA data, row-major
	//
	// Returns:
	//   - error: ErrStaleHandle or ErrPixelSizeMismatch
	SetPixels(h Handle, pixels []byte) error

	// Register is the common Allocate+SetPixels path: it reserves a region for
	// the image and stages its pixels in one call.
	//
	// Parameters:
	//   - pixels: tightly packed RGBA data, row-major
	//   - width: image width in texels
	//   - height: image height in texels
	//
	// Returns:
	//   - Handle: a stable versioned handle to the image's region
	//   - error: ErrAtlasFull or ErrPixelSizeMismatch
	Register(pixels []byte, width, height uint32) (Handle, error)

	// RegisterImage converts a decoded image to RGBA and registers it. Decode
	// the source with the stdlib image codecs (png, jpeg) before calling.
	//
	// Parameters:
	//   - img: the decoded image
	//
	// Returns:
	//   - Handle: a stable versioned handle to the image's region
	//   - error: ErrAtlasFull
	RegisterImage(img image.Image) (Handle, error)

	// Grow repacks every live region into a larger texture. All live handles
	// remain valid; only the rects behind them change, which is why instance
	// records carry handles rather than baked normalized UVs. On failure the
	// atlas is left untouched.
	//
	// Parameters:
	//   - width: the new texture width (must be >= current)
	//   - height: the new texture height (must be >= current)
	//
	// Returns:
	//   - error: ErrAtlasFull if the live set cannot be packed into the new size
	Grow(width, height uint32) error

	// StagingData composites all staged sub-images into one RGBA buffer at their
	// packed rects and returns it for GPU upload, clearing the dirty flag.
	//
	// Returns:
	//   - common.TextureStagingData: the composited atlas pixels and dimensions
	StagingData() common.TextureStagingData

	// SamplerData returns the sampler configuration shared by every pipeline
	// variant sampling this atlas.
	//
	// Returns:
	//   - common.SamplerStagingData: the sampler configuration
	SamplerData() common.SamplerStagingData

	// Dirty reports whether staged pixels have changed since the last
	// StagingData call, i.e. whether the GPU texture needs a re-upload.
	//
	// Returns:
	//   - bool: true if a re-upload is needed
	Dirty() bool

	// Utilization returns the fraction of the atlas area covered by live regions.
	//
	// Returns:
	//   - float64: used area / total area, in [0, 1]
	Utilization() float64
}

var _ Atlas = &atlasImpl{}

// NewAtlas creates a new Atlas with the given options. Defaults: 512x512 texels,
// no padding, clamp-to-edge linear-filtered sampler.
//
// Parameters:
//   - options: functional options to configure the atlas
//
// Returns:
//   - Atlas: the newly created atlas
func NewAtlas(options ...AtlasBuilderOption) Atlas {
	a := &atlasImpl{
		mu:     &sync.Mutex{},
		width:  512,
		height: 512,
		sampler: common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
			MagFilter:    wgpu.FilterModeLinear,
			MinFilter:    wgpu.FilterModeLinear,
			MipmapFilter: wgpu.MipmapFilterModeNearest,
			LodMaxClamp:  32,
		},
	}
	for _, option := range options {
		option(a)
	}
	return a
}

func (a *atlasImpl) Width() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.width
}

func (a *atlasImpl) Height() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.height
}

func (a *atlasImpl) Allocate(width, height uint32) (Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rect, ok := a.place(width, height)
	if !ok {
		return Handle{}, fmt.Errorf("allocate %dx%d in %dx%d atlas: %w", width, height, a.width, a.height, ErrAtlasFull)
	}
	return a.newEntry(rect), nil
}

func (a *atlasImpl) Release(h Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, err := a.resolve(h)
	if err != nil {
		return err
	}
	e.live = false
	e.version++
	e.pixels = nil
	a.freed = append(a.freed, e.rect)
	a.usedArea -= uint64(e.rect.Width) * uint64(e.rect.Height)
	a.dirty = true
	return nil
}

func (a *atlasImpl) Rect(h Handle) (Rect, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, err := a.resolve(h)
	if err != nil {
		return Rect{}, err
	}
	return e.rect, nil
}

func (a *atlasImpl) Remap(h Handle, u, v float32) (float32, float32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, err := a.resolve(h)
	if err != nil {
		return 0, 0, err
	}
	r := e.rect
	if r.X+r.Width > a.width || r.Y+r.Height > a.height {
		return 0, 0, fmt.Errorf("rect (%d,%d %dx%d) on %dx%d texture: %w", r.X, r.Y, r.Width, r.Height, a.width, a.height, ErrRectOutOfBounds)
	}

	// adjusted = offset/dimensions + uv * size/dimensions, against the current
	// dimensions. The fragment contract evaluates the identical expression.
	w := float32(a.width)
	ht := float32(a.height)
	au := float32(r.X)/w + u*float32(r.Width)/w
	av := float32(r.Y)/ht + v*float32(r.Height)/ht
	return au, av, nil
}

func (a *atlasImpl) SetPixels(h Handle, pixels []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, err := a.resolve(h)
	if err != nil {
		return err
	}
	want := int(e.rect.Width) * int(e.rect.Height) * 4
	if len(pixels) != want {
		return fmt.Errorf("got %d bytes, want %d for %dx%d region: %w", len(pixels), want, e.rect.Width, e.rect.Height, ErrPixelSizeMismatch)
	}
	e.pixels = pixels
	a.dirty = true
	return nil
}

func (a *atlasImpl) Register(pixels []byte, width, height uint32) (Handle, error) {
	if len(pixels) != int(width)*int(height)*4 {
		return Handle{}, fmt.Errorf("got %d bytes, want %d for %dx%d image: %w", len(pixels), int(width)*int(height)*4, width, height, ErrPixelSizeMismatch)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	rect, ok := a.place(width, height)
	if !ok {
		return Handle{}, fmt.Errorf("register %dx%d in %dx%d atlas: %w", width, height, a.width, a.height, ErrAtlasFull)
	}
	h := a.newEntry(rect)
	a.entries[h.index].pixels = pixels
	a.dirty = true
	return h, nil
}

func (a *atlasImpl) RegisterImage(img image.Image) (Handle, error) {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return a.Register(rgba.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()))
}

func (a *atlasImpl) Grow(width, height uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if width < a.width || height < a.height {
		return fmt.Errorf("grow to %dx%d from %dx%d: %w", width, height, a.width, a.height, ErrRectOutOfBounds)
	}

	// Repack the live set into a scratch allocator, tallest first so shelves
	// open at their final height (same ordering the shelf heuristic wants).
	// State is only committed once every live entry has a new home.
	scratch := &atlasImpl{width: width, height: height, padding: a.padding}
	live := make([]uint32, 0, len(a.entries))
	for i := range a.entries {
		if a.entries[i].live {
			live = append(live, uint32(i))
		}
	}
	sort.Slice(live, func(i, j int) bool {
		return a.entries[live[i]].rect.Height > a.entries[live[j]].rect.Height
	})

	moved := make(map[uint32]Rect, len(live))
	for _, idx := range live {
		r := a.entries[idx].rect
		placed, ok := scratch.place(r.Width, r.Height)
		if !ok {
			return fmt.Errorf("repack %dx%d region into %dx%d atlas: %w", r.Width, r.Height, width, height, ErrAtlasFull)
		}
		moved[idx] = placed
	}

	for idx, r := range moved {
		a.entries[idx].rect = r
	}
	a.width = width
	a.height = height
	a.shelves = scratch.shelves
	a.freed = nil
	a.dirty = true
	return nil
}

func (a *atlasImpl) StagingData() common.TextureStagingData {
	a.mu.Lock()
	defer a.mu.Unlock()

	pixels := make([]byte, int(a.width)*int(a.height)*4)
	stride := int(a.width) * 4
	for i := range a.entries {
		e := &a.entries[i]
		if !e.live || e.pixels == nil {
			continue
		}
		rowBytes := int(e.rect.Width) * 4
		for row := 0; row < int(e.rect.Height); row++ {
			dst := (int(e.rect.Y)+row)*stride + int(e.rect.X)*4
			src := row * rowBytes
			copy(pixels[dst:dst+rowBytes], e.pixels[src:src+rowBytes])
		}
	}
	a.dirty = false
	return common.TextureStagingData{
		Pixels: pixels,
		Width:  a.width,
		Height: a.height,
	}
}

func (a *atlasImpl) SamplerData() common.SamplerStagingData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sampler
}

func (a *atlasImpl) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

func (a *atlasImpl) Utilization() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := uint64(a.width) * uint64(a.height)
	if total == 0 {
		return 0
	}
	return float64(a.usedArea) / float64(total)
}

// resolve maps a handle to its live entry. Caller must hold the mutex.
func (a *atlasImpl) resolve(h Handle) (*entry, error) {
	if int(h.index) >= len(a.entries) {
		return nil, fmt.Errorf("handle index %d: %w", h.index, ErrStaleHandle)
	}
	e := &a.entries[h.index]
	if !e.live || e.version != h.version {
		return nil, fmt.Errorf("handle index %d version %d: %w", h.index, h.version, ErrStaleHandle)
	}
	return e, nil
}

// newEntry records a placed rect and issues its handle. Caller must hold the mutex.
func (a *atlasImpl) newEntry(rect Rect) Handle {
	a.usedArea += uint64(rect.Width) * uint64(rect.Height)
	a.dirty = true
	a.entries = append(a.entries, entry{rect: rect, live: true})
	return Handle{index: uint32(len(a.entries) - 1), version: 0}
}

// place runs the shelf heuristic and reserves a rect, or reports failure without
// mutating any state. Caller must hold the mutex.
func (a *atlasImpl) place(width, height uint32) (Rect, bool) {
	if width == 0 || height == 0 {
		return Rect{}, false
	}
	paddedW := width + a.padding
	paddedH := height + a.padding

	// Best-fit among existing shelves: the request must fit the shelf height and
	// the remaining width. Least wasted width wins; wasted height breaks ties so
	// short items avoid tall shelves.
	best := -1
	var bestWasteW, bestWasteH uint32
	for i := range a.shelves {
		s := &a.shelves[i]
		if height > s.height || s.x+paddedW > a.width {
			continue
		}
		wasteW := a.width - s.x - paddedW
		wasteH := s.height - height
		if best == -1 || wasteW < bestWasteW || (wasteW == bestWasteW && wasteH < bestWasteH) {
			best = i
			bestWasteW = wasteW
			bestWasteH = wasteH
		}
	}
	if best >= 0 {
		s := &a.shelves[best]
		r := Rect{X: s.x, Y: s.y, Width: width, Height: height}
		s.x += paddedW
		return r, true
	}

	// Open a new shelf while vertical space remains.
	var nextY uint32
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		nextY = last.y + last.height + a.padding
	}
	if nextY+paddedH <= a.height && paddedW <= a.width {
		a.shelves = append(a.shelves, shelf{y: nextY, height: height, x: paddedW})
		return Rect{X: 0, Y: nextY, Width: width, Height: height}, true
	}

	// Last resort: reuse a released region of the same or smaller size. The
	// region's top-left sub-rect is taken whole; the remainder stays fragmented
	// until the next Grow repacks.
	best = -1
	var bestArea uint64
	for i, f := range a.freed {
		if width > f.Width || height > f.Height {
			continue
		}
		area := uint64(f.Width) * uint64(f.Height)
		if best == -1 || area < bestArea {
			best = i
			bestArea = area
		}
	}
	if best >= 0 {
		f := a.freed[best]
		a.freed = append(a.freed[:best], a.freed[best+1:]...)
		return Rect{X: f.X, Y: f.Y, Width: width, Height: height}, true
	}

	return Rect{}, false
}
