// Package terrain provides a pure height-query over a regular float grid.
// The animation layer consumes it only through animation.HeightFunc; no
// file format or rendering concern lives here.
package terrain

// Heightmap is a row-major grid of cell-corner heights spaced CellSize
// world units apart. Grid point (x, z) sits at world (x*CellSize,
// z*CellSize).
type Heightmap struct {
	heights  []float32
	width    int
	depth    int
	CellSize float32
}

// New creates a flat heightmap with width*depth grid points.
func New(width, depth int, cellSize float32) *Heightmap {
	return &Heightmap{
		heights:  make([]float32, width*depth),
		width:    width,
		depth:    depth,
		CellSize: cellSize,
	}
}

// Width returns the number of grid points along X.
func (h *Heightmap) Width() int { return h.width }

// Depth returns the number of grid points along Z.
func (h *Heightmap) Depth() int { return h.depth }

// Set writes the height at a grid point. Out-of-range points are ignored.
func (h *Heightmap) Set(x, z int, height float32) {
	if x < 0 || z < 0 || x >= h.width || z >= h.depth {
		return
	}
	h.heights[z*h.width+x] = height
}

// At returns the height at a grid point, clamping to the grid edge.
func (h *Heightmap) At(x, z int) float32 {
	if x < 0 {
		x = 0
	}
	if z < 0 {
		z = 0
	}
	if x >= h.width {
		x = h.width - 1
	}
	if z >= h.depth {
		z = h.depth - 1
	}
	return h.heights[z*h.width+x]
}

// HeightAt returns the bilinearly interpolated height at a world
// position. Positions outside the grid clamp to the border. Satisfies
// animation.HeightFunc.
func (h *Heightmap) HeightAt(worldX, worldZ float32) float32 {
	if h.width == 0 || h.depth == 0 || h.CellSize == 0 {
		return 0
	}

	fx := worldX / h.CellSize
	fz := worldZ / h.CellSize

	x0 := int(fx)
	z0 := int(fz)
	if x0 < 0 {
		x0 = 0
	}
	if z0 < 0 {
		z0 = 0
	}
	if x0 > h.width-2 {
		x0 = h.width - 2
	}
	if z0 > h.depth-2 {
		z0 = h.depth - 2
	}
	if x0 < 0 || z0 < 0 {
		// Degenerate 1-wide grid
		return h.At(x0, z0)
	}

	tx := clamp01(fx - float32(x0))
	tz := clamp01(fz - float32(z0))

	// Lerp along X on both Z edges, then across Z.
	south := h.At(x0, z0)*(1-tx) + h.At(x0+1, z0)*tx
	north := h.At(x0, z0+1)*(1-tx) + h.At(x0+1, z0+1)*tx
	return south*(1-tz) + north*tz
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
