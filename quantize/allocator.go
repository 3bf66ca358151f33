package quantize

import (
	"math"

	"github.com/bodgit/shr/rgb12"
)

// Assignment maps every scanline to one of the allocated palettes.
type Assignment struct {
	// SCB holds the palette id for each scanline.
	SCB []uint8
	// Palettes are the distinct palettes, indexed by SCB.
	Palettes []rgb12.Palette
	// Fresh marks scanlines that allocated a new palette rather than
	// reusing an existing one.
	Fresh []bool
}

// Allocator decides which palette each scanline uses. The input is one
// slice of working-space pixels per scanline, top to bottom.
type Allocator interface {
	Allocate(rows [][]rgb12.Vector) (*Assignment, error)
}

// NewPerScanline returns the default Allocator, building an independent
// palette for every scanline. Identical palettes share a slot.
func NewPerScanline(linear bool) Allocator {
	return perScanline{linear: linear}
}

// NewGlobal returns an Allocator that derives up to sixteen palettes
// from the whole image and picks the best fit per scanline.
func NewGlobal(linear bool) Allocator {
	return global{linear: linear}
}

// NewOptimized returns an Allocator that reuses the previous scanline's
// palette while the accumulated quantization error stays below
// threshold, bounding palette churn across near-constant regions.
func NewOptimized(threshold float64, linear bool) Allocator {
	return optimized{threshold: threshold, linear: linear}
}

// rowError is the summed squared distance from each pixel to its
// nearest palette color.
func rowError(row []rgb12.Vector, pal []rgb12.Vector) float64 {
	var total float64
	for _, v := range row {
		_, d := rgb12.Nearest(v, pal)
		total += d
	}
	return total
}

// table accumulates distinct palettes during allocation, remembering
// which scanlines each palette serves.
type table struct {
	palettes []rgb12.Palette
	rows     [][]int
	index    map[string]int
}

func newTable() *table {
	return &table{index: make(map[string]int)}
}

// add records that scanline y uses palette p, deduplicating against
// previously added palettes. It reports the palette id and whether a
// new slot was allocated.
func (t *table) add(p rgb12.Palette, y int) (int, bool) {
	if id, ok := t.index[p.Key()]; ok {
		t.rows[id] = append(t.rows[id], y)
		return id, false
	}
	id := len(t.palettes)
	t.palettes = append(t.palettes, p)
	t.rows = append(t.rows, []int{y})
	t.index[p.Key()] = id
	return id, true
}

func (t *table) reuse(id, y int) {
	t.rows[id] = append(t.rows[id], y)
}

// similarity is the symmetric sum of nearest-color distances between
// two palettes. Smaller means more alike.
func similarity(a, b rgb12.Palette, linear bool) float64 {
	av, bv := a.Vectors(linear), b.Vectors(linear)
	var total float64
	for _, v := range av {
		_, d := rgb12.Nearest(v, bv)
		total += d
	}
	for _, v := range bv {
		_, d := rgb12.Nearest(v, av)
		total += d
	}
	return total
}

// enforceCap merges the two most similar palettes until no more than
// MaxPalettes remain. A merged palette is rebuilt over the union of the
// source scanlines' pixels so both groups keep representation.
func (t *table) enforceCap(rows [][]rgb12.Vector, ids []int, linear bool) error {
	for len(t.palettes) > MaxPalettes {
		before := len(t.palettes)

		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < len(t.palettes); i++ {
			for j := i + 1; j < len(t.palettes); j++ {
				if s := similarity(t.palettes[i], t.palettes[j], linear); s < best {
					bi, bj, best = i, j, s
				}
			}
		}
		if bi < 0 {
			return &PaletteOverflowError{Count: len(t.palettes)}
		}

		var union []rgb12.Vector
		for _, y := range t.rows[bi] {
			union = append(union, rows[y]...)
		}
		for _, y := range t.rows[bj] {
			union = append(union, rows[y]...)
		}
		t.palettes[bi] = MedianCut(union, ColorsPerPalette, linear)
		t.rows[bi] = append(t.rows[bi], t.rows[bj]...)

		t.palettes = append(t.palettes[:bj], t.palettes[bj+1:]...)
		t.rows = append(t.rows[:bj], t.rows[bj+1:]...)
		for y, id := range ids {
			switch {
			case id == bj:
				ids[y] = bi
			case id > bj:
				ids[y] = id - 1
			}
		}

		if len(t.palettes) >= before {
			return &PaletteOverflowError{Count: len(t.palettes)}
		}
	}
	return nil
}

// assignment finalizes the table into an Assignment, enforcing the
// palette slot budget first.
func (t *table) assignment(rows [][]rgb12.Vector, ids []int, fresh []bool, linear bool) (*Assignment, error) {
	if err := t.enforceCap(rows, ids, linear); err != nil {
		return nil, err
	}
	scb := make([]uint8, len(ids))
	for y, id := range ids {
		scb[y] = uint8(id)
	}
	return &Assignment{
		SCB:      scb,
		Palettes: t.palettes,
		Fresh:    fresh,
	}, nil
}

type perScanline struct {
	linear bool
}

func (a perScanline) Allocate(rows [][]rgb12.Vector) (*Assignment, error) {
	t := newTable()
	ids := make([]int, len(rows))
	fresh := make([]bool, len(rows))
	for y, row := range rows {
		ids[y], fresh[y] = t.add(MedianCut(row, ColorsPerPalette, a.linear), y)
	}
	return t.assignment(rows, ids, fresh, a.linear)
}

type optimized struct {
	threshold float64
	linear    bool
}

func (a optimized) Allocate(rows [][]rgb12.Vector) (*Assignment, error) {
	t := newTable()
	ids := make([]int, len(rows))
	fresh := make([]bool, len(rows))
	var prev []rgb12.Vector
	for y, row := range rows {
		if y > 0 && rowError(row, prev) < a.threshold {
			ids[y] = ids[y-1]
			t.reuse(ids[y], y)
			continue
		}
		ids[y], fresh[y] = t.add(MedianCut(row, ColorsPerPalette, a.linear), y)
		prev = t.palettes[ids[y]].Vectors(a.linear)
	}
	return t.assignment(rows, ids, fresh, a.linear)
}

type global struct {
	linear bool
}

func (a global) Allocate(rows [][]rgb12.Vector) (*Assignment, error) {
	var all []rgb12.Vector
	for _, row := range rows {
		all = append(all, row...)
	}

	// First pass: reduce the whole image to up to 256 representative
	// colors, keeping the raw bucket means so the second pass can
	// partition them.
	reps := make([]rgb12.Vector, 0, MaxPalettes*ColorsPerPalette)
	for _, b := range medianCut(all, MaxPalettes*ColorsPerPalette) {
		reps = append(reps, b.mean())
	}

	var palettes []rgb12.Palette
	if len(reps) <= ColorsPerPalette {
		// The whole image fits in a single palette.
		palettes = []rgb12.Palette{MedianCut(all, ColorsPerPalette, a.linear)}
	} else {
		// Second pass: partition the representatives into sixteen
		// groups. A group holding more than sixteen distinct colors is
		// reduced by a further cut over its members.
		for _, g := range medianCut(reps, MaxPalettes) {
			palettes = append(palettes, MedianCut(g.pixels, ColorsPerPalette, a.linear))
		}
	}

	vectors := make([][]rgb12.Vector, len(palettes))
	for i, p := range palettes {
		vectors[i] = p.Vectors(a.linear)
	}

	scb := make([]uint8, len(rows))
	fresh := make([]bool, len(rows))
	referenced := make([]bool, len(palettes))
	for y, row := range rows {
		best, bestErr := 0, math.Inf(1)
		for i := range palettes {
			if e := rowError(row, vectors[i]); e < bestErr {
				best, bestErr = i, e
			}
		}
		scb[y] = uint8(best)
		if !referenced[best] {
			referenced[best] = true
			fresh[y] = true
		}
	}

	return &Assignment{
		SCB:      scb,
		Palettes: palettes,
		Fresh:    fresh,
	}, nil
}
