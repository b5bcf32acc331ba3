package tictactoe

import (
	"slices"

	"github.com/rocketscienceinc/tictactoe3d/internal/entity"
)

const (
	axisX = iota
	axisY
	axisZ
)

// Line is three collinear positions of the cube.
type Line [3]entity.Position

// Catalogue is the ordered, read-only set of winning lines of the cube.
// It carries no per-game state and is shared by every game.
type Catalogue struct {
	lines []Line
}

var standardCatalogue = NewCatalogue()

// StandardCatalogue returns the shared catalogue built at package init.
func StandardCatalogue() *Catalogue {
	return standardCatalogue
}

// NewCatalogue generates the 49 lines of a 3x3x3 cube.
//
// Order: planes with fixed z, then fixed y, then fixed x, each layer 0..2; inside a
// plane the rows, the columns and the two diagonals. A line already produced by an
// earlier plane is skipped. The four space diagonals come last.
func NewCatalogue() *Catalogue {
	const n = entity.BoardSize

	lines := make([]Line, 0, 49)
	seen := make(map[Line]struct{}, 49)

	add := func(line Line) {
		key := canonical(line)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		lines = append(lines, line)
	}

	for _, axis := range []int{axisZ, axisY, axisX} {
		for layer := 0; layer < n; layer++ {
			for v := 0; v < n; v++ {
				add(Line{planePos(axis, layer, 0, v), planePos(axis, layer, 1, v), planePos(axis, layer, 2, v)})
			}
			for u := 0; u < n; u++ {
				add(Line{planePos(axis, layer, u, 0), planePos(axis, layer, u, 1), planePos(axis, layer, u, 2)})
			}
			add(Line{planePos(axis, layer, 0, 0), planePos(axis, layer, 1, 1), planePos(axis, layer, 2, 2)})
			add(Line{planePos(axis, layer, 0, 2), planePos(axis, layer, 1, 1), planePos(axis, layer, 2, 0)})
		}
	}

	add(Line{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2}})
	add(Line{{X: 0, Y: 0, Z: 2}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 0}})
	add(Line{{X: 0, Y: 2, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 0, Z: 2}})
	add(Line{{X: 0, Y: 2, Z: 2}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 0, Z: 0}})

	return &Catalogue{lines: lines}
}

func (that *Catalogue) Len() int {
	return len(that.lines)
}

// Lines returns a copy of the catalogue in generation order.
func (that *Catalogue) Lines() []Line {
	return slices.Clone(that.lines)
}

// planePos maps in-plane coordinates (u, v) of the given layer to a cube position.
// u and v walk the two axes other than the fixed one, in x, y, z order.
func planePos(axis, layer, u, v int) entity.Position {
	switch axis {
	case axisZ:
		return entity.Position{X: u, Y: v, Z: layer}
	case axisY:
		return entity.Position{X: u, Y: layer, Z: v}
	default:
		return entity.Position{X: layer, Y: u, Z: v}
	}
}

func canonical(line Line) Line {
	key := line
	slices.SortFunc(key[:], func(a, b entity.Position) int {
		return index(a) - index(b)
	})
	return key
}

func index(p entity.Position) int {
	return p.X + p.Y*entity.BoardSize + p.Z*entity.BoardSize*entity.BoardSize
}
