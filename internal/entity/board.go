package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe3d/internal/apperror"
)

const BoardSize = 3

// Position addresses one cell of the cube.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Grid is the raw cell layout, indexed as grid[z][y][x].
type Grid [BoardSize][BoardSize][BoardSize]Cell

// Board is a dumb 3x3x3 container. Occupancy policy belongs to the caller.
type Board struct {
	cells Grid
}

func NewBoard() *Board {
	return &Board{}
}

// IsValid reports whether every coordinate of pos lies in [0, BoardSize).
func (that *Board) IsValid(pos Position) bool {
	return inRange(pos.X) && inRange(pos.Y) && inRange(pos.Z)
}

func (that *Board) Get(pos Position) (Cell, error) {
	if !that.IsValid(pos) {
		return EmptyCell, fmt.Errorf("%w: %s", apperror.ErrOutOfRange, pos)
	}

	return that.cells[pos.Z][pos.Y][pos.X], nil
}

// Set overwrites the cell at pos.
func (that *Board) Set(pos Position, value Cell) error {
	if !that.IsValid(pos) {
		return fmt.Errorf("%w: %s", apperror.ErrOutOfRange, pos)
	}

	that.cells[pos.Z][pos.Y][pos.X] = value

	return nil
}

func (that *Board) IsEmpty(pos Position) (bool, error) {
	cell, err := that.Get(pos)
	if err != nil {
		return false, err
	}

	return cell == EmptyCell, nil
}

// IsFull reports whether no cell is empty.
func (that *Board) IsFull() bool {
	for z := range that.cells {
		for y := range that.cells[z] {
			for _, cell := range that.cells[z][y] {
				if cell == EmptyCell {
					return false
				}
			}
		}
	}

	return true
}

// Snapshot returns a copy of the grid. Grid is an array type, so the copy shares nothing.
func (that *Board) Snapshot() Grid {
	return that.cells
}

func (that *Board) Clear() {
	that.cells = Grid{}
}

func inRange(n int) bool {
	return n >= 0 && n < BoardSize
}
