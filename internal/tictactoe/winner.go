package tictactoe

import "github.com/rocketscienceinc/tictactoe3d/internal/entity"

// CheckWinner scans the catalogue in order and returns the symbol owning the first
// fully occupied line, or EmptyCell when there is none.
func CheckWinner(board *entity.Board, catalogue *Catalogue) entity.Cell {
	for _, line := range catalogue.lines {
		a, err := board.Get(line[0])
		if err != nil || a == entity.EmptyCell {
			continue
		}

		b, _ := board.Get(line[1])
		c, _ := board.Get(line[2])
		if a == b && b == c {
			return a
		}
	}

	return entity.EmptyCell
}
