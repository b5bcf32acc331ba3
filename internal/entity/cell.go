package entity

// Cell is the content of one slot of the board. Players hold SymbolX or SymbolO.
type Cell string

const (
	EmptyCell Cell = ""
	SymbolX   Cell = "X"
	SymbolO   Cell = "O"
)

// IsSymbol reports whether c is a player symbol.
func (c Cell) IsSymbol() bool {
	return c == SymbolX || c == SymbolO
}

// Opponent returns the other player symbol. EmptyCell has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case SymbolX:
		return SymbolO
	case SymbolO:
		return SymbolX
	default:
		return EmptyCell
	}
}
