// internal/board/board.go
//
// Letter grid for a single Boggle match.
// Responsibilities:
//   - Generate a 4x4 board by rolling the sixteen classic Boggle dice.
//   - Serialize to / parse from a flat row-major string ("QU" spans two chars).
//   - Answer CanBeFormed: can a word be spelled by a path of adjacent,
//     non-reused tiles?
//
// A Board is immutable after creation; CanBeFormed is a pure function.
package board

import (
	"errors"
	"strings"

	"lukechampine.com/frand"
)

// dice are the letter distributions of the sixteen standard Boggle dice,
// one string per die, one face per character. The Q face stands for "QU".
var dice = [...]string{
	"LRYTTE", "VTHRWE", "EGHWNE", "SEOTIS",
	"ANAEEG", "IDSYTT", "OATTOW", "MTOICU",
	"AFPKFS", "XLDERI", "HCPOAS", "ENSIEU",
	"YLDEVR", "ZNRNHL", "NMIQHU", "OBBAOJ",
}

// Tile is a single cell of the grid: one uppercase letter, or "QU".
type Tile string

// Board is a size x size grid of tiles, row-major.
type Board struct {
	size  int
	tiles []Tile
}

// New rolls a fresh 4x4 board: the dice are shuffled across the grid
// and each shows a uniformly random face.
func New() *Board {
	order := frand.Perm(len(dice))
	tiles := make([]Tile, len(dice))
	for i, d := range order {
		face := dice[d][frand.Intn(6)]
		if face == 'Q' {
			tiles[i] = "QU"
		} else {
			tiles[i] = Tile(face)
		}
	}
	return &Board{size: 4, tiles: tiles}
}

// Parse rebuilds a board from its flat-string form. A 'Q' must be followed
// by 'U' and the two together make one tile. The tile count must be a
// perfect square.
func Parse(s string) (*Board, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	var tiles []Tile
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return nil, errors.New("board: invalid character")
		}
		if c == 'Q' {
			if i+1 >= len(s) || s[i+1] != 'U' {
				return nil, errors.New("board: Q tile must be QU")
			}
			tiles = append(tiles, "QU")
			i++
			continue
		}
		tiles = append(tiles, Tile(c))
	}
	size := 1
	for size*size < len(tiles) {
		size++
	}
	if size*size != len(tiles) || len(tiles) == 0 {
		return nil, errors.New("board: tile count is not a perfect square")
	}
	return &Board{size: size, tiles: tiles}, nil
}

// Size returns the side length of the grid.
func (b *Board) Size() int { return b.size }

// String is the wire form: every tile's letters concatenated row-major,
// no separators.
func (b *Board) String() string {
	var sb strings.Builder
	for _, t := range b.tiles {
		sb.WriteString(string(t))
	}
	return sb.String()
}

// CanBeFormed reports whether word can be spelled by a path of
// 8-directionally adjacent cells with no cell used twice. Comparison is
// case-insensitive; the empty word is never formable.
func (b *Board) CanBeFormed(word string) bool {
	w := strings.ToUpper(strings.TrimSpace(word))
	if w == "" {
		return false
	}
	used := make([]bool, len(b.tiles))
	for start := range b.tiles {
		if b.search(w, start, used) {
			return true
		}
	}
	return false
}

// search tries to match rest starting at cell pos, backtracking through
// unused neighbors. used is restored before returning.
func (b *Board) search(rest string, pos int, used []bool) bool {
	t := string(b.tiles[pos])
	if !strings.HasPrefix(rest, t) {
		return false
	}
	rest = rest[len(t):]
	if rest == "" {
		return true
	}
	used[pos] = true
	row, col := pos/b.size, pos%b.size
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if r < 0 || r >= b.size || c < 0 || c >= b.size {
				continue
			}
			next := r*b.size + c
			if !used[next] && b.search(rest, next, used) {
				used[pos] = false
				return true
			}
		}
	}
	used[pos] = false
	return false
}
