package bingo

// WinType classifies the best pattern a card covers
type WinType string

const (
	WinNone     WinType = "none"
	WinLine     WinType = "line"
	WinDiagonal WinType = "diagonal"
	WinShape    WinType = "shape"
	WinFull     WinType = "full"
)

// Shape names a special pattern of cells
type Shape string

const (
	ShapeX Shape = "X"
	ShapeT Shape = "T"
	ShapeL Shape = "L"
	ShapeU Shape = "U"
)

// WinResult is derived from a card and the called numbers; it is never stored.
type WinResult struct {
	IsWinner bool    `json:"is_winner"`
	Type     WinType `json:"win_type"`
	// Shape is set only when Type is WinShape
	Shape        Shape `json:"shape,omitempty"`
	MatchedLines []int `json:"matched_lines"`
}

type cell struct{ row, col int }

// line ids in the order they are scanned
var lines = func() [][]cell {
	out := make([][]cell, 0, 2*CardSize+2)
	for r := range CardSize {
		row := make([]cell, 0, CardSize)
		for c := range CardSize {
			row = append(row, cell{r, c})
		}
		out = append(out, row)
	}
	for c := range CardSize {
		col := make([]cell, 0, CardSize)
		for r := range CardSize {
			col = append(col, cell{r, c})
		}
		out = append(out, col)
	}
	main := make([]cell, 0, CardSize)
	anti := make([]cell, 0, CardSize)
	for i := range CardSize {
		main = append(main, cell{i, i})
		anti = append(anti, cell{i, CardSize - 1 - i})
	}
	return append(out, main, anti)
}()

// shapeOrder is the order shapes are tried; the first covered one is reported
var shapeOrder = []struct {
	shape Shape
	lines []int
}{
	{ShapeX, []int{MainDiagonalLine, AntiDiagonalLine}},
	{ShapeT, []int{FirstRowLine, FirstColumnLine + CardSize/2}},
	{ShapeL, []int{FirstColumnLine, FirstRowLine + CardSize - 1}},
	{ShapeU, []int{FirstColumnLine, FirstColumnLine + CardSize - 1, FirstRowLine + CardSize - 1}},
}

// CheckWin evaluates card against the called numbers. A cell is covered when it
// is the free space or its value has been called. The reported type follows
// full card, then the first covered shape (X, T, L, U), then line or diagonal.
// MatchedLines always lists every covered row (0-4), column (5-9) and
// diagonal (10 main, 11 anti).
func CheckWin(card Card, called *CalledNumbers) (WinResult, error) {
	if err := card.Validate(); err != nil {
		return WinResult{}, err
	}

	var covered [CardSize][CardSize]bool
	full := true
	for r := range CardSize {
		for c := range CardSize {
			v := card[r][c]
			covered[r][c] = v == FreeSpace || called.Contains(v)
			full = full && covered[r][c]
		}
	}

	lineCovered := make([]bool, len(lines))
	matched := make([]int, 0, len(lines))
	for id, cells := range lines {
		ok := true
		for _, cl := range cells {
			if !covered[cl.row][cl.col] {
				ok = false
				break
			}
		}
		lineCovered[id] = ok
		if ok {
			matched = append(matched, id)
		}
	}

	result := WinResult{Type: WinNone, MatchedLines: matched}

	if full {
		result.IsWinner = true
		result.Type = WinFull
		return result, nil
	}

	for _, s := range shapeOrder {
		ok := true
		for _, id := range s.lines {
			ok = ok && lineCovered[id]
		}
		if ok {
			result.IsWinner = true
			result.Type = WinShape
			result.Shape = s.shape
			return result, nil
		}
	}

	if len(matched) > 0 {
		result.IsWinner = true
		result.Type = WinDiagonal
		if matched[0] < MainDiagonalLine {
			result.Type = WinLine
		}
	}
	return result, nil
}

// IsDiagonalLine reports whether id identifies one of the two diagonals
func IsDiagonalLine(id int) bool {
	return id == MainDiagonalLine || id == AntiDiagonalLine
}
