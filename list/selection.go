package list

import (
	"strings"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"
)

func (l *list[T]) hasSelection() bool {
	return l.selectionEndCol != l.selectionStartCol || l.selectionEndLine != l.selectionStartLine
}

// HasSelection returns whether there is an active selection.
func (l *list[T]) HasSelection() bool {
	return l.hasSelection()
}

// StartSelection implements List.
func (l *list[T]) StartSelection(col, line int) {
	l.selectionStartCol = col
	l.selectionStartLine = line
	l.selectionEndCol = col
	l.selectionEndLine = line
	l.selectionActive = true
}

// EndSelection implements List.
func (l *list[T]) EndSelection(col, line int) {
	if !l.selectionActive {
		return
	}
	l.selectionEndCol = col
	l.selectionEndLine = line
}

func (l *list[T]) SelectionStop() {
	l.selectionActive = false
}

func (l *list[T]) SelectionClear() {
	l.selectionStartCol = -1
	l.selectionStartLine = -1
	l.selectionEndCol = -1
	l.selectionEndLine = -1
	l.selectionActive = false
}

// shiftTextSelection moves the selection with the content when the list
// scrolls by delta lines. While a selection is being dragged only the
// trailing edge moves so the anchored edge stays under the cursor.
func (l *list[T]) shiftTextSelection(delta int) {
	if delta == 0 || !l.hasSelection() {
		return
	}
	if !l.selectionActive {
		l.selectionStartLine += delta
		l.selectionEndLine += delta
		return
	}
	if delta < 0 {
		if l.selectionStartLine < l.selectionEndLine {
			l.selectionStartLine += delta
		} else {
			l.selectionEndLine += delta
		}
	} else {
		if l.selectionStartLine > l.selectionEndLine {
			l.selectionStartLine += delta
		} else {
			l.selectionEndLine += delta
		}
	}
}

// SelectWord selects the word at the given position.
func (l *list[T]) SelectWord(col, line int) {
	startCol, endCol := l.findWordBoundaries(col, line)
	l.selectionStartCol = startCol
	l.selectionStartLine = line
	l.selectionEndCol = endCol
	l.selectionEndLine = line
	l.selectionActive = false
}

// SelectParagraph selects the paragraph at the given position.
func (l *list[T]) SelectParagraph(col, line int) {
	startLine, endLine, found := l.findParagraphBoundaries(line)
	if !found {
		return
	}
	l.selectionStartCol = 0
	l.selectionStartLine = startLine
	l.selectionEndCol = l.width - 1
	l.selectionEndLine = endLine
	l.selectionActive = false
}

// GetSelectedText returns the currently selected text without styling.
func (l *list[T]) GetSelectedText() string {
	if !l.hasSelection() {
		return ""
	}
	l.renderMu.Lock()
	view := l.rendered
	l.renderMu.Unlock()
	return l.selectionView(view, true)
}

// The rendered string holds exactly the viewport, so screen coordinates
// map straight onto its lines.
func (l *list[T]) findWordBoundaries(col, line int) (startCol, endCol int) {
	lines := strings.Split(l.rendered, "\n")
	if line < 0 || line >= len(lines) {
		return 0, 0
	}

	currentLine := ansi.Strip(lines[line])
	gr := uniseg.NewGraphemes(currentLine)
	startCol = -1
	upTo := col
	for gr.Next() {
		if gr.IsWordBoundary() && upTo > 0 {
			startCol = col - upTo + 1
		} else if gr.IsWordBoundary() && upTo < 0 {
			endCol = col - upTo + 1
			break
		}
		if upTo == 0 && gr.Str() == " " {
			return 0, 0
		}
		upTo -= 1
	}
	if startCol == -1 {
		return 0, 0
	}
	return
}

func (l *list[T]) findParagraphBoundaries(line int) (startLine, endLine int, found bool) {
	lines := strings.Split(l.rendered, "\n")
	for i, ln := range lines {
		lines[i] = ansi.Strip(ln)
	}
	if line < 0 || line >= len(lines) {
		return 0, 0, false
	}
	if strings.TrimSpace(lines[line]) == "" {
		return 0, 0, false
	}

	startLine = line
	for startLine > 0 && strings.TrimSpace(lines[startLine-1]) != "" {
		startLine--
	}
	endLine = line
	for endLine < len(lines)-1 && strings.TrimSpace(lines[endLine+1]) != "" {
		endLine++
	}
	return startLine, endLine, true
}

// selectionView paints the selection highlight over the rendered view, or,
// with textOnly set, extracts the selected text without styling. Selection
// coordinates are viewport-local, matching the rendered string line for line.
func (l *list[T]) selectionView(view string, textOnly bool) string {
	area := uv.Rect(0, 0, l.width, l.height)
	scr := uv.NewScreenBuffer(area.Dx(), area.Dy())
	uv.NewStyledString(view).Draw(scr, area)

	sel := uv.Rectangle{
		Min: uv.Pos(l.selectionStartCol, l.selectionStartLine),
		Max: uv.Pos(l.selectionEndCol, l.selectionEndLine),
	}.Canon()

	var selectedText strings.Builder
	for y := max(sel.Min.Y, 0); y <= sel.Max.Y && y < scr.Height(); y++ {
		selStart, selEnd := 0, scr.Width()
		if y == sel.Min.Y {
			selStart = sel.Min.X
		}
		if y == sel.Max.Y {
			selEnd = sel.Max.X
		}

		start, end := textBounds(&scr, y)
		if start < 0 {
			if textOnly {
				// keep empty lines in text-only mode
				selectedText.WriteByte('\n')
			}
			continue
		}

		for x := max(start, selStart); x < min(end, selEnd); x++ {
			cell := scr.CellAt(x, y)
			if cell == nil || len(cell.String()) == 0 {
				continue
			}
			if textOnly {
				selectedText.WriteString(cell.String())
				continue
			}
			cell = cell.Clone()
			cell.Style = cell.Style.
				Background(l.selectionBg.GetBackground()).
				Foreground(l.selectionBg.GetForeground())
			scr.SetCell(x, y, cell)
		}

		if textOnly {
			selectedText.WriteByte('\n')
		}
	}

	if textOnly {
		return strings.TrimSpace(selectedText.String())
	}
	return scr.Render()
}

// textBounds reports the first and one-past-last column on line y holding
// visible content: a non-whitespace rune or a cell with a background set.
// Returns (-1, -1) for blank lines.
func textBounds(scr *uv.ScreenBuffer, y int) (start, end int) {
	start, end = -1, -1
	for x := range scr.Width() {
		cell := scr.CellAt(x, y)
		if cell == nil {
			continue
		}
		s := cell.String()
		if len(s) == 0 {
			continue
		}
		r := rune(s[0])
		if cell.Style.Bg != nil || (r != ' ' && r != '\t' && r != 0 && r != '\n' && r != '\r') {
			if start == -1 {
				start = x
			}
			end = x + 1
		}
	}
	return start, end
}
