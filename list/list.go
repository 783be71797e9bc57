// Package list provides a virtualized, scrollable list component for
// Bubble Tea. Only the rows overlapping the viewport are rendered; the
// vlist engine decides which those are and keeps per-row state bound to
// item IDs while rows are recycled.
package list

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/zeebo/xxh3"

	"github.com/listkit/listkit/internal/csync"
	"github.com/listkit/listkit/vlist"
)

const (
	ItemNotFound              = -1
	ViewportDefaultScrollSize = 2

	// measurement passes per render; heights settle after one or two
	// passes unless new rows keep scrolling into the window
	maxMeasurePasses = 8
)

type List[T Item] interface {
	Init() tea.Cmd
	Update(tea.Msg) (tea.Model, tea.Cmd)
	View() string
	SetSize(width, height int) tea.Cmd
	GetSize() (int, int)
	Focus() tea.Cmd
	Blur() tea.Cmd
	IsFocused() bool

	MoveUp(int) tea.Cmd
	MoveDown(int) tea.Cmd
	GoToTop() tea.Cmd
	GoToBottom() tea.Cmd
	SelectItemAbove() tea.Cmd
	SelectItemBelow() tea.Cmd
	SetItems([]T) tea.Cmd
	SetSelected(string) tea.Cmd
	SelectedItem() *T
	Items() []T
	UpdateItem(string, T) tea.Cmd
	DeleteItem(string) tea.Cmd
	PrependItem(T) tea.Cmd
	AppendItem(T) tea.Cmd
	ScrollToItem(string) tea.Cmd

	StartSelection(col, line int)
	EndSelection(col, line int)
	SelectionStop()
	SelectionClear()
	SelectWord(col, line int)
	SelectParagraph(col, line int)
	GetSelectedText() string
	HasSelection() bool
}

type confOptions struct {
	width, height int
	gap           int
	estimate      int
	overscan      int
	alignment     vlist.Alignment
	keyMap        KeyMap
	wrap          bool
	focused       bool
	enableMouse   bool
	selectedIndex int
	selectionBg   lipgloss.Style
}

// ListOption configures the list.
type ListOption func(*confOptions)

// WithSize sets the size of the list.
func WithSize(width, height int) ListOption {
	return func(l *confOptions) {
		l.width = width
		l.height = height
	}
}

// WithGap sets the gap between items in the list.
func WithGap(gap int) ListOption {
	return func(l *confOptions) {
		l.gap = gap
	}
}

// WithTopAlignment anchors the first item and offset zero.
func WithTopAlignment() ListOption {
	return func(l *confOptions) {
		l.alignment = vlist.AlignTop
	}
}

// WithBottomAlignment anchors the last item at the bottom edge, the usual
// choice for chat-style lists that grow at the end.
func WithBottomAlignment() ListOption {
	return func(l *confOptions) {
		l.alignment = vlist.AlignBottom
	}
}

// WithEstimatedHeight sets the height assumed for items that have not been
// rendered yet.
func WithEstimatedHeight(lines int) ListOption {
	return func(l *confOptions) {
		l.estimate = lines
	}
}

// WithOverscan renders extra lines past the viewport edge to reduce
// pop-in during fast scrolling.
func WithOverscan(lines int) ListOption {
	return func(l *confOptions) {
		l.overscan = lines
	}
}

// WithSelectedIndex sets the initially selected item.
func WithSelectedIndex(index int) ListOption {
	return func(l *confOptions) {
		l.selectedIndex = index
	}
}

func WithKeyMap(keyMap KeyMap) ListOption {
	return func(l *confOptions) {
		l.keyMap = keyMap
	}
}

func WithWrapNavigation() ListOption {
	return func(l *confOptions) {
		l.wrap = true
	}
}

func WithFocus(focus bool) ListOption {
	return func(l *confOptions) {
		l.focused = focus
	}
}

func WithEnableMouse() ListOption {
	return func(l *confOptions) {
		l.enableMouse = true
	}
}

// WithSelectionStyle sets the style applied to mouse-selected text.
func WithSelectionStyle(style lipgloss.Style) ListOption {
	return func(l *confOptions) {
		l.selectionBg = style
	}
}

type list[T Item] struct {
	*confOptions

	engine    *vlist.State[string]
	items     *csync.Slice[T]
	indexMap  *csync.Map[string, int]
	viewCache *csync.Map[uint64, string]

	renderMu sync.Mutex
	rendered string
	frame    vlist.Frame[string]

	// pending scroll intent, re-applied between measurement passes so a
	// target computed from estimated heights converges on the real ones
	revealIndex int
	anchorEnd   bool

	selectionStartCol  int
	selectionStartLine int
	selectionEndCol    int
	selectionEndLine   int
	selectionActive    bool
}

func New[T Item](items []T, opts ...ListOption) List[T] {
	l := &list[T]{
		confOptions: &confOptions{
			keyMap:        DefaultKeyMap(),
			focused:       true,
			estimate:      1,
			alignment:     vlist.AlignTop,
			selectedIndex: ItemNotFound,
			selectionBg:   lipgloss.NewStyle().Background(lipgloss.White).Foreground(lipgloss.Black),
		},
		items:              csync.NewSliceFrom(items),
		indexMap:           csync.NewMap[string, int](),
		viewCache:          csync.NewMap[uint64, string](),
		revealIndex:        ItemNotFound,
		selectionStartCol:  -1,
		selectionStartLine: -1,
		selectionEndCol:    -1,
		selectionEndLine:   -1,
	}
	for _, opt := range opts {
		opt(l.confOptions)
	}
	l.engine = vlist.New[string](
		len(items),
		l.alignment,
		float64(max(l.estimate, 1)),
		vlist.WithOverscan(float64(l.overscan)),
	)
	for inx, item := range items {
		if i, ok := any(item).(Indexable); ok {
			i.SetIndex(inx)
		}
		l.indexMap.Set(item.ID(), inx)
	}
	return l
}

// Init implements List.
func (l *list[T]) Init() tea.Cmd {
	if l.width <= 0 || l.height <= 0 {
		return nil
	}
	var cmds []tea.Cmd
	for item := range l.items.Seq() {
		if cmd := item.SetSize(l.width, l.height); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if l.selectedIndex >= 0 {
		l.revealIndex = l.selectedIndex
	}
	if cmd := l.render(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements List.
func (l *list[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseWheelMsg:
		if l.enableMouse {
			return l.handleMouseWheel(msg)
		}
		return l, nil
	case tea.MouseClickMsg:
		if l.enableMouse && msg.Button == tea.MouseLeft {
			return l, l.selectItemAtLine(msg.Y)
		}
		return l, nil
	case tea.KeyPressMsg:
		if !l.focused {
			return l, nil
		}
		switch {
		case key.Matches(msg, l.keyMap.Down):
			return l, l.SelectItemBelow()
		case key.Matches(msg, l.keyMap.Up):
			return l, l.SelectItemAbove()
		case key.Matches(msg, l.keyMap.DownOneItem):
			return l, l.SelectItemBelow()
		case key.Matches(msg, l.keyMap.UpOneItem):
			return l, l.SelectItemAbove()
		case key.Matches(msg, l.keyMap.HalfPageDown):
			return l, l.MoveDown(l.height / 2)
		case key.Matches(msg, l.keyMap.HalfPageUp):
			return l, l.MoveUp(l.height / 2)
		case key.Matches(msg, l.keyMap.PageDown):
			return l, l.MoveDown(l.height)
		case key.Matches(msg, l.keyMap.PageUp):
			return l, l.MoveUp(l.height)
		case key.Matches(msg, l.keyMap.End):
			return l, l.GoToBottom()
		case key.Matches(msg, l.keyMap.Home):
			return l, l.GoToTop()
		}
		s := l.SelectedItem()
		if s == nil {
			return l, nil
		}
		item := *s
		updated, cmd := item.Update(msg)
		cmds := []tea.Cmd{cmd}
		if u, ok := updated.(T); ok {
			cmds = append(cmds, l.UpdateItem(u.ID(), u))
		}
		return l, tea.Batch(cmds...)
	}
	return l, nil
}

// selectItemAtLine maps a viewport line to the row rendered on it in the
// last frame and selects that row's item when it is focusable.
func (l *list[T]) selectItemAtLine(line int) tea.Cmd {
	l.renderMu.Lock()
	frame := l.frame
	l.renderMu.Unlock()
	// row offsets in a frame are viewport-relative, like the click line
	target := float64(line)
	for _, row := range frame.Rows {
		if target < row.Offset || target >= row.Offset+row.Extent {
			continue
		}
		item, ok := l.items.Get(row.Index)
		if !ok {
			return nil
		}
		if _, ok := any(item).(Focusable); !ok {
			return nil
		}
		l.selectedIndex = row.Index
		return l.render()
	}
	return nil
}

func (l *list[T]) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.Button {
	case tea.MouseWheelDown:
		cmd = l.MoveDown(ViewportDefaultScrollSize)
	case tea.MouseWheelUp:
		cmd = l.MoveUp(ViewportDefaultScrollSize)
	}
	return l, cmd
}

// View implements List.
func (l *list[T]) View() string {
	if l.height <= 0 || l.width <= 0 {
		return ""
	}
	l.renderMu.Lock()
	view := l.rendered
	l.renderMu.Unlock()
	if !l.hasSelection() {
		return view
	}
	return l.selectionView(view, false)
}

func (l *list[T]) render() tea.Cmd {
	if l.width <= 0 || l.height <= 0 {
		return nil
	}
	if l.items.Len() == 0 {
		l.renderMu.Lock()
		l.rendered = ""
		l.frame = vlist.Frame[string]{}
		l.renderMu.Unlock()
		return nil
	}
	l.setDefaultSelected()
	focusCmd := l.syncFocus()
	frame := l.layoutFrame()
	l.renderMu.Lock()
	l.frame = frame
	l.rendered = l.renderFrame(frame)
	l.renderMu.Unlock()
	return focusCmd
}

// layoutFrame runs layout passes until measured heights settle, feeding
// the actual height of every materialized row back into the engine. The
// pending scroll intent is re-applied after every pass: a target offset
// computed from estimated heights moves as the rows around it get
// measured, so anchoring once before the loop would land short.
func (l *list[T]) layoutFrame() vlist.Frame[string] {
	build := func(i int) (string, string) {
		item, ok := l.items.Get(i)
		if !ok {
			return "", ""
		}
		return item.ID(), l.itemView(item)
	}
	var frame vlist.Frame[string]
	for range maxMeasurePasses {
		frame = l.engine.Layout(float64(l.height), build)
		settled := true
		for _, row := range frame.Rows {
			extent := float64(lipgloss.Height(row.Content) + l.gapAfter(row.Index))
			if extent != row.Extent {
				l.engine.RecordMeasured(row.Index, extent)
				settled = false
			}
		}
		if l.anchorEnd {
			l.engine.ScrollToBottom()
		} else if l.revealIndex != ItemNotFound {
			l.engine.ScrollToReveal(l.revealIndex)
		}
		if l.engine.ScrollOffset() != frame.Offset {
			settled = false
		}
		if settled {
			break
		}
	}
	l.revealIndex = ItemNotFound
	l.anchorEnd = false
	for i := range frame.Rows {
		row := &frame.Rows[i]
		row.State.Selected = row.Index == l.selectedIndex
	}
	return frame
}

// renderFrame assembles the viewport from the frame's rows. Row offsets
// are viewport-relative; gaps between items show up as offset jumps and
// are filled with blank lines.
func (l *list[T]) renderFrame(frame vlist.Frame[string]) string {
	if len(frame.Rows) == 0 {
		return ""
	}
	lines := make([]string, 0, l.height)
	y := 0
	for _, row := range frame.Rows {
		top := int(math.Round(row.Offset))
		skip := 0
		if top < y {
			skip = y - top
		}
		for y < top && y < l.height {
			lines = append(lines, "")
			y++
		}
		if y >= l.height {
			break
		}
		itemLines := strings.Split(row.Content, "\n")
		for i := skip; i < len(itemLines) && y < l.height; i++ {
			lines = append(lines, itemLines[i])
			y++
		}
	}
	// Short lists render at their natural height; once the content
	// scrolls, the viewport is padded to its full extent.
	if frame.TotalExtent > float64(l.height) || frame.Offset > 0 {
		for y < l.height {
			lines = append(lines, "")
			y++
		}
	}
	return strings.Join(lines, "\n")
}

func (l *list[T]) gapAfter(index int) int {
	if l.gap > 0 && index < l.items.Len()-1 {
		return l.gap
	}
	return 0
}

func cacheKey(id string) uint64 {
	return xxh3.HashString(id)
}

func (l *list[T]) itemView(item T) string {
	k := cacheKey(item.ID())
	if view, ok := l.viewCache.Get(k); ok {
		return view
	}
	view := item.View()
	l.viewCache.Set(k, view)
	return view
}

func (l *list[T]) invalidate(id string) {
	l.viewCache.Del(cacheKey(id))
}

func (l *list[T]) setDefaultSelected() {
	if l.selectedIndex >= 0 {
		return
	}
	if l.alignment == vlist.AlignTop {
		l.selectedIndex = l.firstSelectableItemBelow(ItemNotFound)
	} else {
		l.selectedIndex = l.firstSelectableItemAbove(l.items.Len())
	}
}

func (l *list[T]) firstSelectableItemAbove(inx int) int {
	for i := inx - 1; i >= 0; i-- {
		item, ok := l.items.Get(i)
		if !ok {
			continue
		}
		if _, ok := any(item).(Focusable); ok {
			return i
		}
	}
	if inx == 0 && l.wrap {
		return l.firstSelectableItemAbove(l.items.Len())
	}
	return ItemNotFound
}

func (l *list[T]) firstSelectableItemBelow(inx int) int {
	itemsLen := l.items.Len()
	for i := inx + 1; i < itemsLen; i++ {
		item, ok := l.items.Get(i)
		if !ok {
			continue
		}
		if _, ok := any(item).(Focusable); ok {
			return i
		}
	}
	if inx == itemsLen-1 && l.wrap {
		return l.firstSelectableItemBelow(ItemNotFound)
	}
	return ItemNotFound
}

func (l *list[T]) syncFocus() tea.Cmd {
	var cmds []tea.Cmd
	for inx, item := range l.items.Seq2() {
		f, ok := any(item).(Focusable)
		if !ok {
			continue
		}
		shouldFocus := l.focused && inx == l.selectedIndex
		if shouldFocus && !f.IsFocused() {
			cmds = append(cmds, f.Focus())
			l.invalidate(item.ID())
		} else if !shouldFocus && f.IsFocused() {
			cmds = append(cmds, f.Blur())
			l.invalidate(item.ID())
		}
	}
	return tea.Batch(cmds...)
}

// changeSelectionWhenScrolling keeps the selection inside the viewport
// when the user scrolls by lines rather than by items.
func (l *list[T]) changeSelectionWhenScrolling() {
	sel := l.selectedIndex
	itemsLen := l.items.Len()
	if sel < 0 || sel >= itemsLen {
		return
	}
	viewTop := l.engine.ScrollOffset()
	viewBot := viewTop + float64(l.height)
	top := l.engine.OffsetOf(sel)
	bot := l.engine.OffsetOf(sel + 1)

	if bot <= viewTop {
		// selection scrolled off the top: take the first selectable row
		// that reaches into the viewport
		for i := sel + 1; i < itemsLen; i++ {
			if l.engine.OffsetOf(i) >= viewBot {
				return
			}
			item, ok := l.items.Get(i)
			if !ok {
				continue
			}
			if _, ok := any(item).(Focusable); !ok {
				continue
			}
			if l.engine.OffsetOf(i+1) > viewTop {
				l.selectedIndex = i
				return
			}
		}
	} else if top >= viewBot {
		for i := sel - 1; i >= 0; i-- {
			if l.engine.OffsetOf(i+1) <= viewTop {
				return
			}
			item, ok := l.items.Get(i)
			if !ok {
				continue
			}
			if _, ok := any(item).(Focusable); !ok {
				continue
			}
			if l.engine.OffsetOf(i) < viewBot {
				l.selectedIndex = i
				return
			}
		}
	}
}

// MoveDown implements List.
func (l *list[T]) MoveDown(n int) tea.Cmd {
	before := l.engine.ScrollOffset()
	l.engine.ScrollBy(float64(n))
	moved := int(l.engine.ScrollOffset() - before)
	l.shiftTextSelection(-moved)
	l.changeSelectionWhenScrolling()
	return l.render()
}

// MoveUp implements List.
func (l *list[T]) MoveUp(n int) tea.Cmd {
	before := l.engine.ScrollOffset()
	l.engine.ScrollBy(float64(-n))
	moved := int(before - l.engine.ScrollOffset())
	l.shiftTextSelection(moved)
	l.changeSelectionWhenScrolling()
	return l.render()
}

// GoToTop implements List.
func (l *list[T]) GoToTop() tea.Cmd {
	l.engine.ScrollTo(0)
	l.selectedIndex = l.firstSelectableItemBelow(ItemNotFound)
	return l.render()
}

// GoToBottom implements List.
func (l *list[T]) GoToBottom() tea.Cmd {
	l.engine.ScrollToBottom()
	l.anchorEnd = true
	l.selectedIndex = l.firstSelectableItemAbove(l.items.Len())
	return l.render()
}

// SelectItemAbove implements List.
func (l *list[T]) SelectItemAbove() tea.Cmd {
	if l.selectedIndex < 0 {
		return nil
	}
	newIndex := l.firstSelectableItemAbove(l.selectedIndex)
	if newIndex == ItemNotFound {
		return nil
	}
	l.selectedIndex = newIndex
	l.revealIndex = newIndex
	return l.render()
}

// SelectItemBelow implements List.
func (l *list[T]) SelectItemBelow() tea.Cmd {
	if l.selectedIndex < 0 {
		return nil
	}
	newIndex := l.firstSelectableItemBelow(l.selectedIndex)
	if newIndex == ItemNotFound {
		return nil
	}
	l.selectedIndex = newIndex
	l.revealIndex = newIndex
	return l.render()
}

// SelectedItem implements List.
func (l *list[T]) SelectedItem() *T {
	item, ok := l.items.Get(l.selectedIndex)
	if !ok {
		return nil
	}
	return &item
}

// SelectedItemID returns the ID of the currently selected item, or "".
func (l *list[T]) SelectedItemID() string {
	item, ok := l.items.Get(l.selectedIndex)
	if !ok {
		return ""
	}
	return item.ID()
}

// SetSelected implements List.
func (l *list[T]) SetSelected(id string) tea.Cmd {
	if inx, ok := l.indexMap.Get(id); ok {
		l.selectedIndex = inx
		l.revealIndex = inx
	} else {
		l.selectedIndex = ItemNotFound
	}
	return l.render()
}

// ScrollToItem brings the item with the given ID fully into view without
// changing the selection.
func (l *list[T]) ScrollToItem(id string) tea.Cmd {
	inx, ok := l.indexMap.Get(id)
	if !ok {
		return nil
	}
	l.revealIndex = inx
	return l.render()
}

// Items implements List.
func (l *list[T]) Items() []T {
	items := make([]T, 0, l.items.Len())
	for item := range l.items.Seq() {
		items = append(items, item)
	}
	return items
}

// SetItems implements List.
func (l *list[T]) SetItems(items []T) tea.Cmd {
	l.items.SetSlice(items)
	var cmds []tea.Cmd
	for inx, item := range l.items.Seq2() {
		if i, ok := any(item).(Indexable); ok {
			i.SetIndex(inx)
		}
		cmds = append(cmds, item.Init())
		if l.width > 0 && l.height > 0 {
			cmds = append(cmds, item.SetSize(l.width, l.height))
		}
	}
	l.rebuildIndexMap()
	l.viewCache = csync.NewMap[uint64, string]()
	l.selectedIndex = ItemNotFound
	_ = l.engine.Reset(l.items.Len())
	cmds = append(cmds, l.render())
	return tea.Batch(cmds...)
}

// AppendItem implements List.
func (l *list[T]) AppendItem(item T) tea.Cmd {
	cmds := []tea.Cmd{item.Init()}
	n := l.items.Len()
	l.items.Append(item)
	l.indexMap.Set(item.ID(), n)
	_ = l.engine.Splice(n, n, 1)
	if l.width > 0 && l.height > 0 {
		cmds = append(cmds, item.SetSize(l.width, l.height))
	}
	cmds = append(cmds, l.render())
	return tea.Sequence(cmds...)
}

// PrependItem implements List.
func (l *list[T]) PrependItem(item T) tea.Cmd {
	cmds := []tea.Cmd{item.Init()}
	atTop := l.engine.ScrollOffset() == 0
	l.items.Prepend(item)
	l.rebuildIndexMap()
	_ = l.engine.Splice(0, 0, 1)
	if atTop && l.alignment == vlist.AlignTop {
		// at the top the new item should be visible, not pushed above it
		l.engine.ScrollTo(0)
	}
	if l.selectedIndex >= 0 {
		l.selectedIndex++
	}
	if l.width > 0 && l.height > 0 {
		cmds = append(cmds, item.SetSize(l.width, l.height))
	}
	cmds = append(cmds, l.render())
	return tea.Batch(cmds...)
}

// DeleteItem implements List.
func (l *list[T]) DeleteItem(id string) tea.Cmd {
	inx, ok := l.indexMap.Get(id)
	if !ok {
		return nil
	}
	if l.selectedIndex == inx {
		switch {
		case inx > 0:
			l.selectedIndex = inx - 1
		case l.items.Len() > 1:
			l.selectedIndex = 0
		default:
			l.selectedIndex = ItemNotFound
		}
	} else if l.selectedIndex > inx {
		l.selectedIndex--
	}
	l.items.Delete(inx)
	l.invalidate(id)
	l.rebuildIndexMap()
	_ = l.engine.Splice(inx, inx+1, 0)
	return l.render()
}

// UpdateItem implements List.
func (l *list[T]) UpdateItem(id string, item T) tea.Cmd {
	inx, ok := l.indexMap.Get(id)
	if !ok {
		return nil
	}
	l.items.Set(inx, item)
	l.invalidate(id)
	if item.ID() != id {
		l.indexMap.Del(id)
		l.indexMap.Set(item.ID(), inx)
	}
	cmds := []tea.Cmd{item.Init()}
	if l.width > 0 && l.height > 0 {
		cmds = append(cmds, item.SetSize(l.width, l.height))
	}
	cmds = append(cmds, l.render())
	return tea.Sequence(cmds...)
}

func (l *list[T]) rebuildIndexMap() {
	l.indexMap = csync.NewMap[string, int]()
	for inx, item := range l.items.Seq2() {
		if i, ok := any(item).(Indexable); ok {
			i.SetIndex(inx)
		}
		l.indexMap.Set(item.ID(), inx)
	}
}

// Focus implements List.
func (l *list[T]) Focus() tea.Cmd {
	l.focused = true
	return l.render()
}

// Blur implements List.
func (l *list[T]) Blur() tea.Cmd {
	l.focused = false
	return l.render()
}

// IsFocused implements List.
func (l *list[T]) IsFocused() bool {
	return l.focused
}

// GetSize implements List.
func (l *list[T]) GetSize() (int, int) {
	return l.width, l.height
}

// SetSize implements List.
func (l *list[T]) SetSize(width, height int) tea.Cmd {
	oldWidth := l.width
	l.width = width
	l.height = height
	if oldWidth == width {
		return l.render()
	}
	// width changes invalidate every cached view and measurement
	l.viewCache = csync.NewMap[uint64, string]()
	var cmds []tea.Cmd
	for _, item := range l.items.Seq2() {
		if cmd := item.SetSize(width, height); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	_ = l.engine.Reset(l.items.Len())
	if l.selectedIndex >= 0 {
		l.revealIndex = l.selectedIndex
	}
	cmds = append(cmds, l.render())
	return tea.Batch(cmds...)
}
