package list

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// Item is a renderable list entry with a stable identity. IDs must be
// derived from the underlying data, not the item's current position: they
// are the keys that keep interactive state attached to logical rows while
// on-screen slots are recycled.
type Item interface {
	ID() string
	Init() tea.Cmd
	Update(tea.Msg) (tea.Model, tea.Cmd)
	View() string
	SetSize(width, height int) tea.Cmd
	GetSize() (int, int)
}

// Focusable items can be selected; the list focuses the selected item and
// blurs the rest.
type Focusable interface {
	Focus() tea.Cmd
	Blur() tea.Cmd
	IsFocused() bool
}

// Indexable items are told their logical position whenever the list's
// structure changes.
type Indexable interface {
	SetIndex(int)
}

// FilterableItem is an item that can be fuzzy-filtered.
type FilterableItem interface {
	Item
	FilterValue() string
}

// HasMatchIndexes receives the rune positions matched by the current
// filter query so items can highlight them.
type HasMatchIndexes interface {
	MatchIndexes([]int)
}

// StringItem is a plain, non-selectable text item.
type StringItem struct {
	id      string
	content string
	width   int
}

// NewStringItem creates a text item with the given stable ID.
func NewStringItem(id, content string) *StringItem {
	return &StringItem{id: id, content: content}
}

func (s *StringItem) ID() string { return s.id }

func (s *StringItem) Init() tea.Cmd { return nil }

func (s *StringItem) Update(tea.Msg) (tea.Model, tea.Cmd) { return s, nil }

func (s *StringItem) View() string { return s.content }

func (s *StringItem) SetSize(width, height int) tea.Cmd {
	s.width = width
	return nil
}

func (s *StringItem) GetSize() (int, int) {
	return s.width, lipgloss.Height(s.content)
}

// SelectableItem is a text item that renders a marker while focused.
type SelectableItem struct {
	*StringItem
	focused bool
}

// NewSelectableItem creates a focusable text item. Its ID is the content
// itself, so contents must be unique within one list.
func NewSelectableItem(content string) *SelectableItem {
	return &SelectableItem{StringItem: NewStringItem(content, content)}
}

func (s *SelectableItem) Update(tea.Msg) (tea.Model, tea.Cmd) { return s, nil }

func (s *SelectableItem) View() string {
	marker := "  "
	if s.focused {
		marker = "> "
	}
	return marker + s.content
}

func (s *SelectableItem) Focus() tea.Cmd {
	s.focused = true
	return nil
}

func (s *SelectableItem) Blur() tea.Cmd {
	s.focused = false
	return nil
}

func (s *SelectableItem) IsFocused() bool { return s.focused }
