package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextSelection(t *testing.T) {
	t.Parallel()

	t.Run("selected text spans lines without padding", func(t *testing.T) {
		t.Parallel()
		items := []Item{
			NewStringItem("a", "alpha"),
			NewStringItem("b", "bravo"),
			NewStringItem("c", "charlie"),
		}
		l := New(items, WithSize(20, 10))
		l.Init()

		l.StartSelection(0, 0)
		l.EndSelection(19, 1)
		l.SelectionStop()
		assert.Equal(t, "alpha\nbravo", l.GetSelectedText())
	})

	t.Run("partial line selection clips to the text", func(t *testing.T) {
		t.Parallel()
		l := New([]Item{NewStringItem("a", "alpha")}, WithSize(20, 10))
		l.Init()

		l.StartSelection(2, 0)
		l.EndSelection(15, 0)
		l.SelectionStop()
		assert.Equal(t, "pha", l.GetSelectedText())
	})

	t.Run("paragraph selection stops at blank lines", func(t *testing.T) {
		t.Parallel()
		items := []Item{
			NewStringItem("a", "first block"),
			NewStringItem("b", "second block"),
		}
		l := New(items, WithSize(20, 10), WithGap(1))
		l.Init()

		l.SelectParagraph(3, 0)
		assert.Equal(t, "first block", l.GetSelectedText())
	})

	t.Run("clearing the selection empties it", func(t *testing.T) {
		t.Parallel()
		l := New([]Item{NewStringItem("a", "alpha")}, WithSize(20, 10))
		l.Init()

		l.StartSelection(0, 0)
		l.EndSelection(5, 0)
		assert.True(t, l.HasSelection())

		l.SelectionClear()
		assert.False(t, l.HasSelection())
		assert.Empty(t, l.GetSelectedText())
	})
}
