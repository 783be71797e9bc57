// Command vlist-demo is a small showcase for the virtualized list: a
// scrollable feed of generated items with fuzzy filtering, optionally
// bottom-anchored like a chat log.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	_ "net/http/pprof" // profiling

	_ "github.com/joho/godotenv/autoload" // automatically load .env files

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	charmlog "github.com/charmbracelet/log/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/listkit/listkit/list"
)

var (
	itemCount int
	bottom    bool
	gap       int
	feed      bool
	debug     bool
	logFile   string
)

func init() {
	rootCmd.Flags().IntVarP(&itemCount, "count", "n", 200, "number of generated items")
	rootCmd.Flags().BoolVarP(&bottom, "bottom", "b", false, "anchor the list at the bottom, chat style")
	rootCmd.Flags().IntVarP(&gap, "gap", "g", 0, "blank lines between items")
	rootCmd.Flags().BoolVarP(&feed, "feed", "f", false, "keep appending items while running")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "debug logging")
	rootCmd.Flags().StringVar(&logFile, "log-file", "vlist-demo.log", "debug log destination")
}

var rootCmd = &cobra.Command{
	Use:   "vlist-demo",
	Short: "Virtualized list component demo",
	Example: `
# Browse 10k generated items
vlist-demo -n 10000

# Chat-style feed that grows at the bottom
vlist-demo --bottom --feed
  `,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		program := tea.NewProgram(
			newDemo(itemCount),
			tea.WithContext(cmd.Context()),
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return err
		}
		return nil
	},
}

func setupLogging() {
	if !debug {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return
	}
	logger := charmlog.NewWithOptions(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
	}, charmlog.Options{
		Level:           charmlog.DebugLevel,
		ReportTimestamp: true,
		ReportCaller:    true,
	})
	slog.SetDefault(slog.New(logger))
}

func main() {
	if os.Getenv("VLIST_PROFILE") != "" {
		go func() {
			slog.Info("Serving pprof at localhost:6060")
			if httpErr := http.ListenAndServe("localhost:6060", nil); httpErr != nil {
				slog.Error("Failed to pprof listen", "error", httpErr)
			}
		}()
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

var selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

// feedItem is a focusable multi-line entry with a stable random ID.
type feedItem struct {
	id      string
	title   string
	body    string
	focused bool
	width   int
}

var loremWords = strings.Fields(
	"lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor incididunt ut labore",
)

func newFeedItem(n int) *feedItem {
	words := make([]string, 3+rand.Intn(12))
	for i := range words {
		words[i] = loremWords[rand.Intn(len(loremWords))]
	}
	return &feedItem{
		id:    uuid.NewString(),
		title: fmt.Sprintf("entry %d", n),
		body:  strings.Join(words, " "),
	}
}

func (f *feedItem) ID() string                          { return f.id }
func (f *feedItem) Init() tea.Cmd                       { return nil }
func (f *feedItem) Update(tea.Msg) (tea.Model, tea.Cmd) { return f, nil }
func (f *feedItem) FilterValue() string                 { return f.title + " " + f.body }
func (f *feedItem) SetSize(width, height int) tea.Cmd   { f.width = width; return nil }
func (f *feedItem) GetSize() (int, int)                 { return f.width, lipgloss.Height(f.View()) }
func (f *feedItem) Focus() tea.Cmd                      { f.focused = true; return nil }
func (f *feedItem) Blur() tea.Cmd                       { f.focused = false; return nil }
func (f *feedItem) IsFocused() bool                     { return f.focused }

func (f *feedItem) View() string {
	title := f.title
	if f.focused {
		title = selectedStyle.Render("> " + title)
	}
	body := f.body
	if f.width > 2 {
		body = lipgloss.NewStyle().Width(f.width - 2).Render(body)
	}
	return title + "\n  " + body
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type demo struct {
	list  list.FilterableList[*feedItem]
	next  int
	ready bool
}

func newDemo(n int) *demo {
	items := make([]*feedItem, n)
	for i := range items {
		items[i] = newFeedItem(i)
	}
	listOpts := []list.ListOption{
		list.WithGap(gap),
		list.WithEnableMouse(),
		list.WithEstimatedHeight(2),
	}
	if bottom {
		listOpts = append(listOpts, list.WithBottomAlignment())
	}
	return &demo{
		list: list.NewFilterableList(items, list.WithFilterListOptions(listOpts...)),
		next: n,
	}
}

func (d *demo) Init() tea.Cmd {
	if feed {
		return tick()
	}
	return nil
}

func (d *demo) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cmd := d.list.SetSize(msg.Width, msg.Height)
		if !d.ready {
			d.ready = true
			return d, tea.Batch(cmd, d.list.Init())
		}
		return d, cmd
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return d, tea.Quit
		}
	case tickMsg:
		item := newFeedItem(d.next)
		d.next++
		slog.Debug("appending item", "id", item.ID(), "title", item.title)
		return d, tea.Batch(d.list.AppendItem(item), tick())
	}
	u, cmd := d.list.Update(msg)
	d.list = u.(list.FilterableList[*feedItem])
	return d, cmd
}

func (d *demo) View() string {
	if !d.ready {
		return "loading..."
	}
	return d.list.View()
}
