package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/magwenelab-rust/fasta/internal/config"
	"github.com/magwenelab-rust/fasta/internal/fasta"
	"github.com/magwenelab-rust/fasta/internal/seqio"
)

// Colors for modern design
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	accentColor  = lipgloss.Color("#F59E0B") // Amber
	surfaceColor = lipgloss.Color("#1F2937") // Dark gray
	textColor    = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor   = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor  = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	sequenceStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(lipgloss.Color("#111827")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

type listItem struct {
	record fasta.Record
}

func (i listItem) FilterValue() string {
	return i.record.Header()
}

func (i listItem) Title() string {
	return i.record.ID
}

func (i listItem) Description() string {
	desc := i.record.Description
	if desc == "" {
		desc = "(no description)"
	}
	return fmt.Sprintf("%s    len: %d", desc, i.record.Len())
}

type mode int

const (
	modeSequence mode = iota
	modeCanonical
	modeComposition
	modeCount
)

func (m mode) String() string {
	switch m {
	case modeSequence:
		return "Sequence"
	case modeCanonical:
		return "Canonical FASTA"
	case modeComposition:
		return "Composition"
	default:
		return "Unknown"
	}
}

type model struct {
	list          list.Model
	records       []fasta.Record
	source        string
	wrapWidth     int
	currentMode   mode
	showHelp      bool
	width         int
	height        int
	selectedIndex int
}

func newModel(source string, records []fasta.Record, wrapWidth int) model {
	items := make([]list.Item, len(records))
	for i, record := range records {
		items[i] = listItem{record: record}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = source
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	return model{
		list:        l,
		records:     records,
		source:      source,
		wrapWidth:   wrapWidth,
		currentMode: modeSequence,
	}
}

func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % modeCount
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// left panel takes 1/3 of width
		m.list.SetWidth(msg.Width / 3)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		// keys go to the filter input while the user is typing
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "h":
			m.showHelp = !m.showHelp
			return m, nil
		case "tab":
			return m.cycleMode(), nil
		case "1":
			m.currentMode = modeSequence
			return m, nil
		case "2":
			m.currentMode = modeCanonical
			return m, nil
		case "3":
			m.currentMode = modeComposition
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpModal()
	}

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderLeftPanel(),
		m.renderRightPanel(),
	)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		m.renderStatusBar(),
	)
}

func (m model) renderLeftPanel() string {
	return containerStyle.
		Width(m.width/3 - 2).
		Height(m.height - 4).
		Render(m.list.View())
}

// panelWidth is the usable text width of the right panel.
func (m model) panelWidth() int {
	w := m.width*2/3 - 6
	if w < 10 {
		w = 10
	}
	return w
}

func (m model) renderRightPanel() string {
	panel := containerStyle.
		Width(m.width*2/3 - 2).
		Height(m.height - 4)

	if len(m.records) == 0 {
		return panel.Render("No records in " + m.source)
	}
	selected, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return panel.Render("No item selected")
	}
	rec := selected.record

	header := titleStyle.Render(rec.ID)
	meta := labelStyle.Render(fmt.Sprintf("%s    length: %d", rec.Description, rec.Len()))
	title := lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(m.currentMode.String() + ":")

	// keep the body inside the panel
	lines := m.buildRightLines(rec)
	if limit := m.height - 10; limit > 0 && len(lines) > limit {
		lines = append(lines[:limit], "...")
	}
	body := sequenceStyle.Render(strings.Join(lines, "\n"))

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, header, meta, "", title, body))
}

// buildRightLines renders the selected record for the current mode.
func (m model) buildRightLines(rec fasta.Record) []string {
	switch m.currentMode {
	case modeCanonical:
		return strings.Split(strings.TrimSuffix(fasta.Format(rec, m.wrapWidth), "\n"), "\n")
	case modeComposition:
		return composition(rec.Sequence)
	}
	if rec.Sequence == "" {
		return []string{labelStyle.Render("empty sequence")}
	}
	// wrap at the panel width, skipping the header line
	text := fasta.Format(fasta.Record{ID: rec.ID, Sequence: rec.Sequence}, m.panelWidth())
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	return lines[1:]
}

// composition lists per-character counts, most frequent first.
func composition(seq string) []string {
	if seq == "" {
		return []string{labelStyle.Render("empty sequence")}
	}
	counts := map[rune]int{}
	total := 0
	for _, r := range seq {
		counts[r]++
		total++
	}
	chars := make([]rune, 0, len(counts))
	for r := range counts {
		chars = append(chars, r)
	}
	sort.Slice(chars, func(i, j int) bool {
		if counts[chars[i]] != counts[chars[j]] {
			return counts[chars[i]] > counts[chars[j]]
		}
		return chars[i] < chars[j]
	})
	lines := make([]string, 0, len(chars))
	for _, r := range chars {
		n := counts[r]
		lines = append(lines, fmt.Sprintf("%c  %8d  %5.1f%%", r, n, 100*float64(n)/float64(total)))
	}
	return lines
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%d/%d records", m.selectedIndex+1, len(m.records))
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode)
	rightInfo := "Press 'h' for help • 'q' to quit"

	spacing := m.width - lipgloss.Width(leftInfo) - lipgloss.Width(centerInfo) - lipgloss.Width(rightInfo) - 6
	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		statusContent = leftInfo + strings.Repeat(" ", leftSpacing) + centerInfo + strings.Repeat(" ", spacing-leftSpacing) + rightInfo
	} else {
		// Fallback for narrow terminals
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}
	return statusBarStyle.Width(m.width).Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `FASTA Browser - Help

Navigation:
  ↑/↓, j/k     Navigate list
  /            Filter records by header

View Modes:
  1            Raw sequence
  2            Canonical FASTA text
  3            Character composition
  tab          Next mode

General:
  h            Toggle this help
  q, Ctrl+C    Quit application

Current Mode: ` + m.currentMode.String() + `
Total Records: ` + fmt.Sprintf("%d", len(m.records)) + `
`

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Render(helpContent)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// loadRecords parses the whole file; the browser needs random access to every record.
func loadRecords(path string, opts ...fasta.Option) ([]fasta.Record, error) {
	r, err := seqio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return fasta.ReadAll(r, opts...)
}

func main() {
	configFlag := flag.String("config", "", "path to config.json (optional)")
	widthFlag := flag.Int("width", 0, "wrap width for the canonical view; 0 uses config or default")
	flag.Parse()

	logger := log.New(os.Stderr)

	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}
	path := cfg.InputFasta
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" || path == seqio.Stdio {
		logger.Fatal("usage: tui [flags] FILE (stdin is used for the keyboard)")
	}
	if *widthFlag != 0 {
		cfg.WrapWidth = *widthFlag
	}

	records, err := loadRecords(path, cfg.Options()...)
	if err != nil {
		logger.Fatal("failed to read fasta", "path", path, "err", err)
	}

	p := tea.NewProgram(newModel(path, records, cfg.Width()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("tui exited with error", "err", err)
		os.Exit(1)
	}
}
