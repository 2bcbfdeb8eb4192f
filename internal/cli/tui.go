package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slngraph/internal/config"
	"github.com/matzehuels/slngraph/pkg/errors"
	"github.com/matzehuels/slngraph/pkg/pipeline"
)

// List styles
var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	listHeadStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// viewCommand creates the interactive panel command.
func (c *CLI) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <solution>",
		Short: "Show the dependency graph panel and rescan on demand",
		Long: `Open an interactive panel listing the scanned projects, their
dependency counts and any failures. Press r to scan again (a scan still
running is cancelled, the latest one wins) and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), args[0], cfg)
		},
	}

	addScanFlags(cmd.Flags())
	return cmd
}

func (c *CLI) runView(ctx context.Context, path string, cfg *config.Config) error {
	opener, err := c.newOpener()
	if err != nil {
		return err
	}
	if _, _, err := opener.Open(path); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// The panel owns the terminal; log lines would tear it.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(c.out)

	scan := func(ctx context.Context) (*pipeline.Result, error) {
		host, _, err := opener.Open(path)
		if err != nil {
			return nil, err
		}
		return runner.Run(ctx, host, cfg.PipelineOptions())
	}

	m := newPanelModel(ctx, path, scan)
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if fm, ok := final.(panelModel); ok {
		fm.stop()
	}
	return err
}

// =============================================================================
// panelModel - scan results panel
// =============================================================================

// scanFunc runs one scan-and-render pass.
type scanFunc func(ctx context.Context) (*pipeline.Result, error)

// rescanMsg requests a new scan.
type rescanMsg struct{}

// scanDoneMsg carries the outcome of scan number gen.
type scanDoneMsg struct {
	gen int
	res *pipeline.Result
	err error
}

type tickMsg struct{}

// panelModel is the bubbletea model of the view command. Only the most
// recently started scan may update it; older ones are cancelled and their
// results dropped.
type panelModel struct {
	parent   context.Context
	solution string
	scan     scanFunc

	gen      int
	cancel   context.CancelFunc
	scanning bool
	frame    int

	res      *pipeline.Result
	err      error
	finished time.Time
}

func newPanelModel(ctx context.Context, solution string, scan scanFunc) panelModel {
	return panelModel{parent: ctx, solution: solution, scan: scan}
}

func (m panelModel) Init() tea.Cmd {
	return func() tea.Msg { return rescanMsg{} }
}

func (m panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.stop()
			return m, tea.Quit
		case "r":
			return m.startScan()
		}
	case rescanMsg:
		return m.startScan()
	case scanDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.stop()
		m.scanning = false
		m.finished = time.Now()
		if !stderrors.Is(msg.err, context.Canceled) {
			m.res, m.err = msg.res, msg.err
		}
	case tickMsg:
		if !m.scanning {
			return m, nil
		}
		m.frame++
		return m, tick()
	}
	return m, nil
}

// startScan cancels the in-flight scan, if any, and starts a new one.
func (m panelModel) startScan() (tea.Model, tea.Cmd) {
	m.stop()
	m.gen++
	ctx, cancel := context.WithCancel(m.parent)
	m.cancel = cancel
	wasScanning := m.scanning
	m.scanning = true

	gen, scan := m.gen, m.scan
	run := func() tea.Msg {
		res, err := scan(ctx)
		return scanDoneMsg{gen: gen, res: res, err: err}
	}
	if wasScanning {
		return m, run
	}
	return m, tea.Batch(run, tick())
}

func (m panelModel) stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m panelModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dependency Graph"))
	b.WriteString("  ")
	b.WriteString(StyleValue.Render(m.solution))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("r rescan  q quit"))
	b.WriteString("\n\n")

	switch {
	case m.scanning:
		b.WriteString(styleIconSpinner.Render(spinnerFrames[m.frame%len(spinnerFrames)]))
		b.WriteString(" " + StyleDim.Render("Scanning..."))
		b.WriteString("\n\n")
	case !m.finished.IsZero():
		b.WriteString(StyleDim.Render("Last scan " + m.finished.Format("15:04:05")))
		b.WriteString("\n\n")
	}

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.err))
		b.WriteString("\n")
		return b.String()
	}
	if m.res == nil {
		return b.String()
	}

	st := m.res.Stats
	b.WriteString(fmt.Sprintf("%s projects  %s nodes  %s edges",
		StyleNumber.Render(strconv.Itoa(st.Projects)),
		StyleNumber.Render(strconv.Itoa(st.Vertices)),
		StyleNumber.Render(strconv.Itoa(st.Edges))))
	if st.Cyclic {
		b.WriteString("  " + StyleWarning.Render("cyclic"))
	}
	b.WriteString("\n")

	rows := make([][]string, 0, len(m.res.Records))
	for _, r := range m.res.Records {
		rows = append(rows, []string{
			r.Name,
			strconv.Itoa(len(m.res.Graph.Children(r.Name))),
			strconv.Itoa(len(r.DeclaredTypes)),
			r.FilePath,
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Project", "Deps", "Types", "Path").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeadStyle
			}
			if col == 3 {
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	for _, f := range m.res.Failures {
		b.WriteString(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(f.Project) +
			" " + listDimStyle.Render(errors.UserMessage(f.Err)))
		b.WriteString("\n")
	}
	if uri := m.res.DisplayURI(); uri != "" {
		b.WriteString(StyleDim.Render(iconArrow) + " " + StyleLink.Render(uri))
		b.WriteString("\n")
	}
	return b.String()
}
