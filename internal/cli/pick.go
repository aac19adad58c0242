package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cladeview/pkg/clade"
	"github.com/matzehuels/cladeview/pkg/pipeline"
	"github.com/matzehuels/cladeview/pkg/tree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// CladeListModel - Interactive clade selection
// =============================================================================

// CladeItem is one selectable clade.
type CladeItem struct {
	Name  string
	Depth int
	Shape clade.Shape
}

// CladeListModel is the bubbletea model for interactive clade selection.
type CladeListModel struct {
	Clades   []CladeItem
	Cursor   int
	Selected *CladeItem
	Height   int
	Offset   int
}

// NewCladeListModel creates a new clade list model.
func NewCladeListModel(clades []CladeItem) CladeListModel {
	return CladeListModel{
		Clades: clades,
		Height: 15,
	}
}

// cladeItems lists every internal node of a laid out tree in preorder.
func cladeItems(t *tree.Tree) []CladeItem {
	var items []CladeItem
	for _, n := range t.Preorder() {
		if n.IsTip() {
			continue
		}
		shape, err := clade.Bounds(n)
		if err != nil {
			continue
		}
		items = append(items, CladeItem{Name: n.Name, Depth: len(n.Ancestors()), Shape: shape})
	}
	return items
}

func (m CladeListModel) Init() tea.Cmd {
	return nil
}

func (m CladeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Clades)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Clades) == 0 {
				return m, nil
			}
			item := m.Clades[m.Cursor]
			m.Selected = &item
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m CladeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Clade"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Clades))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		c := m.Clades[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := strings.Repeat(" ", c.Depth) + c.Name
		rows = append(rows, []string{
			cursor,
			name,
			fmt.Sprintf("%d", c.Shape.Tips),
			formatDegrees(c.Shape.Sweep),
			fmt.Sprintf("%.2f", c.Shape.Radius),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Clade", "Tips", "Sweep", "Radius").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Clades))))

	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// pickCommand creates the pick command for choosing a clade interactively.
func (c *CLI) pickCommand() *cobra.Command {
	var (
		output string
		color  string
		single bool
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "pick [tree.nwk]",
		Short: "Choose a clade interactively and write its sector",
		Long: `Choose a clade interactively and write its sector.

Lists every internal node of the laid out tree with its tip count and the
angle its wedge spans. The selected clade is collapsed into a sector buffer,
written in the same format as the "sector" command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPick(cmd.Context(), cmd, args[0], &flags, c.sectorColor(cmd, color), output, single)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&color, "color", "c", "", "sector hex color (default from config)")
	cmd.Flags().BoolVar(&single, "float32", false, "write single-precision values")
	addLayoutFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runPick(ctx context.Context, cmd *cobra.Command, input string, flags *layoutFlags, color, output string, single bool) error {
	res, runner, err := c.layoutTree(ctx, cmd, input, flags)
	if err != nil {
		return err
	}
	defer runner.Close()

	items := cladeItems(res.Tree)
	if len(items) == 0 {
		printWarning("Tree has no internal nodes")
		return nil
	}

	final, err := tea.NewProgram(NewCladeListModel(items), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("clade picker: %w", err)
	}
	picked := final.(CladeListModel).Selected
	if picked == nil {
		printInfo("No clade selected")
		return nil
	}

	buf, err := pipeline.Collapse(res, picked.Name, color)
	if err != nil {
		return err
	}
	c.Logger.Debug("picked clade", "name", picked.Name, "tips", picked.Shape.Tips)
	if output != "" {
		printInfo("Clade %s", StyleHighlight.Render(picked.Name))
		printStatLine(cladeStats(picked.Shape))
	}
	return writeBuffer(cmd, output, buf, single)
}
