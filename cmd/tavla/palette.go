package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newPaletteCommand(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Preview the configured board colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rows := []paletteRow{
				{role: "accent", value: cfg.UI.AccentColor, use: "selected column, form border"},
				{role: "muted", value: cfg.UI.MutedColor, use: "people line, ids, help"},
				{role: "marker", value: cfg.UI.MarkerColor, use: "droppable column while dragging"},
			}
			_, _ = fmt.Fprintln(out, renderPaletteTable(rows, cfg.UI.AccentColor))
			_, _ = fmt.Fprintf(out, "columns: %s | %s\n", cfg.Board.ActiveTitle, cfg.Board.FinishedTitle)
			if all {
				_, _ = fmt.Fprintln(out)
				write256Colors(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also print the ANSI 256 color grid")
	return cmd
}

// paletteRow is one configured UI color.
type paletteRow struct {
	role  string
	value string
	use   string
}

func renderPaletteTable(rows []paletteRow, borderColor string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))).
		Headers("Role", "Value", "Sample", "Used for").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
			}
			return lipgloss.NewStyle()
		})
	for _, r := range rows {
		t.Row(r.role, r.value, colorSample(r.value, 10), r.use)
	}
	return t.Render()
}

// colorSample paints value on its own background with readable text.
func colorSample(value string, width int) string {
	fg := lipgloss.Color("15")
	if idx, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		fg = getContrastColor(idx)
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(value)).
		Foreground(fg).
		Width(width).
		Align(lipgloss.Center).
		Render(value)
}

func write256Colors(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Standard 16 Colors:")
	writeColorBlock(w, 0, 15, 8)
	_, _ = fmt.Fprintln(w, "\n216 Color Cube (16-231):")
	for i := range 6 {
		writeColorBlock(w, 16+i*36, 16+(i+1)*36-1, 6)
	}
	_, _ = fmt.Fprintln(w, "\nGrayscale (232-255):")
	writeColorBlock(w, 232, 255, 12)
}

func writeColorBlock(w io.Writer, start, end, perRow int) {
	count := 0
	for i := start; i <= end; i++ {
		_, _ = fmt.Fprint(w, colorSample(strconv.Itoa(i), 6))
		count++
		if count%perRow == 0 {
			_, _ = fmt.Fprintln(w)
		} else {
			_, _ = fmt.Fprint(w, " ")
		}
	}
	if count%perRow != 0 {
		_, _ = fmt.Fprintln(w)
	}
}

// getContrastColor picks white or black text for an ANSI background index.
func getContrastColor(colorIndex int) lipgloss.Color {
	switch {
	case colorIndex < 16:
		switch colorIndex {
		case 0, 1, 4, 5, 8:
			return lipgloss.Color("15")
		}
		return lipgloss.Color("0")
	case colorIndex >= 232:
		if colorIndex < 244 {
			return lipgloss.Color("15")
		}
		return lipgloss.Color("0")
	default:
		return lipgloss.Color("15")
	}
}
