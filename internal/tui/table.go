package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sevahub/relay/internal/files"
)

// RenderFileTable prints a table of the files queued for upload.
func RenderFileTable(infos []files.FileInfo) {
	if len(infos) == 0 {
		fmt.Println(MutedStyle.Render("No files"))
		return
	}

	rows := make([][]string, len(infos))
	for i, f := range infos {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			truncate(f.Name, 50),
			formatSize(f.Size),
			truncate(f.Type, 30),
		}
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("#", "Name", "Size", "Type").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})

	fmt.Println(tbl.Render())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
