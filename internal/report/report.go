// Package report prints a rendered dashboard view for terminals and scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"alumni/internal/aggregate"
)

// Format selects the report encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format flag value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be one of [text json yaml]", s)
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	captionStyle = lipgloss.NewStyle().Italic(true).Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// Write encodes v to w in format f
func Write(w io.Writer, v aggregate.View, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		_, err := io.WriteString(w, Text(v))
		return err
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// Text renders v as titled tables
func Text(v aggregate.View) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("HCPSMSHS Alumni Dashboard"))
	fmt.Fprintf(&sb, " (%d records)\n", v.RecordCount)
	fmt.Fprintf(&sb, "Years: %s | Courses: %s | Universities: %s\n\n",
		listOrDash(v.Selection.Years), listOrDash(v.Selection.Courses), listOrDash(v.Selection.Universities))

	section(&sb, "Number of Alumni by Course")
	if !v.Courses.ShouldRender {
		sb.WriteString(captionStyle.Render(v.Courses.Caption) + "\n\n")
	} else {
		rows := make([][]string, len(v.Courses.Rows))
		for i, r := range v.Courses.Rows {
			rows[i] = []string{r.Course, r.Batch, strconv.Itoa(r.Count), strconv.Itoa(r.TotalForGroup), percent(r.Percentage)}
		}
		sb.WriteString(render([]string{"Course", "Batch", "Count", "Count total", "Percentage"}, rows))
	}

	section(&sb, "Number of Alumni by University")
	if !v.Universities.ShouldRender {
		sb.WriteString(captionStyle.Render(v.Universities.Caption) + "\n\n")
	} else {
		rows := make([][]string, len(v.Universities.Rows))
		for i, r := range v.Universities.Rows {
			rows[i] = []string{r.University, strconv.Itoa(r.Count), percent(r.Percentage)}
		}
		sb.WriteString(render([]string{"University", "Count", "Percentage"}, rows))
	}

	frequency(&sb, fmt.Sprintf("Top %d Selected Courses", len(v.TopCourses.Rows)), v.TopCourses)
	frequency(&sb, fmt.Sprintf("Top %d Selected University", len(v.TopUniversities.Rows)), v.TopUniversities)

	return sb.String()
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(titleStyle.Render(title) + "\n")
}

func frequency(sb *strings.Builder, title string, ft aggregate.FrequencyTable) {
	section(sb, title)
	cols := ft.Columns()
	rows := make([][]string, len(ft.Rows))
	for i, r := range ft.Rows {
		rows[i] = []string{r.Category, strconv.Itoa(r.Count)}
	}
	sb.WriteString(render(cols[:], rows))
}

func render(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return captionStyle.Render("No data") + "\n\n"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String() + "\n\n"
}

func percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64) + "%"
}

func listOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
