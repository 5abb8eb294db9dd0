// SPDX-License-Identifier: MIT
/*
Package tui renders the host's listings for the terminal: available
plugins, supported file types and per-plugin information. Styles degrade
to plain text when the output is not a terminal.
*/
package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/teragonaudio/MrsWatson-sub000/internal/plugin"
	"github.com/teragonaudio/MrsWatson-sub000/internal/source"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	headerStyle = highlightStyle.Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// RenderPlugins lists available plugins grouped by location, in the order
// they were found.
func RenderPlugins(available []plugin.Available) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Available Plugins"))
	sb.WriteString("\n")

	if len(available) == 0 {
		sb.WriteString("\nNo plugins found.\n")
		return sb.String()
	}

	location := ""
	for _, a := range available {
		if a.Location != location {
			location = a.Location
			fmt.Fprintf(&sb, "\n%s\n", highlightStyle.Render(fmt.Sprintf("%s plugins (%s):", a.Variant, location)))
		}
		fmt.Fprintf(&sb, "  %s\n", a.Name)
	}
	return sb.String()
}

// RenderFileTypes tabulates the formats the host can read and write.
func RenderFileTypes(types []source.FileType) string {
	mark := func(ok bool) string {
		if ok {
			return "yes"
		}
		return "no"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(infoStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Extensions", "Format", "Read", "Write")
	for _, ft := range types {
		t.Row(strings.Join(ft.Extensions, ", "), ft.Format.String(), mark(ft.Read), mark(ft.Write))
	}
	return titleStyle.Render("Supported File Types") + "\n\n" + t.String() + "\n"
}

// RenderPluginInfo formats what a plugin reports about itself once open.
func RenderPluginInfo(info plugin.Info) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s plugin '%s'", info.Variant, info.Name)))
	sb.WriteString("\n")

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "  %s %s\n", highlightStyle.Render(name+":"), value)
		}
	}
	field("Location", info.Location)
	field("Type", info.Type.String())
	field("Description", info.Description)
	field("Vendor", info.Vendor)
	if info.Version != 0 {
		field("Version", fmt.Sprint(info.Version))
	}
	field("Unique ID", info.UniqueID)
	field("I/O", fmt.Sprintf("%d/%d", info.NumInputs, info.NumOutputs))

	if len(info.SubPlugins) > 0 {
		fmt.Fprintf(&sb, "  %s\n", highlightStyle.Render("Sub-plugins:"))
		for _, sub := range info.SubPlugins {
			fmt.Fprintf(&sb, "    %s\n", sub)
		}
	}
	if len(info.Parameters) > 0 {
		fmt.Fprintf(&sb, "  %s\n", highlightStyle.Render("Parameters:"))
		for _, p := range info.Parameters {
			fmt.Fprintf(&sb, "    %s\n", p)
		}
	}
	if len(info.Programs) > 0 {
		fmt.Fprintf(&sb, "  %s\n", highlightStyle.Render("Programs:"))
		for i, name := range info.Programs {
			line := fmt.Sprintf("    %d: %s", i, name)
			if name == info.Program {
				line = highlightStyle.Render(line + " (current)")
			}
			fmt.Fprintf(&sb, "%s\n", line)
		}
	}
	if len(info.CanDo) > 0 {
		fmt.Fprintf(&sb, "  %s\n", highlightStyle.Render("Can do:"))
		keys := make([]string, 0, len(info.CanDo))
		for k := range info.CanDo {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "    %s: %s\n", k, info.CanDo[k])
		}
	}
	return sb.String()
}
