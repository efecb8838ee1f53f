// Package display renders command output for terminals: JSON helpers, type
// trees and tables built with pterm.
package display

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/teranos/jsbind/typenode"
)

// TypeTree renders a parsed type as a pterm tree
func TypeTree(t typenode.Type) (string, error) {
	lines := typenode.Lines(t)
	list := make(pterm.LeveledList, 0, len(lines))
	for _, l := range lines {
		list = append(list, pterm.LeveledListItem{Level: l.Depth, Text: l.Text})
	}
	return pterm.DefaultTree.WithRoot(putils.TreeFromLeveledList(list)).Srender()
}

// Table renders rows under a header row
func Table(header []string, rows [][]string) (string, error) {
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// Itoa is strconv.Itoa, for building table rows
func Itoa(n int) string {
	return strconv.Itoa(n)
}
