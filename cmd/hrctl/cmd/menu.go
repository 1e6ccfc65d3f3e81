package cmd

import (
	"fmt"
	"strings"

	"github.com/MrEthical07/hrportal/menu"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List the menu entries visible to the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := fromContext(cmd.Context())
		if _, err := requireSession(a); err != nil {
			return err
		}

		a.portal.FetchMenu(cmd.Context())
		if msg := a.portal.Menu().Err(); msg != "" {
			return fmt.Errorf("%s", msg)
		}

		entries := flattenMenu(a)
		if len(entries) == 0 {
			pterm.Warning.Println("No menu entries")
			return nil
		}

		table := pterm.TableData{{"ID", "MENU", "PATH"}}
		for _, e := range entries {
			table = append(table, []string{e[0], e[1], e[2]})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

func flattenMenu(a *app) [][3]string {
	var rows [][3]string
	for _, e := range menu.Flatten(a.portal.Menu().Nodes()) {
		path := "-"
		if p, ok := e.Node.Path(); ok {
			path = "/" + p
		}
		rows = append(rows, [3]string{
			fmt.Sprint(e.Node.ID),
			strings.Repeat("  ", e.Depth) + e.Node.Label,
			path,
		})
	}
	return rows
}
