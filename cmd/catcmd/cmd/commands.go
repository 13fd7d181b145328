package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"catcmd/internal/usecase/commands"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Lists the command catalog",
	RunE:  runCommands,
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}

type commandRow struct {
	Name           string   `json:"name"`
	Aliases        []string `json:"aliases"`
	Usage          string   `json:"usage"`
	Cost           int      `json:"cost"`
	MinLevel       string   `json:"min_level"`
	ViewerCooldown string   `json:"viewer_cooldown,omitempty"`
	GlobalCooldown string   `json:"global_cooldown,omitempty"`
}

func runCommands(cmd *cobra.Command, args []string) error {
	registry, err := commands.BuiltinRegistry()
	if err != nil {
		return err
	}

	var rows []commandRow
	for _, d := range registry.Descriptors() {
		row := commandRow{
			Name:     d.Name,
			Aliases:  d.Aliases,
			Usage:    d.Usage,
			Cost:     d.Cost,
			MinLevel: d.MinLevel.String(),
		}
		if d.ViewerCooldown > 0 {
			row.ViewerCooldown = d.ViewerCooldown.String()
		}
		if d.GlobalCooldown > 0 {
			row.GlobalCooldown = d.GlobalCooldown.String()
		}
		rows = append(rows, row)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), rows)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tALIASES\tCOST\tLEVEL\tCOOLDOWN\tUSAGE")
	for _, r := range rows {
		cooldown := "-"
		switch {
		case r.ViewerCooldown != "" && r.GlobalCooldown != "":
			cooldown = r.ViewerCooldown + "/user " + r.GlobalCooldown + "/all"
		case r.ViewerCooldown != "":
			cooldown = r.ViewerCooldown + "/user"
		case r.GlobalCooldown != "":
			cooldown = r.GlobalCooldown + "/all"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", r.Name, strings.Join(r.Aliases, ","), r.Cost, r.MinLevel, cooldown, r.Usage)
	}
	return tw.Flush()
}
