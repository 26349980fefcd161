package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/v2xlab/obu/app"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Route related commands",
}

var routesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the routes the producer can replay",
	RunE:  runRoutesLs,
}

func init() {
	routesCmd.AddCommand(routesLsCmd)
	rootCmd.AddCommand(routesCmd)
}

func runRoutesLs(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := app.LoadRoutes(cfg.Route.File)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tWAYPOINTS\tSTART"); err != nil {
		return err
	}
	for _, name := range reg.Names() {
		wps, _ := reg.Lookup(name)
		first := wps[0]
		if _, err := fmt.Fprintf(w, "%s\t%d\t%.6f,%.6f\n", name, len(wps), first.Latitude, first.Longitude); err != nil {
			return err
		}
	}
	return w.Flush()
}
