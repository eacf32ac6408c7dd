package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/voltgo/core/catalog"
	"github.com/kilianp07/voltgo/core/search"
)

var stationsQuery string

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Station catalog commands",
}

var stationsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List catalog stations, optionally filtered by address",
	RunE:  runStationsLs,
}

func init() {
	stationsLsCmd.Flags().StringVarP(&stationsQuery, "query", "q", "", "address search text")
	stationsCmd.AddCommand(stationsLsCmd)
	rootCmd.AddCommand(stationsCmd)
}

func runStationsLs(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	res := search.Resolve(cat.All(), stationsQuery)
	out := cmd.OutOrStdout()
	if res.NotFound {
		fmt.Fprintln(cmd.ErrOrStderr(), res.Message)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tADDRESS\tSTATUS\tETA")
	for _, st := range res.Stations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", st.ID, st.Name, st.Address, st.Status, st.ETA)
	}
	return w.Flush()
}
