package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/voltgo/core/journal"
	"github.com/kilianp07/voltgo/core/reservation"
	"github.com/kilianp07/voltgo/pkg/export"
)

var (
	historyStation string
	historyKind    string
	historySince   time.Duration
	historyLimit   int
	historyFormat  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print reservation events from the journal",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyStation, "station", "", "station id filter")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "event kind filter (reserved or released)")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only events newer than this duration, e.g. 1h")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "keep only the most recent N events")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "o", "json", "output format: json (one event per line) or csv")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	switch reservation.Kind(historyKind) {
	case "", reservation.KindReserved, reservation.KindReleased:
	default:
		return fmt.Errorf("unknown kind %q", historyKind)
	}
	store, err := journal.Open(cfg.Journal.Backend, cfg.Journal.Path, cfg.Journal.MaxSizeMB, cfg.Journal.MaxBackups, cfg.Journal.MaxAgeDays)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer func() { _ = store.Close() }()

	q := journal.Query{StationID: historyStation, Kind: reservation.Kind(historyKind), Limit: historyLimit}
	if historySince > 0 {
		q.Start = time.Now().Add(-historySince)
	}
	events, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), historyFormat, events)
}
