// Package search filters the station catalog by free-text address queries.
package search

import (
	"strings"

	"github.com/kilianp07/voltgo/core/model"
)

// Filter returns, in order, the stations whose address contains query,
// ignoring case. An empty query matches everything.
func Filter(records []model.Station, query string) []model.Station {
	q := strings.ToLower(query)
	out := make([]model.Station, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Address), q) {
			out = append(out, r)
		}
	}
	return out
}

// Result is what a search surface displays.
type Result struct {
	Query    string          `json:"query"`
	Stations []model.Station `json:"stations"`
	// NotFound is set when a non-empty query matched nothing. Stations then
	// holds the full catalog.
	NotFound bool   `json:"not_found"`
	Message  string `json:"message,omitempty"`
}

// Resolve runs Filter and falls back to the whole catalog when nothing
// matches, flagging the result as not found.
func Resolve(records []model.Station, query string) Result {
	matched := Filter(records, query)
	if len(matched) > 0 || query == "" {
		return Result{Query: query, Stations: matched}
	}
	all := make([]model.Station, len(records))
	copy(all, records)
	return Result{
		Query:    query,
		Stations: all,
		NotFound: true,
		Message:  NotFoundMessage(query),
	}
}

// NotFoundMessage is the text shown when a query has no match.
func NotFoundMessage(query string) string {
	return `Search "` + query + `" not found`
}
