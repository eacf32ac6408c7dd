package catalog

import (
	"fmt"

	"github.com/kilianp07/voltgo/core/model"
)

// Lookup resolves a station by id.
type Lookup interface {
	Get(id string) (model.Station, bool)
}

// Catalog is an ordered, read-only set of stations.
type Catalog struct {
	records []model.Station
	index   map[string]int
}

// New validates the records and builds the id index. The slice is copied so
// later changes by the caller do not leak into the catalog.
func New(records []model.Station) (*Catalog, error) {
	c := &Catalog{
		records: make([]model.Station, len(records)),
		index:   make(map[string]int, len(records)),
	}
	copy(c.records, records)
	for i, r := range c.records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[r.ID]; dup {
			return nil, fmt.Errorf("duplicate station id %s", r.ID)
		}
		c.index[r.ID] = i
	}
	return c, nil
}

// Get returns the station with the given id.
func (c *Catalog) Get(id string) (model.Station, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.Station{}, false
	}
	return c.records[i], true
}

// All returns a copy of the records in catalog order.
func (c *Catalog) All() []model.Station {
	out := make([]model.Station, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of stations.
func (c *Catalog) Len() int { return len(c.records) }
