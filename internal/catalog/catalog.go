package catalog

import (
	"fmt"
	"sort"
)

// RoomType is a named band of room numbers sharing one nightly rate.
type RoomType struct {
	Name    string  `json:"name" yaml:"name"`
	StartID int     `json:"start_id" yaml:"start_id"`
	EndID   int     `json:"end_id" yaml:"end_id"` // inclusive
	Rate    float64 `json:"rate" yaml:"rate"`
}

// PoolSize returns the number of rooms in the band.
func (rt RoomType) PoolSize() int {
	return rt.EndID - rt.StartID + 1
}

// Contains reports whether room falls inside the band.
func (rt RoomType) Contains(room int) bool {
	return room >= rt.StartID && room <= rt.EndID
}

// Catalog is an immutable, validated set of room types.
type Catalog struct {
	types  []RoomType
	byName map[string]RoomType
}

// Default returns the hotel's standard three-band catalog.
func Default() *Catalog {
	c, err := New([]RoomType{
		{Name: "Standard", StartID: 100, EndID: 150, Rate: 3000.0},
		{Name: "Deluxe", StartID: 200, EndID: 250, Rate: 5000.0},
		{Name: "Suite", StartID: 300, EndID: 350, Rate: 7500.0},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// New validates the room types and builds a catalog from them.
// Names must be unique, bands must be non-empty and must not overlap.
func New(types []RoomType) (*Catalog, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("catalog: no room types configured")
	}

	byName := make(map[string]RoomType, len(types))
	for _, rt := range types {
		if rt.Name == "" {
			return nil, fmt.Errorf("catalog: room type with empty name")
		}
		if _, dup := byName[rt.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate room type %q", rt.Name)
		}
		if rt.StartID > rt.EndID {
			return nil, fmt.Errorf("catalog: room type %q has start %d after end %d", rt.Name, rt.StartID, rt.EndID)
		}
		if rt.Rate < 0 {
			return nil, fmt.Errorf("catalog: room type %q has negative rate", rt.Name)
		}
		byName[rt.Name] = rt
	}

	sorted := make([]RoomType, len(types))
	copy(sorted, types)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartID < sorted[j].StartID })
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.StartID <= prev.EndID {
			return nil, fmt.Errorf("catalog: room types %q and %q overlap", prev.Name, cur.Name)
		}
	}

	ordered := make([]RoomType, len(types))
	copy(ordered, types)
	return &Catalog{types: ordered, byName: byName}, nil
}

// Lookup returns the room type with the given name.
func (c *Catalog) Lookup(name string) (RoomType, bool) {
	rt, ok := c.byName[name]
	return rt, ok
}

// Types returns the room types in configuration order.
func (c *Catalog) Types() []RoomType {
	out := make([]RoomType, len(c.types))
	copy(out, c.types)
	return out
}

// Names returns the room type names in configuration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.types))
	for i, rt := range c.types {
		names[i] = rt.Name
	}
	return names
}

// TypeOfRoom returns the room type whose band contains room.
func (c *Catalog) TypeOfRoom(room int) (RoomType, bool) {
	for _, rt := range c.types {
		if rt.Contains(room) {
			return rt, true
		}
	}
	return RoomType{}, false
}
