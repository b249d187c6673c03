package catalog

import "fmt"

// Catalog is an immutable ordered sequence of validated level definitions.
type Catalog struct {
	levels []LevelDefinition
}

// New validates every level and returns a catalog holding private copies of
// them. The first invalid level aborts construction.
func New(levels []LevelDefinition) (*Catalog, error) {
	copies := make([]LevelDefinition, 0, len(levels))
	for i, def := range levels {
		if err := ValidateLevel(def); err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		copies = append(copies, def.Clone())
	}
	return &Catalog{levels: copies}, nil
}

// MustNew is like New but panics on an invalid level. It is meant for level
// tables compiled into the binary.
func MustNew(levels []LevelDefinition) *Catalog {
	c, err := New(levels)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns a copy of the level at index.
func (c *Catalog) Get(index int) (LevelDefinition, error) {
	if index < 0 || index >= len(c.levels) {
		return LevelDefinition{}, fmt.Errorf("%w: %d (catalog has %d levels)", ErrOutOfRange, index, len(c.levels))
	}
	return c.levels[index].Clone(), nil
}

// Count returns the number of levels.
func (c *Catalog) Count() int {
	return len(c.levels)
}

// Names returns the level names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.levels))
	for i, def := range c.levels {
		names[i] = def.Name
	}
	return names
}
