package property

import "fmt"

// ID names one cell of a Table. Removed slots bump their generation, so an
// ID that outlived its cell is detected instead of aliasing a newer one.
type ID struct {
	index uint32
	gen   uint32
}

func (id ID) IsZero() bool {
	return id.gen == 0
}

func (id ID) String() string {
	return fmt.Sprintf("%d@%d", id.index, id.gen)
}
