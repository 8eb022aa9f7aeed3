package domain

// Table is a physical table of the restaurant. IsSessionOpen gates whether
// customers may currently place orders against it.
type Table struct {
	ID            int64
	Number        int
	Name          string
	IsSessionOpen bool
	IsActive      bool
}
