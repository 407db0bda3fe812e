package profile

import "fmt"

// Category identifies the role of a configuration document.
type Category string

const (
	CategoryPrinter  Category = "printer"
	CategoryProcess  Category = "process"
	CategoryFilament Category = "filament"
)

// Well-known document keys.
const (
	KeyInherits = "inherits"
	KeyType     = "type"
	KeyFrom     = "from"
	KeyName     = "name"
)

// Categories returns all valid categories in a stable order.
func Categories() []Category {
	return []Category{CategoryPrinter, CategoryProcess, CategoryFilament}
}

// ParseCategory validates a user-supplied category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q (must be one of: filament, printer, process)", ErrInvalidCategory, s)
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPrinter, CategoryProcess, CategoryFilament:
		return true
	default:
		return false
	}
}

// EngineType returns the value the engine's CLI expects in the "type"
// discriminator key. Printer profiles are typed "machine".
func (c Category) EngineType() string {
	if c == CategoryPrinter {
		return "machine"
	}
	return string(c)
}

// BundledSubdir returns the per-vendor subdirectory the engine installation
// uses for this category. Bundled printer profiles live under "machine".
func (c Category) BundledSubdir() string {
	return c.EngineType()
}

func (c Category) String() string {
	return string(c)
}
