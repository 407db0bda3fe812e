package slicer

// Bed types the engine accepts for --curr-bed-type.
var validBedTypes = map[string]bool{
	"Cool Plate":         true,
	"Engineering Plate":  true,
	"High Temp Plate":    true,
	"Textured PEI Plate": true,
}

// IsValidBedType reports whether the engine recognizes the bed type.
func IsValidBedType(bedType string) bool {
	return validBedTypes[bedType]
}

// Invocation describes one slicing run in terms of materialized input files.
//
// Printer, process and filament paths must point at fully resolved,
// metadata-injected documents; the engine's CLI rejects documents missing
// the injected keys.
type Invocation struct {
	ModelPath    string
	PrinterPath  string
	ProcessPath  string
	FilamentPath string
	OutputDir    string

	// Orient asks the engine to auto-orient the model before slicing.
	Orient bool

	// BedType selects the build plate. Unknown values are dropped rather
	// than passed through, since the engine aborts on unrecognized plates.
	BedType string
}

// Args builds the engine's slicing-CLI argument list.
func (inv Invocation) Args() []string {
	args := []string{
		"--slice", "0",
		"--load-settings", inv.PrinterPath + ";" + inv.ProcessPath,
		"--load-filaments", inv.FilamentPath,
		"--allow-newer-file",
		"--arrange", "1",
		"--ensure-on-bed",
	}
	if inv.Orient {
		args = append(args, "--orient", "1")
	}
	if IsValidBedType(inv.BedType) {
		args = append(args, "--curr-bed-type", inv.BedType)
	}
	args = append(args, "--outputdir", inv.OutputDir, inv.ModelPath)
	return args
}
