package slicer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvocation_Args(t *testing.T) {
	inv := Invocation{
		ModelPath:    "/work/model.stl",
		PrinterPath:  "/work/printer.json",
		ProcessPath:  "/work/process.json",
		FilamentPath: "/work/filament.json",
		OutputDir:    "/work/output",
	}

	want := []string{
		"--slice", "0",
		"--load-settings", "/work/printer.json;/work/process.json",
		"--load-filaments", "/work/filament.json",
		"--allow-newer-file",
		"--arrange", "1",
		"--ensure-on-bed",
		"--outputdir", "/work/output",
		"/work/model.stl",
	}
	assert.Equal(t, want, inv.Args())
}

func TestInvocation_Args_Orient(t *testing.T) {
	inv := Invocation{ModelPath: "m.stl", OutputDir: "out", Orient: true}
	assert.Contains(t, inv.Args(), "--orient")
}

func TestInvocation_Args_BedType(t *testing.T) {
	inv := Invocation{ModelPath: "m.stl", OutputDir: "out", BedType: "Textured PEI Plate"}
	args := inv.Args()
	assert.Contains(t, args, "--curr-bed-type")
	assert.Contains(t, args, "Textured PEI Plate")

	// Unknown plates are dropped, not passed through.
	inv.BedType = "Lava Plate"
	assert.NotContains(t, inv.Args(), "--curr-bed-type")

	inv.BedType = ""
	assert.NotContains(t, inv.Args(), "--curr-bed-type")
}

func TestInvocation_Args_ModelLast(t *testing.T) {
	inv := Invocation{
		ModelPath: "m.3mf",
		OutputDir: "out",
		Orient:    true,
		BedType:   "Cool Plate",
	}
	args := inv.Args()
	assert.Equal(t, "m.3mf", args[len(args)-1])
}

func TestIsValidBedType(t *testing.T) {
	for _, bt := range []string{"Cool Plate", "Engineering Plate", "High Temp Plate", "Textured PEI Plate"} {
		assert.True(t, IsValidBedType(bt), bt)
	}
	assert.False(t, IsValidBedType("cool plate"))
	assert.False(t, IsValidBedType(""))
}
