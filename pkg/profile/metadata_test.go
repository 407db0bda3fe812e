package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectMetadata(t *testing.T) {
	tests := []struct {
		category Category
		wantType string
	}{
		{CategoryPrinter, "machine"},
		{CategoryProcess, "process"},
		{CategoryFilament, "filament"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			doc := mustParse(t, `{"layer_height": "0.2"}`)
			out := InjectMetadata(tt.category, doc)

			typ, ok := out.GetString(KeyType)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, typ)

			from, ok := out.GetString(KeyFrom)
			require.True(t, ok)
			assert.Equal(t, "User", from)
		})
	}
}

func TestInjectMetadata_OverwritesExisting(t *testing.T) {
	doc := mustParse(t, `{"type": "system", "from": "system", "name": "x"}`)
	out := InjectMetadata(CategoryPrinter, doc)

	typ, _ := out.GetString(KeyType)
	assert.Equal(t, "machine", typ)
	from, _ := out.GetString(KeyFrom)
	assert.Equal(t, "User", from)
}
