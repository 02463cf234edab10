package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatByName(t *testing.T) {
	f, ok := FormatByName(" PNG ")
	require.True(t, ok)
	assert.Equal(t, ".png", f.Extension)

	_, ok = FormatByName("svg")
	assert.False(t, ok)
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]string{
		"plan.pdf":  "pdf",
		"plan.XLSX": "xlsx",
		"a/b/c.dxf": "dxf",
		"shot.png":  "png",
	}
	for path, want := range tests {
		f, ok := FormatForPath(path)
		require.True(t, ok, path)
		assert.Equal(t, want, f.Name, path)
	}
	_, ok := FormatForPath("plan.txt")
	assert.False(t, ok)
}

func TestFormatNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range FormatNames() {
		assert.False(t, seen[n], "duplicate format %q", n)
		seen[n] = true
	}
	assert.Len(t, seen, len(Formats))
}

func TestFormatsWrite(t *testing.T) {
	fixedClock(t)
	dir := t.TempDir()
	p := buildTestProject()
	for _, f := range Formats {
		t.Run(f.Name, func(t *testing.T) {
			path := filepath.Join(dir, f.Name+f.Extension)
			require.NoError(t, f.Write(path, p))
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}
