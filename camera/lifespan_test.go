package camera

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotTable(t *testing.T) {
	t.Helper()
	saved := make(map[string]uint32, len(ratedLife))
	for k, v := range ratedLife {
		saved[k] = v
	}
	t.Cleanup(func() {
		for k := range ratedLife {
			delete(ratedLife, k)
		}
		for k, v := range saved {
			ratedLife[k] = v
		}
	})
}

func TestLookupLife(t *testing.T) {
	life, ok := LookupLife("Canon EOS R7")
	require.True(t, ok)
	assert.Equal(t, uint32(200000), life)
}

func TestLookupLifeLongestMatch(t *testing.T) {
	// "Canon EOS R5" contains "EOS R" too; the longer key must win.
	life, ok := LookupLife("Canon EOS R5")
	require.True(t, ok)
	assert.Equal(t, uint32(500000), life)
}

func TestLookupLifeUnknown(t *testing.T) {
	_, ok := LookupLife("PowerShot G7 X")
	assert.False(t, ok)
}

func TestLoadLifeTable(t *testing.T) {
	snapshotTable(t)

	path := filepath.Join(t.TempDir(), "life.yaml")
	require.NoError(t, os.WriteFile(path, []byte("EOS R7: 250000\nEOS R5 Mark II: 500000\n"), 0600))
	require.NoError(t, LoadLifeTable(path))

	life, ok := LookupLife("Canon EOS R7")
	require.True(t, ok)
	assert.Equal(t, uint32(250000), life, "file entry overrides the built-in")

	life, ok = LookupLife("Canon EOS R5 Mark II")
	require.True(t, ok)
	assert.Equal(t, uint32(500000), life)
}

func TestLoadLifeTableMissingFile(t *testing.T) {
	assert.Error(t, LoadLifeTable(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestLoadLifeTableMalformed(t *testing.T) {
	snapshotTable(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("EOS R7: not-a-number\n"), 0600))
	assert.Error(t, LoadLifeTable(path))
}
