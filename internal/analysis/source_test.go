package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/upgradelens/internal/models"
)

func TestLoadEntitiesFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "entities.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"text": "AWS", "type": "ORGANIZATION", "confidence": 0.98, "begin_offset": 0, "end_offset": 3}
	]`), 0o600))

	src, err := LoadEntitiesFile(path)
	require.NoError(t, err)
	require.Len(t, src, 1)
	assert.Equal(t, "ORGANIZATION", src[0].Type)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"text": "x", "type": "T", "confidence": 3, "begin_offset": 0, "end_offset": 1}]`), 0o600))
	_, err = LoadEntitiesFile(bad)
	require.Error(t, err)
	assert.True(t, models.IsInvalidEntityError(err))

	_, err = LoadEntitiesFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
