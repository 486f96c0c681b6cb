package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdv736/siri"
)

func writeFile(t *testing.T, dir, name, content string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadSituations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.xml", `<PtSituationElement><SituationNumber>sit-b</SituationNumber></PtSituationElement>`)
	writeFile(t, dir, "a.xml", `<?xml version="1.0"?>`+"\n"+`<PtSituationElement><SituationNumber>sit-a</SituationNumber></PtSituationElement>`)
	writeFile(t, dir, "notes.txt", `ignored`)

	situations, err := loadSituations(dir)
	require.NoError(t, err)
	require.Len(t, situations, 2)
	assert.Equal(t, "sit-a", situations[0].ID)
	assert.Equal(t, "sit-b", situations[1].ID)
}

func TestLoadSituations_Empty(t *testing.T) {
	situations, err := loadSituations(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, situations)
}

func TestLoadSituations_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.xml", `<PtSituationElement><Summary>x</Summary></PtSituationElement>`)

	_, err := loadSituations(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, siri.ErrMalformed)
	assert.Contains(t, err.Error(), "broken.xml")
}
