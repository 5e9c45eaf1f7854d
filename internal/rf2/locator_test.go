package rf2

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func makeSnapshotDir(t *testing.T, withLanguage bool) string {
	t.Helper()
	root := t.TempDir()
	term := filepath.Join(root, "Terminology")
	require.NoError(t, os.MkdirAll(term, 0o755))

	write := func(name string) {
		require.NoError(t, os.WriteFile(filepath.Join(term, name), []byte("header\n"), 0o644))
	}
	write("sct2_Concept_Snapshot_INT_20240101.txt")
	write("sct2_Description_Snapshot_INT_20240101.txt")
	write("sct2_Relationship_Snapshot_INT_20240101.txt")

	if withLanguage {
		langDir := filepath.Join(root, "Refset", "Language")
		require.NoError(t, os.MkdirAll(langDir, 0o755))
		require.NoError(t, os.WriteFile(
			filepath.Join(langDir, "der2_cRefset_LanguageSnapshot-en_INT_20240101.txt"),
			[]byte("header\n"), 0o644))
	}
	return root
}

func TestLocate_AllFilesPresent(t *testing.T) {
	dir := makeSnapshotDir(t, true)

	fs, err := Locate(dir)
	require.NoError(t, err)
	require.NotEmpty(t, fs.ConceptFile)
	require.NotEmpty(t, fs.DescriptionFile)
	require.NotEmpty(t, fs.RelationshipFile)
	require.NotEmpty(t, fs.LanguageRefsetFile)
}

func TestLocate_LanguageRefsetOptional(t *testing.T) {
	dir := makeSnapshotDir(t, false)

	fs, err := Locate(dir)
	require.NoError(t, err)
	require.Empty(t, fs.LanguageRefsetFile)
}

func TestLocate_MissingTerminologyFileFails(t *testing.T) {
	root := t.TempDir()
	term := filepath.Join(root, "Terminology")
	require.NoError(t, os.MkdirAll(term, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(term, "sct2_Concept_Snapshot_INT_20240101.txt"), []byte("header\n"), 0o644))
	// Description and Relationship files absent.

	_, err := Locate(root)
	require.ErrorIs(t, err, ErrMissingInput)
}
