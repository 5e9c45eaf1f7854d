package rf2

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// ErrMissingInput is returned when one of the required terminology files
// cannot be found under the Snapshot directory, per §4.2.
var ErrMissingInput = errors.New("rf2: missing required input file")

// FileSet is the resolved set of RF2 files for one Snapshot directory. The
// language refset is optional; an empty string means it is absent.
type FileSet struct {
	ConceptFile       string
	DescriptionFile   string
	RelationshipFile  string
	LanguageRefsetFile string
}

const (
	conceptPrefix      = "sct2_Concept_Snapshot"
	descriptionPrefix  = "sct2_Description_Snapshot"
	relationshipPrefix = "sct2_Relationship_Snapshot"
	languagePrefix     = "der2_cRefset_LanguageSnapshot"
)

// Locate discovers the four RF2 input files under snapshotDir, per §4.2.
// The three terminology files are required; absence of any one is reported
// as ErrMissingInput. The language refset is optional.
func Locate(snapshotDir string) (FileSet, error) {
	concept, err := firstMatch(filepath.Join(snapshotDir, "Terminology"), conceptPrefix)
	if err != nil {
		return FileSet{}, err
	}
	description, err := firstMatch(filepath.Join(snapshotDir, "Terminology"), descriptionPrefix)
	if err != nil {
		return FileSet{}, err
	}
	relationship, err := firstMatch(filepath.Join(snapshotDir, "Terminology"), relationshipPrefix)
	if err != nil {
		return FileSet{}, err
	}

	// The language refset is optional: absence disables preferred-term
	// resolution but never fails the locate step.
	language, _ := firstMatch(filepath.Join(snapshotDir, "Refset", "Language"), languagePrefix)

	return FileSet{
		ConceptFile:        concept,
		DescriptionFile:    description,
		RelationshipFile:   relationship,
		LanguageRefsetFile: language,
	}, nil
}

// firstMatch returns the first *.txt file in dir whose basename starts with
// prefix, in lexical order, or ErrMissingInput if none match.
func firstMatch(dir, prefix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return "", fmt.Errorf("globbing %s: %w", dir, err)
	}

	var candidates []string
	for _, m := range matches {
		if hasPrefix(filepath.Base(m), prefix) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no file matching %q*.txt under %s", ErrMissingInput, prefix, dir)
	}

	sort.Strings(candidates)
	return candidates[0], nil
}

func hasPrefix(name, prefix string) bool {
	return len(name) >= len(prefix) && name[:len(prefix)] == prefix
}
