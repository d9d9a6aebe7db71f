package records

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrNoCaseFiles is returned when a data directory holds no case file
	ErrNoCaseFiles = errors.New("no INAD case files found")

	// ErrNoVolumeFiles is returned when a data directory holds no volume file
	ErrNoVolumeFiles = errors.New("no passenger volume files found")
)

const (
	casePattern   = "**/*{inad,INAD,Inad}*.{csv,yaml,yml,json}"
	volumePattern = "**/*{bazl,BAZL,Bazl,volume,volumes,pax}*.{csv,yaml,yml,json}"
)

// Files lists the record files found under a directory
type Files struct {
	Cases   []string
	Volumes []string
}

// Discover finds case and volume files below dir, returned as sorted absolute paths.
func Discover(dir string) (Files, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Files{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Files{}, err
	}
	if !info.IsDir() {
		return Files{}, fmt.Errorf("path is not a directory: %s", abs)
	}

	fsys := os.DirFS(abs)
	caseMatches, err := doublestar.Glob(fsys, casePattern)
	if err != nil {
		return Files{}, fmt.Errorf("glob error: %w", err)
	}
	volumeMatches, err := doublestar.Glob(fsys, volumePattern)
	if err != nil {
		return Files{}, fmt.Errorf("glob error: %w", err)
	}

	files := Files{
		Cases:   toAbs(abs, caseMatches),
		Volumes: toAbs(abs, volumeMatches),
	}
	if len(files.Cases) == 0 {
		return files, fmt.Errorf("%w in %s", ErrNoCaseFiles, abs)
	}
	if len(files.Volumes) == 0 {
		return files, fmt.Errorf("%w in %s", ErrNoVolumeFiles, abs)
	}
	return files, nil
}

func toAbs(root string, matches []string) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(root, filepath.FromSlash(m)))
	}
	sort.Strings(out)
	return out
}
