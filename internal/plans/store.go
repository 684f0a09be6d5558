// Package plans writes generated plans to disk and reads them back for download.
package plans

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FileSuffix is appended to every saved plan
const FileSuffix = "_plan.md"

var (
	ErrInvalidFilename = errors.New("invalid plan filename")
	ErrPlanNotFound    = errors.New("plan not found")
)

// WriteError reports a failed plan write. The plan itself is still valid.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write plan to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Filename returns the file name for a project: lower-cased, spaces replaced by underscores
func Filename(projectName string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(projectName), " ", "_")) + FileSuffix
}

// Plan file names are a single path element without separators or dot segments
var validFilename = regexp.MustCompile(`^[^/\\]+` + regexp.QuoteMeta(FileSuffix) + `$`)

// Store saves plans under a single directory
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. An empty dir means the working directory.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

// Dir returns the output directory
func (s *Store) Dir() string {
	return s.dir
}

// Save writes content to the project's plan file, creating the directory if needed.
// Existing files are overwritten.
func (s *Store) Save(projectName, content string) (string, error) {
	name := Filename(projectName)
	if !isValidFilename(name) {
		return "", &WriteError{Path: filepath.Join(s.dir, name), Err: ErrInvalidFilename}
	}
	path := filepath.Join(s.dir, name)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}

// Open reads a previously saved plan by file name
func (s *Store) Open(filename string) ([]byte, error) {
	if !isValidFilename(filename) {
		return nil, ErrInvalidFilename
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to read plan %s: %w", filename, err)
	}
	return data, nil
}

func isValidFilename(name string) bool {
	if !validFilename.MatchString(name) {
		return false
	}
	return !strings.HasPrefix(name, ".") && filepath.Base(name) == name
}
