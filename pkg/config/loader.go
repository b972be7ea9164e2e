package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/interceptd/pkg/fixture"
)

// Common errors for fixture loading.
var (
	ErrFileNotFound     = errors.New("fixture file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("fixture file is empty")
)

// FileExtensions are the extensions LoadDir picks up.
var FileExtensions = []string{".yaml", ".yml", ".json"}

// LoadError names the file a load failed on.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars expands environment variables in the input string.
// Supports ${VAR_NAME} and ${VAR_NAME:-default} syntax.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		if val := os.Getenv(submatch[1]); val != "" {
			return val
		}
		if len(submatch) >= 3 {
			return submatch[2]
		}
		return ""
	})
}

// ResolvePath resolves targetPath against basePath, expanding a leading ~/.
func ResolvePath(basePath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	if strings.HasPrefix(targetPath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, targetPath[2:])
		}
	}
	return filepath.Join(basePath, targetPath)
}

// Parse decodes one fixture file. source names the file in errors.
func Parse(data []byte, source string) ([]*fixture.Fixture, error) {
	doc, err := ToJSON(data)
	if err != nil {
		return nil, err
	}
	doc, err = wrapSingle(doc)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var file File
	if err := json.Unmarshal(doc, &file); err != nil {
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}

	fixtures := make([]*fixture.Fixture, 0, len(file.Fixtures))
	for i := range file.Fixtures {
		f, err := file.Fixtures[i].Fixture()
		if err != nil {
			return nil, fmt.Errorf("fixtures[%d] (%s): %w", i, describe(&file.Fixtures[i], source, i), err)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

func describe(s *FixtureSpec, source string, i int) string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("%s#%d", filepath.Base(source), i)
}

// ToJSON expands environment references in a YAML (or JSON) document and
// re-encodes it as JSON.
func ToJSON(data []byte) ([]byte, error) {
	expanded := ExpandEnvVars(string(data))

	var v any
	if err := yaml.Unmarshal([]byte(expanded), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if v == nil {
		return nil, ErrEmptyFile
	}

	out, err := json.Marshal(normalize(v))
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return out, nil
}

// Decode reads a YAML or JSON file into v, expanding environment
// references first.
func Decode(path string, v any) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	doc, err := ToJSON(data)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	return nil
}

// normalize converts YAML maps with non-string keys so the value can be
// encoded as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}

// wrapSingle turns a single-fixture document into a fixtures list.
func wrapSingle(doc []byte) ([]byte, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(doc, &top); err != nil {
		// Not an object; let the schema report it.
		return doc, nil //nolint:nilerr
	}
	if _, ok := top["fixtures"]; ok {
		return doc, nil
	}
	return json.Marshal(map[string]any{"fixtures": []json.RawMessage{doc}})
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	return data, nil
}

// LoadFile loads the fixtures of one file.
func LoadFile(path string) ([]*fixture.Fixture, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	fixtures, err := Parse(data, path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return fixtures, nil
}

// LoadGlob loads every file matching pattern, in lexical order. ** matches
// across directories. No match is not an error.
func LoadGlob(pattern string) ([]*fixture.Fixture, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	sort.Strings(matches)
	return loadFiles(matches)
}

// LoadDir loads every fixture file under dir, recursively.
func LoadDir(dir string) ([]*fixture.Fixture, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", dir)
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	var files []string
	err = doublestar.GlobWalk(os.DirFS(dir), "**/*", func(p string, d os.DirEntry) error {
		if d.IsDir() || !hasFixtureExt(p) {
			return nil
		}
		files = append(files, filepath.Join(dir, filepath.FromSlash(p)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}
	sort.Strings(files)
	return loadFiles(files)
}

// Load resolves each argument as a directory, a glob pattern or a file,
// relative to baseDir, and concatenates the fixtures in argument order.
// Later fixtures replace earlier ones with the same route on install.
func Load(baseDir string, paths ...string) ([]*fixture.Fixture, error) {
	var all []*fixture.Fixture
	for _, p := range paths {
		resolved := ResolvePath(baseDir, p)

		var (
			fixtures []*fixture.Fixture
			err      error
		)
		switch info, statErr := os.Stat(resolved); {
		case statErr == nil && info.IsDir():
			fixtures, err = LoadDir(resolved)
		case statErr != nil && strings.ContainsAny(p, "*?[{"):
			fixtures, err = LoadGlob(resolved)
		default:
			fixtures, err = LoadFile(resolved)
		}
		if err != nil {
			return nil, err
		}
		all = append(all, fixtures...)
	}
	return all, nil
}

func loadFiles(files []string) ([]*fixture.Fixture, error) {
	var all []*fixture.Fixture
	for _, file := range files {
		fixtures, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		all = append(all, fixtures...)
	}
	return all, nil
}

func hasFixtureExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range FileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Save writes fixtures to path as YAML.
func Save(path string, fixtures []*fixture.Fixture) error {
	file := File{Version: FormatVersion, Fixtures: make([]FixtureSpec, 0, len(fixtures))}
	for _, f := range fixtures {
		file.Fixtures = append(file.Fixtures, FromFixture(f))
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal fixtures: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
