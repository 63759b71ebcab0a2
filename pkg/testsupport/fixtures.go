package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
)

// UpdateEnv is the environment variable that makes CompareWithGolden
// rewrite golden files instead of comparing against them.
const UpdateEnv = "UPDATE_GOLDEN"

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := sonic.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// WriteGolden writes test output to a golden file, creating its directory.
func WriteGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// CompareWithGolden compares actual data with expected data from a golden file.
// If the golden file doesn't exist, or UpdateEnv is set, it is written with
// the actual data.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	if os.Getenv(UpdateEnv) != "" {
		WriteGolden(t, path, actual)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// CompareWithGoldenJSON encodes actual as indented JSON with sorted map keys
// and compares it with the golden file.
func CompareWithGoldenJSON(t *testing.T, path string, actual any) {
	t.Helper()

	data, err := sonic.ConfigStd.MarshalIndent(actual, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal JSON for golden file %s: %v", path, err)
	}
	CompareWithGolden(t, path, append(data, '\n'))
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}
