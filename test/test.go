package test

import (
	"os"
	"path/filepath"
)

// LoadFixture reads a fixture file relative to the calling package directory,
// which is the working directory during a test run.
func LoadFixture(relativePath string) ([]byte, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	return os.ReadFile(filepath.Join(wd, relativePath))
}
