// Package testutil provides shared test infrastructure for the simulator
// packages: golden-file comparison of rendered traces and logs.
package testutil

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir is where golden files live, relative to the package under test.
const GoldenDir = "testdata/golden"

// NewGoldie returns a goldie instance reading testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./sim/... -update
func NewGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
}

// AssertGolden compares got against the golden file for name.
func AssertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	NewGoldie(t).Assert(t, name, got)
}

// Lines splits rendered text into lines, dropping the trailing empty one.
func Lines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
