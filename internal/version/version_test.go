package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringWithoutBuildInfo(t *testing.T) {
	assert.Equal(t, Version, String())
}

func TestStringTruncatesLongCommit(t *testing.T) {
	origCommit, origTime := GitCommit, BuildTime
	defer func() { GitCommit, BuildTime = origCommit, origTime }()

	GitCommit = "0123456789abcdef"
	BuildTime = "2026-05-01T12:00:00Z"

	assert.Contains(t, String(), "commit: 01234567,")
}

func TestStringKeepsShortCommit(t *testing.T) {
	origCommit, origTime := GitCommit, BuildTime
	defer func() { GitCommit, BuildTime = origCommit, origTime }()

	GitCommit = "abc123"
	BuildTime = "2026-05-01T12:00:00Z"

	assert.NotPanics(t, func() { _ = String() })
	assert.Contains(t, String(), "commit: abc123,")
}
