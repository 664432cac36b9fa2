package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile controls which files a directory scan picks up and how documents
// are chunked. Profiles are optional; DefaultProfile covers plain text
// corpora.
type Profile struct {
	// Include is a list of glob patterns matched against the path relative
	// to the scan root. Empty means all files are included.
	Include []string `yaml:"include"`

	// Exclude is a list of glob patterns; a match excludes the file even if
	// an include pattern matched.
	Exclude []string `yaml:"exclude"`

	// ChunkSize overrides the configured window size when positive.
	ChunkSize int `yaml:"chunk_size"`

	// OverlapPercentage overrides the configured overlap when non-negative.
	OverlapPercentage int `yaml:"overlap_percentage"`

	// MaxFileBytes skips files larger than this when positive.
	MaxFileBytes int64 `yaml:"max_file_bytes"`
}

// DefaultProfile returns a profile that scans .txt and .md files up to 1 MiB.
func DefaultProfile() *Profile {
	return &Profile{
		Include:           []string{"*.txt", "**/*.txt", "*.md", "**/*.md"},
		OverlapPercentage: -1, // use configured overlap
		MaxFileBytes:      1 << 20,
	}
}

// LoadProfile reads a YAML scan profile from disk.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return profile, nil
}

// Matches reports whether the given root-relative path passes the profile's
// include/exclude patterns. Patterns use filepath.Match syntax, with a
// "**/" prefix accepted as "any directory depth".
func (p *Profile) Matches(relPath string) bool {
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range p.Exclude {
		if globMatch(pattern, relPath) {
			return false
		}
	}

	if len(p.Include) == 0 {
		return true
	}
	for _, pattern := range p.Include {
		if globMatch(pattern, relPath) {
			return true
		}
	}
	return false
}

// globMatch matches pattern against a slash-separated relative path.
// A leading "**/" matches any number of directories, including none.
func globMatch(pattern, relPath string) bool {
	pattern = filepath.ToSlash(pattern)

	if strings.HasPrefix(pattern, "**/") {
		suffix := strings.TrimPrefix(pattern, "**/")
		if ok, _ := filepath.Match(suffix, filepath.Base(relPath)); ok {
			return true
		}
		return false
	}

	ok, err := filepath.Match(pattern, relPath)
	return err == nil && ok
}
