package deployment

import (
	"regexp"
	"strings"

	"venture-builder/internal/bundle"
)

const (
	MaxNameLength    = 100
	FallbackName     = "venture-build"
	FrameworkNextJS  = "nextjs"
	nextDependencyID = `"next"`
)

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRuns       = regexp.MustCompile(`-{2,}`)
)

// SanitizeName maps a project name onto the platform's naming rules: lowercase [a-z0-9-],
// no repeated or edge hyphens, at most MaxNameLength characters.
func SanitizeName(name string) string {
	s := invalidNameChars.ReplaceAllString(strings.ToLower(name), "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxNameLength {
		s = strings.TrimRight(s[:MaxNameLength], "-")
	}
	if s == "" {
		return FallbackName
	}
	return s
}

// FrameworkHint returns "nextjs" when a package.json record mentions "next", else "".
// This is a substring check, not a manifest parse.
func FrameworkHint(files []bundle.FileRecord) string {
	for _, f := range files {
		if f.Path == bundle.FilePackageJSON && strings.Contains(f.Content, nextDependencyID) {
			return FrameworkNextJS
		}
	}
	return ""
}
