// Package pathsafe validates adventure identifiers and directory slugs and
// resolves paths so they can never escape a sandbox root. Every filesystem
// mutation in the rest of the tree goes through one of these functions first.
package pathsafe

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const maxSlugLen = 64

// ValidateAdventureID rejects empty, whitespace-only, null-byte-containing,
// path-separator-containing, and dot-segment identifiers, including their
// URL-decoded forms.
func ValidateAdventureID(id string) (ok bool, reason string) {
	if id == "" {
		return false, "empty id"
	}
	if strings.TrimSpace(id) == "" {
		return false, "whitespace-only id"
	}
	if !validBareSegment(id) {
		return false, "invalid id"
	}
	if decoded, err := url.QueryUnescape(id); err == nil && decoded != id {
		if !validBareSegment(decoded) {
			return false, "invalid id (decoded form)"
		}
	}
	return true, ""
}

// ValidateSlug applies the same rules as ValidateAdventureID plus an
// additional rejection of any ".." substring, not just the bare segment.
func ValidateSlug(slug string) (ok bool, reason string) {
	if ok, reason := ValidateAdventureID(slug); !ok {
		return false, reason
	}
	if strings.Contains(slug, "..") {
		return false, "slug contains '..'"
	}
	return true, ""
}

func validBareSegment(s string) bool {
	if s == "" || strings.TrimSpace(s) == "" {
		return false
	}
	if strings.ContainsRune(s, 0) {
		return false
	}
	if strings.ContainsAny(s, "/\\") {
		return false
	}
	if s == "." || s == ".." || strings.Contains(s, "..") {
		return false
	}
	return true
}

// SafeResolve returns the absolute path of id joined under base, but only if
// that path's lexical prefix is exactly base plus a separator (i.e. id can
// never escape base via traversal). Returns "" if the id is unsafe.
func SafeResolve(base, id string) string {
	if ok, _ := ValidateAdventureID(id); !ok {
		return ""
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return ""
	}
	absBase = filepath.Clean(absBase)
	joined := filepath.Join(absBase, id)
	prefix := absBase + string(filepath.Separator)
	if !strings.HasPrefix(joined+string(filepath.Separator), prefix) {
		return ""
	}
	if joined == absBase {
		return ""
	}
	return joined
}

// GenerateSlug derives a filesystem-safe slug from a human-entered name,
// deduplicating against entries already present in existingDir.
func GenerateSlug(name, existingDir string) string {
	slug := normalizeSlug(name)
	if slug == "" {
		slug = "unnamed"
	}
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
		slug = strings.Trim(slug, "-")
	}
	candidate := slug
	for n := 2; pathExists(filepath.Join(existingDir, candidate)); n++ {
		suffix := "-" + strconv.Itoa(n)
		trimLen := maxSlugLen - len(suffix)
		base := slug
		if trimLen > 0 && len(base) > trimLen {
			base = strings.Trim(base[:trimLen], "-")
		}
		candidate = base + suffix
	}
	return candidate
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func normalizeSlug(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	lastDash := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
