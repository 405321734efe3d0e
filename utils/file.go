package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName strips directories and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "document"
	}
	return name
}

// TimestampedFileName builds "{base}_{unix millis}{ext}" from an uploaded
// file name. The extension is lower-cased.
func TimestampedFileName(originalName string, t time.Time) string {
	name := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	ext := filepath.Ext(name)
	base := SanitizeFileName(strings.TrimSuffix(name, ext))
	ext = strings.ToLower(unsafeChars.ReplaceAllString(ext, "_"))
	return fmt.Sprintf("%s_%d%s", base, t.UnixMilli(), ext)
}

// IsPDF reports whether the name has a .pdf extension.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
