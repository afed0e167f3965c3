package filemanager

import (
	"regexp"
	"strconv"
	"strings"
)

var dupSuffix = regexp.MustCompile(`^(.+)-([1-9][0-9]*)$`)

// Dedupe derives a new file name for an upload that collides with an
// existing one: "file.txt" becomes "file-1.txt" and "file-1.txt" becomes
// "file-2.txt". An existing suffix is incremented as a number, never
// extended as text, so "file-1.txt" does not turn into "file-11.txt".
// It does not check the result for another collision.
func Dedupe(name string) string {
	ext := ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		ext = name[i:]
	}
	base := strings.TrimSuffix(name, ext)

	if m := dupSuffix.FindStringSubmatch(base); m != nil {
		if n, err := strconv.ParseUint(m[2], 10, 63); err == nil {
			return m[1] + "-" + strconv.FormatUint(n+1, 10) + ext
		}
	}
	return base + "-1" + ext
}

// validName reports whether name is a single path element.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, "/\\\x00")
}
