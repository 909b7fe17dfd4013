package helper

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum     = regexp.MustCompile(`[^a-z0-9]+`)
	reUnderscore   = regexp.MustCompile(`_+`)
	reFieldNameStr = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

const MaxFieldNameLen = 64

// stripDiacritics: é → e, dll.
func stripDiacritics(s string) string {
	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	return string(buf)
}

// FieldNameFromLabel mengubah label bebas ("Tahun Akademik") jadi field_name
// snake_case ("tahun_akademik"). Hasil kosong kalau label tidak punya huruf/angka.
func FieldNameFromLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = stripDiacritics(s)
	s = reNonAlnum.ReplaceAllString(s, "_")
	s = reUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return ""
	}
	// field_name wajib diawali huruf
	if s[0] >= '0' && s[0] <= '9' {
		s = "f_" + s
	}
	if utf8.RuneCountInString(s) > MaxFieldNameLen {
		s = strings.TrimRight(s[:MaxFieldNameLen], "_")
	}
	return s
}

// IsValidFieldName: [a-z][a-z0-9_]* dan maksimal MaxFieldNameLen.
func IsValidFieldName(name string) bool {
	return len(name) <= MaxFieldNameLen && reFieldNameStr.MatchString(name)
}
