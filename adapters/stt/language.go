package stt

import "strings"

// baseLanguage reduces a BCP-47 tag such as "pt-BR" to its ISO 639-1 part,
// which is what Whisper accepts.
func baseLanguage(code string) string {
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return strings.ToLower(code)
}
