package translate

import "fmt"

// instruction is shared by the LLM-backed translators
func instruction(source, target string) string {
	return fmt.Sprintf("You are a translation engine. Translate the user's text from the language with code %q "+
		"to the language with code %q. Reply with the translation only, without quotes, notes or transliteration.",
		source, target)
}
