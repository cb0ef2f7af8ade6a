package speech

import "strings"

// DefaultVoice is used for categories without a dedicated voice.
const DefaultVoice = "en-GB-LibbyNeural"

var categoryVoices = map[string]string{
	"russian": "ru-RU-DmitryNeural",
	"english": "en-GB-LibbyNeural",
	"dutch":   "nl-NL-ColetteNeural",
}

// VoiceFor returns the neural voice for a category name, ignoring case.
func VoiceFor(category string) string {
	if v, ok := categoryVoices[strings.ToLower(strings.TrimSpace(category))]; ok {
		return v
	}
	return DefaultVoice
}
