// Package language guesses the language of an inbound email from
// character scripts, so generated replies can match the customer's
// language.
package language

import (
	"regexp"
	"strings"
)

// Language is a detected language with a confidence derived from the
// share of characters in its script.
type Language struct {
	Code       string
	Name       string
	Confidence float64
}

type script struct {
	code        string
	name        string
	pattern     *regexp.Regexp
	instruction string
}

var scripts = []script{
	{"he", "Hebrew", regexp.MustCompile(`[\x{0590}-\x{05FF}]`), "Please respond in Hebrew (עברית)."},
	{"ar", "Arabic", regexp.MustCompile(`[\x{0600}-\x{06FF}]`), "Please respond in Arabic (العربية)."},
	{"ru", "Russian", regexp.MustCompile(`[\x{0400}-\x{04FF}]`), "Please respond in Russian (Русский)."},
	{"zh", "Chinese", regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`), "Please respond in Chinese (中文)."},
	{"ja", "Japanese", regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FFF}]`), "Please respond in Japanese (日本語)."},
	{"ko", "Korean", regexp.MustCompile(`[\x{AC00}-\x{D7AF}]`), "Please respond in Korean (한국어)."},
}

var kanaPattern = regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}]`)

const english = "en"

// Detect returns the most likely language of the text based on script
// ratios. Latin-script text defaults to English.
func Detect(text string) Language {
	text = strings.TrimSpace(text)
	if text == "" {
		return Language{Code: english, Name: "English"}
	}

	total := float64(len([]rune(text)))
	best := Language{Code: english, Name: "English"}

	for _, s := range scripts {
		ratio := float64(len(s.pattern.FindAllString(text, -1))) / total
		if ratio > 0.1 && ratio > best.Confidence {
			best = Language{Code: s.code, Name: s.name, Confidence: ratio}
		}
	}

	// Mixed text rarely crosses the main threshold; accept any clear
	// non-Latin signal.
	if best.Code == english {
		for _, s := range scripts {
			ratio := float64(len(s.pattern.FindAllString(text, -1))) / total
			if ratio > 0.01 && ratio > best.Confidence {
				best = Language{Code: s.code, Name: s.name, Confidence: ratio}
			}
		}
	}

	// CJK ideographs alone cannot separate Chinese from Japanese; the
	// presence of kana decides it.
	if best.Code == "zh" || best.Code == "ja" {
		kanaRatio := float64(len(kanaPattern.FindAllString(text, -1))) / total
		if kanaRatio > 0.05 {
			best.Code, best.Name = "ja", "Japanese"
		} else {
			best.Code, best.Name = "zh", "Chinese"
		}
	}

	return best
}

// ReplyInstruction returns a prompt addition steering reply generation
// toward the text's language. Empty for English so callers can skip
// the default case.
func ReplyInstruction(text string) string {
	lang := Detect(text)
	if lang.Code == english {
		return ""
	}
	for _, s := range scripts {
		if s.code == lang.Code {
			return s.instruction
		}
	}
	return ""
}
