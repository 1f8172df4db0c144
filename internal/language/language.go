// Package language normalizes language hints supplied by callers into the
// ISO 639-1 codes the recognizer and ffmpeg expect.
package language

import (
	"strings"

	"golang.org/x/text/language"
)

// Auto is the sentinel hint that disables language forcing and lets the
// recognizer detect the spoken language.
const Auto = "auto"

type entry struct {
	code2   string
	code3   string
	alt3    string
	display string
	word    string
}

var languages = []entry{
	{"en", "eng", "", "English", "english"},
	{"es", "spa", "", "Spanish", "spanish"},
	{"fr", "fra", "fre", "French", "french"},
	{"de", "deu", "ger", "German", "german"},
	{"it", "ita", "", "Italian", "italian"},
	{"pt", "por", "", "Portuguese", "portuguese"},
	{"ja", "jpn", "", "Japanese", "japanese"},
	{"ko", "kor", "", "Korean", "korean"},
	{"zh", "zho", "chi", "Chinese", "chinese"},
	{"ru", "rus", "", "Russian", "russian"},
	{"ar", "ara", "", "Arabic", "arabic"},
	{"hi", "hin", "", "Hindi", "hindi"},
	{"nl", "nld", "dut", "Dutch", "dutch"},
	{"pl", "pol", "", "Polish", "polish"},
	{"sv", "swe", "", "Swedish", "swedish"},
	{"da", "dan", "", "Danish", "danish"},
	{"no", "nor", "", "Norwegian", "norwegian"},
	{"fi", "fin", "", "Finnish", "finnish"},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		byWord[e.word] = e
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// IsAuto reports whether the hint requests automatic language detection.
// An empty hint counts as auto.
func IsAuto(hint string) bool {
	hint = strings.ToLower(strings.TrimSpace(hint))
	return hint == "" || hint == Auto
}

// ToISO2 converts any recognized language hint to ISO 639-1 (2-letter).
// BCP-47 tags (en-US, pt_BR) reduce to their base language. Returns empty
// string for the auto sentinel and for unrecognized input.
func ToISO2(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" || hint == Auto {
		return ""
	}
	if e := lookup(hint); e != nil {
		return e.code2
	}
	if tag, err := language.Parse(hint); err == nil {
		if base, conf := tag.Base(); conf > language.No {
			code := base.String()
			if e := lookup(code); e != nil {
				return e.code2
			}
			if len(code) == 2 {
				return code
			}
		}
	}
	if len(hint) == 2 {
		return hint
	}
	return ""
}

// DisplayName returns a human-readable name for a recognized hint, the
// uppercased hint otherwise, and "Auto" for the detection sentinel.
func DisplayName(hint string) string {
	if IsAuto(hint) {
		return "Auto"
	}
	if e := lookup(hint); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(hint))
}
