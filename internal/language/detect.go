// Package language guesses the guest's language from marker words.
// The result is a hint for the reply prompt, never a hard constraint.
package language

import (
	"regexp"
	"strings"

	"github.com/avvvet/concierge-intent/internal/models"
)

type rule struct {
	tag     models.LanguageTag
	pattern *regexp.Regexp
}

// Checked in order; the first matching rule wins.
var rules = []rule{
	{models.LanguageFrench, regexp.MustCompile(`\b(merci|bonjour|s'il|reservation|chambre|disponibilite)\b`)},
	{models.LanguageSpanish, regexp.MustCompile(`\b(hola|gracias|habitacion|disponibilidad|reserva|precio)\b`)},
	{models.LanguageEnglish, regexp.MustCompile(`\b(hello|thanks|room|availability|booking|price)\b`)},
}

// Detect returns the language hint for text, or LanguageAuto when no marker matches.
func Detect(text string) models.LanguageTag {
	value := strings.ToLower(text)
	for _, r := range rules {
		if r.pattern.MatchString(value) {
			return r.tag
		}
	}
	return models.LanguageAuto
}
