package translation

import (
	"strings"

	"github.com/leonelquinteros/gotext"
)

// Configure points gotext at the locale directory for the given language.
// Unknown message ids fall back to the id itself, so the bot stays usable
// without a compiled locale.
func Configure(localesDir, lang string) {
	gotext.Configure(localesDir, strings.ToLower(lang), "default")
}

// Translate renders a localized message by id.
func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
