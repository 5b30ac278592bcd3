// Package catalog is the message template table: (kind, language) -> string.
// Adding a language is a data change, not a code change. Any kind a language
// does not carry falls back to English with a logged warning.
package catalog

import (
	"strings"

	"github.com/cshealth/reminder-gateway/internal/model"
	"github.com/cshealth/reminder-gateway/pkg/logger"
)

// Template kinds outside the reminder grid.
const (
	KindSubscribe            = "subscribe"
	KindUnsubscribe          = "unsubscribe"
	KindFailure              = "failure"
	KindFailedDate           = "failed_date"
	KindAlreadySubscribed    = "already_subscribed"
	KindPlaceholderChildName = "placeholder_child_name"
)

// Get returns the template for kind in lang, falling back to English when the
// language does not carry the kind. An unknown kind returns "".
func Get(kind string, lang model.Language) string {
	if table, ok := templates[lang]; ok {
		if tmpl, ok := table[kind]; ok {
			return tmpl
		}
	}
	tmpl, ok := templates[model.LanguageEnglish][kind]
	if !ok {
		logger.Warn("catalog: unknown template kind", "kind", kind)
		return ""
	}
	if lang != model.LanguageEnglish {
		logger.Warn("catalog: falling back to English", "kind", kind, "language", string(lang))
	}
	return tmpl
}

// Fill substitutes the one placeholder the templates use.
func Fill(tmpl, name string) string {
	return strings.ReplaceAll(tmpl, "{name}", name)
}

// PlaceholderChildName is the stand-in used when a signup carries no name.
func PlaceholderChildName(lang model.Language) string {
	return Get(KindPlaceholderChildName, lang)
}

// SubscribeKeywords are the tokens that start a signup in the given language.
// ASCII keywords match case-insensitively, non-ASCII ones byte-exactly.
func SubscribeKeywords(lang model.Language) []string {
	return subscribeKeywords[lang]
}

// MatchSubscribeKeyword reports which language's subscribe keyword set the
// token belongs to. The token is expected lowercased already for ASCII input.
func MatchSubscribeKeyword(token string) (model.Language, bool) {
	for lang, words := range subscribeKeywords {
		for _, w := range words {
			if isASCII(w) {
				if strings.EqualFold(token, w) {
					return lang, true
				}
			} else if token == w {
				return lang, true
			}
		}
	}
	return "", false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

var subscribeKeywords = map[model.Language][]string{
	model.LanguageEnglish: {"remind", "join"},
	model.LanguageHindi:   {"याद", "जानकारी"},
}
