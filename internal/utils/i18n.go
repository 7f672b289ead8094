package utils

// Minimal server-side i18n for fixed keys. UI strings live in the frontend;
// the server only localizes the handful of messages it emits itself.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":         "ok",
		"responses.deleted": "All your responses have been deleted",
	},
	"pat": {
		"health.ok":         "everyting criss",
		"responses.deleted": "All a yu response dem delete now",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}
