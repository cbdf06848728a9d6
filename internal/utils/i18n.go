package utils

// Minimal server-side i18n for fixed keys. The companion's dialogue content
// is authored in Chinese and served as-is; only the handful of operational
// strings below are translated.

var translations = map[string]map[string]string{
	"zh": {
		"health.ok":      "好的",
		"app.name":       "怪兽陪伴",
		"reset.farewell": "再见了，要好好照顾自己",
	},
	"en": {
		"health.ok":      "ok",
		"app.name":       "Monster Companion",
		"reset.farewell": "Goodbye, take care of yourself",
	},
}

// T returns the translated string for key in locale; falls back to Chinese,
// the app's primary language.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["zh"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
