package parser

import "strings"

// Translator maps a mission type as printed on the source pages to the
// name shown downstream. Values missing from the table pass through.
type Translator map[string]string

// Translate returns the mapped name or s unchanged.
func (t Translator) Translate(s string) string {
	s = strings.TrimSpace(s)
	if v, ok := t[s]; ok {
		return v
	}
	return s
}

// English expands the abbreviations the pages use and leaves full names
// alone.
var English = Translator{
	"MD":   "Mobile Defense",
	"Def":  "Defense",
	"Ext":  "Exterminate",
	"Int":  "Interception",
	"Surv": "Survival",
}

// Russian carries the names used by Russian-speaking channels.
var Russian = Translator{
	"Exterminate":          "Зачистка",
	"Capture":              "Захват",
	"Mobile Defense":       "Мобильная оборона",
	"Defense":              "Оборона",
	"Survival":             "Выживание",
	"Interception":         "Перехват",
	"Rescue":               "Спасение",
	"Spy":                  "Шпионаж",
	"Sabotage":             "Диверсия",
	"Extraction":           "Извлечение",
	"Disruption":           "Сбой",
	"Assault":              "Штурм",
	"Crossfire":            "Перестрелка",
	"Alchemy":              "Алхимия",
	"Void Cascade":         "Каскад Бездны",
	"Void Flood":           "Потоп Бездны",
	"MD":                   "Мобильная оборона",
	"Def":                  "Оборона",
	"Excavation":           "Раскопки",
	"Conjunction Survival": "Сопряжённое выживание",
	"Defection":            "Перебежчики",
	"Skirmish":             "Схватка",
	"Unknown Mission":      "Неизвестный тип",
}

// TranslatorFor returns the table for a locale ("en" when unrecognised).
func TranslatorFor(locale string) Translator {
	switch strings.ToLower(locale) {
	case "ru":
		return Russian
	}
	return English
}
