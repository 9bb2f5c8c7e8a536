package types

import (
	"golang.org/x/text/language"
)

var labelLanguages = []language.Tag{language.English, language.Spanish}

var labelMatcher = language.NewMatcher(labelLanguages)

var unknownLabels = map[language.Tag]map[Reason]string{
	language.Spanish: {
		ReasonUnknownName:        "nombre desconocido",
		ReasonCycle:              "ciclo",
		ReasonUnresolvedVariable: "variable de tipo sin resolver",
		ReasonUnparsable:         "no analizable",
		ReasonNotAFunction:       "no es una función",
		ReasonUnknownProperty:    "propiedad desconocida",
		ReasonUnknownConversion:  "conversión desconocida",
		ReasonUnknownOperator:    "operador desconocido",
		ReasonNotAStream:         "no es un flujo",
		ReasonPlaceholder:        "marcador de posición",
		ReasonNoExpression:       "sin expresión",
		ReasonUnknownBorrow:      "préstamo desconocido",
	},
}

var unknownWord = map[language.Tag]string{
	language.English: "unknown",
	language.Spanish: "desconocido",
}

// Label describes t for a person reading in the given locale. Types are
// written in wordplay's own notation, which does not vary by locale; the
// reasons of unknown types are described in the locale's language when
// available and in English otherwise.
func Label(t Type, locale language.Tag) string {
	u, ok := t.(*Unknown)
	if !ok {
		return str(t)
	}
	_, i, _ := labelMatcher.Match(locale)
	tag := labelLanguages[i]
	label := unknownWord[tag]
	for _, c := range u.Chain() {
		reason := c.Reason.String()
		if localized, ok := unknownLabels[tag][c.Reason]; ok {
			reason = localized
		}
		label += ": " + reason
	}
	return label
}
