// Package classify derives expense categories from matched receipt data.
package classify

import "time"

// Label is an expense category derived from amount and issuance time.
type Label string

// The closed label set. AlmocoMaybe is a first-class outcome, not an error:
// it marks a meal-band amount whose time of day is unknown, and downstream
// presentation keys off its literal string form.
const (
	SemValor      Label = "SEM_VALOR"
	Hotel         Label = "HOTEL"
	Almoco        Label = "ALMOCO"
	Janta         Label = "JANTA"
	AlmocoMaybe   Label = "ALMOCO?"
	Outro         Label = "OUTRO"
	NaoEncontrado Label = "NAO_ENCONTRADO"
)

// Meal-band and hotel thresholds are fixed business constants.
const (
	hotelAbove = 100.0
	mealLow    = 40.0
	mealHigh   = 55.0
	dinnerFrom = 16
)

// Classify maps a matched amount and issuance timestamp to a Label.
// hasValor and hasTime signal absence explicitly; an absent amount yields
// SemValor and a meal-band amount with unknown time yields AlmocoMaybe.
func Classify(valor float64, hasValor bool, emissao time.Time, hasTime bool) Label {
	switch {
	case !hasValor:
		return SemValor
	case valor > hotelAbove:
		return Hotel
	case valor >= mealLow && valor <= mealHigh:
		if !hasTime {
			return AlmocoMaybe
		}
		if emissao.Hour() < dinnerFrom {
			return Almoco
		}
		return Janta
	default:
		return Outro
	}
}
