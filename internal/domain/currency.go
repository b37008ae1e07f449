package domain

import "strings"

// Minor units per supported currency, used when rounding a converted
// amount at commit time. The set matches the currency selector of the
// web app: EUR is the default home currency, USD and GBP are selectable.
var currencyMinorUnits = map[string]int32{
	"EUR": 2,
	"USD": 2,
	"GBP": 2,
}

func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func MinorUnits(code string) (int32, error) {
	units, ok := currencyMinorUnits[NormalizeCurrency(code)]
	if !ok {
		return 0, ErrUnknownCurrency
	}
	return units, nil
}

func SupportedCurrency(code string) bool {
	_, ok := currencyMinorUnits[NormalizeCurrency(code)]
	return ok
}
