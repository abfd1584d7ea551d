package model

// Currency describes one of the supported currency codes.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Currencies is the fixed set of currencies entries may use.
var Currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
	{Code: "SGD", Symbol: "S$", Name: "Singapore Dollar"},
}

// CurrencyByCode looks up a currency by its code.
func CurrencyByCode(code string) (Currency, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// CurrencySymbol returns the display symbol for code, falling back to the
// bare code for unknown currencies.
func CurrencySymbol(code string) string {
	if c, ok := CurrencyByCode(code); ok {
		return c.Symbol
	}
	return code
}

// ValidCurrency reports whether code belongs to the supported set.
func ValidCurrency(code string) bool {
	_, ok := CurrencyByCode(code)
	return ok
}
