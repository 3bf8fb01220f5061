// Package currency holds the currencies listings can be priced in and the
// display conversion used by the booking site. Rates are static and relative to USD.
package currency

import (
	"math"
	"strconv"
	"strings"
)

// Currency describes a supported currency
type Currency struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Rate   float64 `json:"rate"` // units per 1 USD
}

// Country describes a country a property can be listed in
type Country struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// Default is the fallback currency code
const Default = "USD"

var currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar", Rate: 1},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", Rate: 1.36},
	{Code: "GBP", Symbol: "£", Name: "British Pound", Rate: 0.79},
	{Code: "EUR", Symbol: "€", Name: "Euro", Rate: 0.92},
	{Code: "ILS", Symbol: "₪", Name: "Israeli Shekel", Rate: 3.65},
}

var countries = []Country{
	{Code: "us", Name: "United States", Currency: "USD"},
	{Code: "ca", Name: "Canada", Currency: "CAD"},
	{Code: "uk", Name: "United Kingdom", Currency: "GBP"},
	{Code: "be", Name: "Belgium", Currency: "EUR"},
	{Code: "il", Name: "Israel", Currency: "ILS"},
}

// All returns the supported currencies in display order
func All() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// Countries returns the supported countries in display order
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// Lookup finds a currency by code
func Lookup(code string) (Currency, bool) {
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// LookupCountry finds a country by its lowercase code
func LookupCountry(code string) (Country, bool) {
	for _, c := range countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// ForCountry returns the default currency code for a country, USD when unknown
func ForCountry(countryCode string) string {
	if c, ok := LookupCountry(countryCode); ok {
		return c.Currency
	}
	return Default
}

func rate(code string) float64 {
	if c, ok := Lookup(code); ok {
		return c.Rate
	}
	return 1
}

// Convert converts amount from one currency to another, rounded to a whole unit
func Convert(amount float64, from, to string) float64 {
	return math.Round(amount / rate(from) * rate(to))
}

// Format converts amount and renders it with the target symbol and thousands separators.
// Unknown target codes render in USD.
func Format(amount float64, from, to string) string {
	target, ok := Lookup(to)
	if !ok {
		target, _ = Lookup(Default)
	}
	converted := Convert(amount, from, target.Code)
	return target.Symbol + groupThousands(int64(converted))
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
