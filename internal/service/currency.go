package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/parkfinder/backend/internal/domain"
)

// DefaultCurrency is used whenever nothing matches
const DefaultCurrency = "USD"

// currencyByName maps lowercase place names to currency codes.
// Longer keys win, so "new south wales" beats "wales". Keys only match whole words.
var currencyByName = map[string]string{
	"united states": "USD", "usa": "USD", "u.s.a.": "USD",
	"new york": "USD", "los angeles": "USD", "san francisco": "USD",
	"chicago": "USD", "seattle": "USD", "boston": "USD", "new mexico": "USD",
	"indiana": "USD", "indianapolis": "USD",
	"canada": "CAD", "toronto": "CAD", "vancouver": "CAD", "montreal": "CAD",
	"united kingdom": "GBP", "great britain": "GBP", "britain": "GBP",
	"england": "GBP", "scotland": "GBP", "wales": "GBP",
	"london": "GBP", "manchester": "GBP", "birmingham": "GBP", "edinburgh": "GBP",
	"india": "INR", "delhi": "INR", "mumbai": "INR", "bangalore": "INR",
	"bengaluru": "INR", "chennai": "INR", "kolkata": "INR", "hyderabad": "INR",
	"australia": "AUD", "sydney": "AUD", "melbourne": "AUD", "brisbane": "AUD",
	"new south wales": "AUD",
	"germany": "EUR", "deutschland": "EUR", "berlin": "EUR", "munich": "EUR",
	"france": "EUR", "paris": "EUR", "spain": "EUR", "madrid": "EUR",
	"barcelona": "EUR", "italy": "EUR", "rome": "EUR", "milan": "EUR",
	"netherlands": "EUR", "amsterdam": "EUR", "ireland": "EUR", "dublin": "EUR",
	"austria": "EUR", "vienna": "EUR", "portugal": "EUR", "lisbon": "EUR",
	"belgium": "EUR", "brussels": "EUR", "europe": "EUR",
	"switzerland": "CHF", "zurich": "CHF", "geneva": "CHF",
	"japan": "JPY", "tokyo": "JPY", "osaka": "JPY",
	"china": "CNY", "beijing": "CNY", "shanghai": "CNY",
	"new zealand": "NZD", "auckland": "NZD",
	"singapore": "SGD",
	"united arab emirates": "AED", "dubai": "AED",
	"mexico": "MXN", "brazil": "BRL", "brasil": "BRL",
}

var currencyByCountryCode = map[string]string{
	"us": "USD", "ca": "CAD", "gb": "GBP", "in": "INR", "au": "AUD",
	"de": "EUR", "fr": "EUR", "es": "EUR", "it": "EUR", "nl": "EUR",
	"ie": "EUR", "at": "EUR", "pt": "EUR", "be": "EUR", "fi": "EUR",
	"gr": "EUR", "ch": "CHF", "jp": "JPY", "cn": "CNY", "nz": "NZD",
	"sg": "SGD", "ae": "AED", "mx": "MXN", "br": "BRL",
}

// currencyKeys holds currencyByName keys, longest first
var currencyKeys = func() []string {
	keys := make([]string, 0, len(currencyByName))
	for k := range currencyByName {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// DetectCurrency returns the currency of the longest known place name in text
func DetectCurrency(text string) string {
	if code, ok := matchCurrency(text); ok {
		return code
	}
	return DefaultCurrency
}

func matchCurrency(text string) (string, bool) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return "", false
	}
	for _, key := range currencyKeys {
		if containsWord(lower, key) {
			return currencyByName[key], true
		}
	}
	return "", false
}

// containsWord reports whether word occurs in text with no letter directly on either side
func containsWord(text, word string) bool {
	for offset := 0; ; {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			return false
		}
		start, end := offset+i, offset+i+len(word)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !unicode.IsLetter(before) && !unicode.IsLetter(after) {
			return true
		}
		offset = start + 1
	}
}

// ReverseGeocoder resolves a coordinate to an address
type ReverseGeocoder interface {
	Reverse(ctx context.Context, c domain.Coordinate) (Address, error)
}

// CurrencyDetector resolves currencies from free text or coordinates
type CurrencyDetector struct {
	geocoder ReverseGeocoder
	timeout  time.Duration
}

// NewCurrencyDetector creates a detector; geocoder may be nil (offline mode)
func NewCurrencyDetector(geocoder ReverseGeocoder, timeout time.Duration) *CurrencyDetector {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &CurrencyDetector{geocoder: geocoder, timeout: timeout}
}

// DetectFromText matches a search query or display name
func (d *CurrencyDetector) DetectFromText(text string) string {
	return DetectCurrency(text)
}

// DetectFromCoordinate reverse-geocodes c and matches the address.
// Any failure yields DefaultCurrency; errors are logged, never returned.
func (d *CurrencyDetector) DetectFromCoordinate(ctx context.Context, c domain.Coordinate) string {
	if d.geocoder == nil {
		return DefaultCurrency
	}
	if err := c.Validate(); err != nil {
		log.Printf("currency: %v", err)
		return DefaultCurrency
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	addr, err := d.geocoder.Reverse(ctx, c)
	if err != nil {
		log.Printf("currency: reverse geocode failed, using %s: %v", DefaultCurrency, err)
		return DefaultCurrency
	}

	text := strings.Join([]string{addr.Locality(), addr.State, addr.Country}, ", ")
	if code, ok := matchCurrency(text); ok {
		return code
	}
	if code, ok := currencyByCountryCode[strings.ToLower(addr.CountryCode)]; ok {
		return code
	}
	return DefaultCurrency
}

var currencySymbols = map[string]string{
	"USD": "$", "GBP": "£", "EUR": "€", "INR": "₹", "AUD": "A$",
	"CAD": "C$", "JPY": "¥", "CNY": "¥", "NZD": "NZ$", "SGD": "S$",
	"MXN": "MX$", "BRL": "R$",
}

// FormatPrice renders an amount with its currency symbol for display
func FormatPrice(amount float64, currency string) string {
	decimals := 2
	if currency == "JPY" {
		decimals = 0
	}
	if sym, ok := currencySymbols[currency]; ok {
		return fmt.Sprintf("%s%.*f", sym, decimals, amount)
	}
	return fmt.Sprintf("%s %.*f", currency, decimals, amount)
}
