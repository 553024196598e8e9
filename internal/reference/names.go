package reference

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var (
	countriesOnce sync.Once
	countries     map[string]string

	languagesOnce sync.Once
	languages     map[string]string
)

// CountryNames maps lowercase ISO 3166-1 alpha-2 codes to English country names.
// The returned map is shared and must not be modified.
func CountryNames() map[string]string {
	countriesOnce.Do(func() {
		countries = buildCountryNames()
	})
	return countries
}

// LanguageNames maps ISO 639-1 codes to English language names.
// The returned map is shared and must not be modified.
func LanguageNames() map[string]string {
	languagesOnce.Do(func() {
		languages = buildLanguageNames()
	})
	return languages
}

func buildCountryNames() map[string]string {
	namer := display.English.Regions()
	out := make(map[string]string, 256)
	for _, code := range twoLetterCodes() {
		region, err := language.ParseRegion(code)
		if err != nil || !region.IsCountry() || region.IsPrivateUse() {
			continue
		}
		// deprecated codes canonicalize to a different region
		if region.String() != strings.ToUpper(code) {
			continue
		}
		name := namer.Name(region)
		if name == "" {
			continue
		}
		out[code] = name
	}
	return out
}

func buildLanguageNames() map[string]string {
	namer := display.English.Languages()
	out := make(map[string]string, 192)
	for _, code := range twoLetterCodes() {
		base, err := language.ParseBase(code)
		if err != nil || base.String() != code {
			continue
		}
		name := namer.Name(base)
		if name == "" {
			continue
		}
		out[code] = name
	}
	return out
}

func twoLetterCodes() []string {
	codes := make([]string, 0, 26*26)
	for a := 'a'; a <= 'z'; a++ {
		for b := 'a'; b <= 'z'; b++ {
			codes = append(codes, string([]rune{a, b}))
		}
	}
	return codes
}
