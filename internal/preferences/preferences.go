// Package preferences holds the per-user display settings (language,
// currency, exchange rate) and the formatters derived from them. Values
// travel in cookies so no server side session is needed.
package preferences

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"baketrack/internal/core"
)

type Language string

type Currency string

const (
	ID Language = "ID"
	EN Language = "EN"

	IDR Currency = "IDR"
	USD Currency = "USD"
)

// DatePlaceholder replaces dates that cannot be parsed.
const DatePlaceholder = "-"

const (
	cookieLanguage = "baketrack_language"
	cookieCurrency = "baketrack_currency"
	cookieRate     = "baketrack_rate"
	cookieMaxAge   = 365 * 24 * time.Hour
)

// DefaultExchangeRate is IDR per USD.
var DefaultExchangeRate = decimal.NewFromInt(15000)

type Preferences struct {
	Language     Language
	Currency     Currency
	ExchangeRate decimal.Decimal
}

func Default() Preferences {
	return Preferences{Language: ID, Currency: IDR, ExchangeRate: DefaultExchangeRate}
}

// Parse builds preferences from raw form or cookie values. Empty values keep
// the defaults; invalid ones are reported.
func Parse(lang, curr, rate string) (Preferences, error) {
	p := Default()
	switch Language(strings.ToUpper(strings.TrimSpace(lang))) {
	case "":
	case ID:
		p.Language = ID
	case EN:
		p.Language = EN
	default:
		return Default(), fmt.Errorf("unsupported language %q", lang)
	}
	switch Currency(strings.ToUpper(strings.TrimSpace(curr))) {
	case "":
	case IDR:
		p.Currency = IDR
	case USD:
		p.Currency = USD
	default:
		return Default(), fmt.Errorf("unsupported currency %q", curr)
	}
	if rate = strings.TrimSpace(rate); rate != "" {
		r, err := core.ParseAmount(rate)
		if err != nil || !r.IsPositive() {
			return Default(), fmt.Errorf("invalid exchange rate %q", rate)
		}
		p.ExchangeRate = r
	}
	return p, nil
}

// FromRequest reads preferences from cookies. Anything invalid falls back
// to the defaults.
func FromRequest(r *http.Request) Preferences {
	value := func(name string) string {
		if c, err := r.Cookie(name); err == nil {
			return c.Value
		}
		return ""
	}
	p, err := Parse(value(cookieLanguage), value(cookieCurrency), value(cookieRate))
	if err != nil {
		return Default()
	}
	return p
}

// Write stores the preferences as long lived cookies.
func (p Preferences) Write(w http.ResponseWriter) {
	set := func(name, value string) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			MaxAge:   int(cookieMaxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	set(cookieLanguage, string(p.Language))
	set(cookieCurrency, string(p.Currency))
	set(cookieRate, p.ExchangeRate.String())
}

// Tag is the BCP 47 locale used for number formatting.
func (p Preferences) Tag() language.Tag {
	if p.Language == EN {
		return language.AmericanEnglish
	}
	return language.Indonesian
}

// FormatPrice renders an IDR amount in the selected currency: whole rupiah
// with Indonesian grouping, or dollars at the exchange rate with two
// decimals.
func (p Preferences) FormatPrice(amount decimal.Decimal) string {
	if p.Currency == USD {
		rate := p.ExchangeRate
		if !rate.IsPositive() {
			rate = DefaultExchangeRate
		}
		return formatMoney(amount.Div(rate), "$", language.AmericanEnglish, 2, ".")
	}
	return formatMoney(amount, "Rp ", language.Indonesian, 0, ",")
}

// formatMoney groups the integer part with the locale's separator and
// appends a fixed number of decimals.
func formatMoney(v decimal.Decimal, symbol string, tag language.Tag, places int32, decimalSep string) string {
	v = v.Round(places)
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	out := sign + symbol + message.NewPrinter(tag).Sprintf("%d", v.IntPart())
	if places > 0 {
		fixed := v.StringFixed(places)
		out += decimalSep + fixed[len(fixed)-int(places):]
	}
	return out
}

var monthsID = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// FormatDate renders a transaction date as "30 Jan 2024" (ID) or
// "Jan 30, 2024" (EN), or DatePlaceholder when it cannot be parsed.
func (p Preferences) FormatDate(s string) string {
	t, ok := core.ParseDate(s)
	if !ok {
		return DatePlaceholder
	}
	if p.Language == EN {
		return t.Format("Jan 2, 2006")
	}
	return fmt.Sprintf("%d %s %d", t.Day(), monthsID[t.Month()-1], t.Year())
}
