package common

import (
	"strings"
)

// Ticker is a parsed, optionally exchange-qualified ticker.
// Accepted forms: "AAPL", "NASDAQ:AAPL", "AAPL.US", "brk.b".
type Ticker struct {
	// Exchange is the exchange code when one was given (e.g. "NASDAQ")
	Exchange string
	// Code is the provider symbol (e.g. "AAPL", "BRK.B")
	Code string
	// Raw is the original ticker string
	Raw string
}

// usSuffixes are exchange suffixes stripped from the code, since the
// fundamentals API only covers US listings.
var usSuffixes = []string{".US", ".NYSE", ".NASDAQ"}

// ParseTicker parses a ticker, normalizing the code to uppercase.
func ParseTicker(ticker string) Ticker {
	raw := ticker
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Ticker{}
	}

	t := Ticker{Raw: raw}
	if idx := strings.Index(ticker, ":"); idx > 0 {
		t.Exchange = ticker[:idx]
		ticker = ticker[idx+1:]
	}
	for _, suffix := range usSuffixes {
		if strings.HasSuffix(ticker, suffix) && len(ticker) > len(suffix) {
			if t.Exchange == "" {
				t.Exchange = strings.TrimPrefix(suffix, ".")
			}
			ticker = strings.TrimSuffix(ticker, suffix)
			break
		}
	}
	t.Code = ticker
	return t
}

// String returns the exchange-qualified ticker, or the bare code.
func (t Ticker) String() string {
	if t.Exchange == "" || t.Code == "" {
		return t.Code
	}
	return t.Exchange + ":" + t.Code
}

// Symbol returns the symbol sent to the provider.
func (t Ticker) Symbol() string {
	return t.Code
}

// ParseTickers parses a list, dropping empties and duplicate codes while
// keeping first-seen order.
func ParseTickers(tickers []string) []Ticker {
	seen := make(map[string]bool, len(tickers))
	out := make([]Ticker, 0, len(tickers))
	for _, s := range tickers {
		t := ParseTicker(s)
		if t.Code == "" || seen[t.Code] {
			continue
		}
		seen[t.Code] = true
		out = append(out, t)
	}
	return out
}
