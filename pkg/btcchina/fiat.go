package btcchina

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/apd/v3"
	"go.uber.org/multierr"

	"btcchina/internal/metrics"
	"btcchina/pkg/core"
)

const fiatQuote = "CNY"

// FiatBases are the currencies quoted against CNY on the voucher page, in scan order.
var FiatBases = []string{"USD", "CNH", "HKD", "EUR"}

// FiatRate is the deposit and withdrawal rate for one currency pair.
type FiatRate struct {
	Deposit    *apd.Decimal
	Withdrawal *apd.Decimal
}

// FiatRateTable maps a concatenated pair such as "USDCNY" to its rates.
type FiatRateTable map[string]FiatRate

// SymbolError is a failure to extract one pair from the voucher page.
type SymbolError struct {
	// Symbol is the slash form, e.g. "HKD/CNY".
	Symbol string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

// GetFiatExchangeRates scrapes the current fiat deposit and withdrawal rates.
// It may return a partial table together with an error listing every pair that
// could not be read; see ParseFiatRates.
func (c *Client) GetFiatExchangeRates(ctx context.Context) (FiatRateTable, error) {
	start := time.Now()
	table, err := c.getFiatExchangeRates(ctx)
	c.observe(metrics.KindFiat, "fiatrates", start, firstError(err))
	return table, err
}

func (c *Client) getFiatExchangeRates(ctx context.Context) (FiatRateTable, error) {
	info := requestInfo{httpMethod: "GET", url: c.config.FiatRatesURL}

	if err := c.wait(ctx, info); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, c.config.FiatRatesURL, c.config.Timeout)
	if err := checkTransport(info, resp, err); err != nil {
		return nil, err
	}

	body := resp.Bytes()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, core.NewParseError(nil, "no HTML response").WithRequest(info.String())
	}

	return ParseFiatRates(body)
}

// ParseFiatRates extracts the rates for every pair in FiatBases from the voucher page.
// Each pair is read from the first table row mentioning it, taking the second and third
// cells as deposit and withdrawal. Pairs that cannot be read are left out of the table
// and reported as *SymbolError values combined with multierr, in scan order.
func ParseFiatRates(html []byte) (FiatRateTable, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, core.NewParseError(err, "parse HTML: %v", err)
	}

	table := make(FiatRateTable, len(FiatBases))
	var errs error
	for _, base := range FiatBases {
		rate, err := parseFiatRate(doc, base+"/"+fiatQuote)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		table[base+fiatQuote] = rate
	}
	return table, errs
}

func parseFiatRate(doc *goquery.Document, symbol string) (FiatRate, error) {
	row := doc.Find("table tr:contains('" + symbol + "')").First()
	if row.Length() == 0 {
		return FiatRate{}, symbolError(symbol, "no table row found")
	}

	cells := row.Children()
	if cells.Length() < 3 {
		return FiatRate{}, symbolError(symbol, "row has %d cells, want at least 3", cells.Length())
	}

	deposit, err := parseRate(cells.Eq(1).Text())
	if err != nil {
		return FiatRate{}, symbolError(symbol, "deposit rate: %v", err)
	}
	withdrawal, err := parseRate(cells.Eq(2).Text())
	if err != nil {
		return FiatRate{}, symbolError(symbol, "withdrawal rate: %v", err)
	}
	return FiatRate{Deposit: deposit, Withdrawal: withdrawal}, nil
}

func parseRate(text string) (*apd.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty cell")
	}
	d, _, err := apd.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", text)
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("%q is not a finite number", text)
	}
	return d, nil
}

func symbolError(symbol, format string, args ...any) *SymbolError {
	return &SymbolError{
		Symbol: symbol,
		Err:    core.NewParseError(nil, format, args...),
	}
}

// firstError returns the first error of a multierr chain, which carries the kind for metrics.
func firstError(err error) error {
	if errs := multierr.Errors(err); len(errs) > 0 {
		return errs[0]
	}
	return err
}
