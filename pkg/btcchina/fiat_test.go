package btcchina

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"btcchina/pkg/core"
)

const voucherPage = `<html><body>
<table>
  <tr><th>Currency</th><th>Deposit</th><th>Withdrawal</th></tr>
  <tr><td>USD/CNY</td><td>6.5230</td><td> 6.4780 </td></tr>
  <tr><td>CNH/CNY</td><td>1.0010</td><td>0.9990</td></tr>
  <tr><td>HKD/CNY</td><td>0.8420</td><td>0.8360</td></tr>
  <tr><td>EUR/CNY</td><td>7.3010</td><td>7.2520</td></tr>
</table>
</body></html>`

const partialVoucherPage = `<html><body>
<table>
  <tr><td>USD/CNY</td><td>6.5230</td><td>6.4780</td></tr>
  <tr><td>EUR/CNY</td><td>7.3010</td><td>7.2520</td></tr>
</table>
</body></html>`

func TestParseFiatRates_AllPairs(t *testing.T) {
	table, err := ParseFiatRates([]byte(voucherPage))
	require.NoError(t, err)
	require.Len(t, table, 4)

	usd := table["USDCNY"]
	require.NotNil(t, usd.Deposit)
	require.NotNil(t, usd.Withdrawal)
	assert.Equal(t, "6.5230", usd.Deposit.String())
	assert.Equal(t, "6.4780", usd.Withdrawal.String())
	assert.Equal(t, "0.8420", table["HKDCNY"].Deposit.String())
	assert.Equal(t, "7.2520", table["EURCNY"].Withdrawal.String())
}

func TestParseFiatRates_MissingPairs(t *testing.T) {
	table, err := ParseFiatRates([]byte(partialVoucherPage))
	require.Error(t, err)

	assert.Len(t, table, 2)
	assert.Contains(t, table, "USDCNY")
	assert.Contains(t, table, "EURCNY")

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)

	var first, last *SymbolError
	require.True(t, errors.As(errs[0], &first))
	require.True(t, errors.As(errs[len(errs)-1], &last))
	assert.Equal(t, "CNH/CNY", first.Symbol)
	assert.Equal(t, "HKD/CNY", last.Symbol)
	assert.Contains(t, err.Error(), "HKD/CNY")
	assert.True(t, core.IsParse(last))
}

func TestParseFiatRates_BadCells(t *testing.T) {
	page := `<table>
  <tr><td>USD/CNY</td><td>n/a</td><td>6.4780</td></tr>
  <tr><td>CNH/CNY</td><td>1.0010</td></tr>
  <tr><td>HKD/CNY</td><td>0.8420</td><td></td></tr>
  <tr><td>EUR/CNY</td><td>7.3010</td><td>Infinity</td></tr>
</table>`

	table, err := ParseFiatRates([]byte(page))
	require.Error(t, err)
	assert.Empty(t, table)

	errs := multierr.Errors(err)
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0].Error(), "deposit rate")
	assert.Contains(t, errs[1].Error(), "cells")
	assert.Contains(t, errs[2].Error(), "withdrawal rate")
	assert.Contains(t, errs[3].Error(), "finite")
}

func TestParseFiatRates_NoTable(t *testing.T) {
	table, err := ParseFiatRates([]byte(`<html><body><p>USD/CNY 6.5</p></body></html>`))
	require.Error(t, err)
	assert.Empty(t, table)
	assert.Len(t, multierr.Errors(err), len(FiatBases))
}

func TestGetFiatExchangeRates(t *testing.T) {
	ts := newTestServer(t, http.StatusOK, voucherPage)
	client := newTestClient(t, ts.URL)

	table, err := client.GetFiatExchangeRates(context.Background())
	require.NoError(t, err)
	assert.Len(t, table, 4)

	req := ts.lastReq.Load()
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/page/internationalvoucher", req.path)
}

func TestGetFiatExchangeRates_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"http status", http.StatusNotFound, voucherPage, core.IsHTTPStatus},
		{"empty body", http.StatusOK, "", core.IsParse},
		{"whitespace body", http.StatusOK, "  \n", core.IsParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.status, tt.body)
			client := newTestClient(t, ts.URL)

			table, err := client.GetFiatExchangeRates(context.Background())
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
}

func TestGetFiatExchangeRates_TransportError(t *testing.T) {
	ts := newTestServer(t, http.StatusOK, voucherPage)
	client := newTestClient(t, ts.URL)
	ts.Close()

	_, err := client.GetFiatExchangeRates(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsTransport(err))
}
