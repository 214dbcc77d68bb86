// Package btcchina is a client for the BTC China exchange API.
//
// It covers three surfaces:
//   - Public market data: unauthenticated GET requests under /data/
//   - Private trading: signed JSON-RPC calls to /api_trade_v1.php
//   - Fiat rates: deposit and withdrawal rates scraped from the voucher page
//
// Every call returns either a *Response or a *core.Error whose Kind tells a
// validation, transport, HTTP status, parse or vendor failure apart.
//
// Example usage:
//
//	client, err := btcchina.New(core.DefaultConfig().WithCredentials(key, secret))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	resp, err := client.GetAccountInfo(ctx, btcchina.GetAccountInfoRequest{Type: btcchina.Ptr("balance")})
package btcchina
