package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"btcchina/pkg/btcchina"
	"btcchina/pkg/core"
)

// app holds what every subcommand needs. The client is built lazily so --help
// works without a valid environment.
type app struct {
	logger zerolog.Logger
	out    io.Writer
	load   func() (*core.Config, error)
	client *btcchina.Client
}

func (a *app) getClient() (*btcchina.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	config, err := a.load()
	if err != nil {
		return nil, err
	}
	client, err := btcchina.New(config, btcchina.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

func (a *app) close() {
	if a.client != nil {
		a.client.Close()
	}
}

func newRootCmd(ctx context.Context, a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "btcchina",
		Short:         "BTC China API client",
		Long:          "BTC China API client.\n\n" + configUsage(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)

	root.AddCommand(tickerCmd(ctx, a))
	root.AddCommand(orderBookCmd(ctx, a))
	root.AddCommand(accountCmd(ctx, a))
	root.AddCommand(ordersCmd(ctx, a))
	root.AddCommand(fiatRatesCmd(ctx, a))
	root.AddCommand(callCmd(ctx, a))
	return root
}

func tickerCmd(ctx context.Context, a *app) *cobra.Command {
	var market string
	cmd := &cobra.Command{
		Use:   "ticker",
		Short: "Show the ticker for a market",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.getClient()
			if err != nil {
				return err
			}
			resp, err := client.GetTicker(ctx, market)
			if err != nil {
				return err
			}
			return a.print(resp)
		},
	}
	cmd.Flags().StringVar(&market, "market", "btccny", "market, or all")
	return cmd
}

func orderBookCmd(ctx context.Context, a *app) *cobra.Command {
	var (
		market string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "orderbook",
		Short: "Show the order book for a market",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.getClient()
			if err != nil {
				return err
			}
			resp, err := client.GetOrderBook(ctx, market, limit)
			if err != nil {
				return err
			}
			return a.print(resp)
		},
	}
	cmd.Flags().StringVar(&market, "market", "btccny", "market")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of levels per side, 0 for the server default")
	return cmd
}

func accountCmd(ctx context.Context, a *app) *cobra.Command {
	var infoType string
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show account info (requires credentials)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.getClient()
			if err != nil {
				return err
			}
			req := btcchina.GetAccountInfoRequest{}
			if infoType != "" {
				req.Type = &infoType
			}
			resp, err := client.GetAccountInfo(ctx, req)
			if err != nil {
				return err
			}
			return a.print(resp)
		},
	}
	cmd.Flags().StringVar(&infoType, "type", "", "all, balance, frozen, loan or profile")
	return cmd
}

func ordersCmd(ctx context.Context, a *app) *cobra.Command {
	var (
		openOnly bool
		market   string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders (requires credentials)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.getClient()
			if err != nil {
				return err
			}
			req := btcchina.GetOrdersRequest{OpenOnly: &openOnly, Market: &market}
			if limit > 0 {
				req.Limit = &limit
			}
			resp, err := client.GetOrders(ctx, req)
			if err != nil {
				return err
			}
			return a.print(resp)
		},
	}
	cmd.Flags().BoolVar(&openOnly, "open", true, "only open orders")
	cmd.Flags().StringVar(&market, "market", "btccny", "market, or all")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of orders, 0 for the server default")
	return cmd
}

func fiatRatesCmd(ctx context.Context, a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fiat-rates",
		Short: "Show fiat deposit and withdrawal rates against CNY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.getClient()
			if err != nil {
				return err
			}
			table, err := client.GetFiatExchangeRates(ctx)
			for _, pair := range slices.Sorted(maps.Keys(table)) {
				rate := table[pair]
				fmt.Fprintf(a.out, "%s\tdeposit=%s\twithdrawal=%s\n", pair, rate.Deposit.String(), rate.Withdrawal.String())
			}
			for _, e := range multierr.Errors(err) {
				a.logger.Warn().Err(e).Msg("fiat rate unavailable")
			}
			if len(table) == 0 {
				return err
			}
			return nil
		},
	}
}

func callCmd(ctx context.Context, a *app) *cobra.Command {
	var private bool
	cmd := &cobra.Command{
		Use:   "call METHOD [ARGS...]",
		Short: "Call any API method",
		Long: "Call any API method.\n\n" +
			"Public methods take key=value arguments sent as query parameters.\n" +
			"Private methods (--private) take positional arguments; true/false become\n" +
			"booleans, numbers are sent as JSON numbers and anything else as a string.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.getClient()
			if err != nil {
				return err
			}
			method, rest := args[0], args[1:]

			var resp *btcchina.Response
			if private {
				resp, err = client.PrivateRequest(ctx, method, parsePositional(rest))
			} else {
				params, perr := parseKeyValues(rest)
				if perr != nil {
					return perr
				}
				resp, err = client.PublicRequest(ctx, method, params)
			}
			if err != nil {
				return err
			}
			return a.print(resp)
		},
	}
	cmd.Flags().BoolVar(&private, "private", false, "signed JSON-RPC call")
	return cmd
}

func (a *app) print(resp *btcchina.Response) error {
	data, err := sonic.ConfigStd.MarshalIndent(resp.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

func parseKeyValues(args []string) (core.Params, error) {
	params := core.Params{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", arg)
		}
		params[key] = value
	}
	return params, nil
}

func parsePositional(args []string) []any {
	params := make([]any, 0, len(args))
	for _, arg := range args {
		params = append(params, parseScalar(arg))
	}
	return params
}

func parseScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if d, _, err := apd.NewFromString(s); err == nil && d.Form == apd.Finite {
		return d
	}
	return s
}
