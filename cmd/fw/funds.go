package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/komsit37/fw/pkg/fw/ledger"
)

func addCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <code>...",
		Short: "Add funds to the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var errs []error
			for _, code := range splitCodes(args) {
				if err := e.ledger.Add(code); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(out, "added %s\n", code)
			}
			return errors.Join(errs...)
		},
	}
}

func removeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <code>...",
		Aliases: []string{"rm"},
		Short:   "Remove funds from the watchlist",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, code := range splitCodes(args) {
				if _, ok := e.ledger.Position(code); !ok {
					fmt.Fprintf(out, "%s not in watchlist\n", code)
					continue
				}
				if err := e.ledger.Remove(code); err != nil {
					return err
				}
				fmt.Fprintf(out, "removed %s\n", code)
			}
			return nil
		},
	}
}

func buyCmd(e *env) *cobra.Command {
	var (
		priceArg string
		date     string
	)
	cmd := &cobra.Command{
		Use:   "buy <code> <shares>",
		Short: "Record a purchase and update the average cost",
		Long: "The price defaults to the latest published NAV. With --date the NAV\n" +
			"published on that day (YYYY-MM-DD) is used instead.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.TrimSpace(args[0])
			shares, err := ledger.ParseAmount("shares", args[1])
			if err != nil {
				return err
			}
			if _, ok := e.ledger.Position(code); !ok {
				return fmt.Errorf("%s: %w", code, ledger.ErrNotFound)
			}

			var price decimal.Decimal
			if priceArg != "" {
				if date != "" {
					return errors.New("--price and --date are mutually exclusive")
				}
				if price, err = ledger.ParseAmount("price", priceArg); err != nil {
					return err
				}
			} else {
				rec, err := e.agg.NAVOn(cmd.Context(), code, date)
				if err != nil {
					return err
				}
				price = decimal.NewFromFloat(rec.NetValue)
				fmt.Fprintf(cmd.OutOrStdout(), "using NAV %s of %s\n", price.StringFixed(4), rec.Date)
			}

			if err := e.ledger.Buy(code, price, shares); err != nil {
				return err
			}
			return printPosition(cmd.OutOrStdout(), e, code)
		},
	}
	cmd.Flags().StringVar(&priceArg, "price", "", "price per share")
	cmd.Flags().StringVar(&date, "date", "", "use the NAV published on this date (YYYY-MM-DD)")
	return cmd
}

func sellCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <code> <shares>",
		Short: "Record a sale; the average cost is kept",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.TrimSpace(args[0])
			shares, err := ledger.ParseAmount("shares", args[1])
			if err != nil {
				return err
			}
			if err := e.ledger.Sell(code, shares); err != nil {
				return err
			}
			return printPosition(cmd.OutOrStdout(), e, code)
		},
	}
}

func editCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <code> <shares> <cost>",
		Short: "Overwrite the shares and average cost of a fund",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.TrimSpace(args[0])
			shares, err := ledger.ParseAmount("shares", args[1])
			if err != nil {
				return err
			}
			cost, err := ledger.ParseAmount("cost", args[2])
			if err != nil {
				return err
			}
			if err := e.ledger.Edit(code, shares, cost); err != nil {
				return err
			}
			return printPosition(cmd.OutOrStdout(), e, code)
		},
	}
}

func moveCmd(e *env) *cobra.Command {
	var before string
	cmd := &cobra.Command{
		Use:   "move <code>",
		Short: "Move a fund before another one, or to the end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := e.ledger.Reorder(strings.TrimSpace(args[0]), strings.TrimSpace(before))
			if errors.Is(err, ledger.ErrReorderSorted) {
				return fmt.Errorf("%w; run \"fw sort default\" first", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(e.ledger.Codes(), " "))
			return nil
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "code to move in front of; empty moves to the end")
	return cmd
}

func importCmd(e *env) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import funds from a JSON file",
		Long: "The file is either {\"funds\": [...]} or a bare array of\n" +
			"{\"code\", \"num\", \"cost\"} records. Existing funds are updated and new\n" +
			"ones appended, unless --replace is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			records, err := ledger.ParseImport(data)
			if err != nil {
				return err
			}
			mode := ledger.Merge
			if replace {
				mode = ledger.Replace
			}
			if err := e.ledger.Import(records, mode); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d funds (%s)\n", len(records), mode)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the watchlist instead of merging")
	return cmd
}

func exportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export the watchlist as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := ledger.MarshalExport(e.ledger.Export())
			if err != nil {
				return err
			}
			if len(args) == 0 || args[0] == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d funds to %s\n", len(e.ledger.Codes()), args[0])
			return nil
		},
	}
}

func printPosition(w io.Writer, e *env, code string) error {
	p, ok := e.ledger.Position(code)
	if !ok {
		return fmt.Errorf("%s: %w", code, ledger.ErrNotFound)
	}
	cost := "--"
	if p.Cost > 0 {
		cost = fmt.Sprintf("%.4f", p.Cost)
	}
	_, err := fmt.Fprintf(w, "%s  shares %.2f  cost %s\n", p.Code, p.Shares, cost)
	return err
}

// splitCodes accepts codes as separate arguments or comma-separated.
func splitCodes(args []string) []string {
	var out []string
	for _, a := range args {
		for _, c := range strings.Split(a, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
