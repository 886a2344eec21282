package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ammpool/internal/model"
)

func runInit(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	admin, err := a.identity(cmd, "admin")
	if err != nil {
		return err
	}
	assetA, err := requiredIdentity(cmd, "asset-a")
	if err != nil {
		return err
	}
	assetB, err := requiredIdentity(cmd, "asset-b")
	if err != nil {
		return err
	}
	fee, _ := cmd.Flags().GetUint16("fee")

	if err := a.ctrl.Initialize(a.ctx, admin, assetA, assetB, fee); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "initialized pool %s fee %s\n", a.ctrl.Address().Hex(), model.FormatFee(fee))
	return nil
}

func runMint(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	asset, err := requiredIdentity(cmd, "asset")
	if err != nil {
		return err
	}
	to, err := a.identity(cmd, "to")
	if err != nil {
		return err
	}
	amount, err := amountFlag(cmd, "amount")
	if err != nil {
		return err
	}

	if err := a.minter.Mint(a.ctx, asset, to, amount); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "minted %s of %s to %s\n", amount, asset.Hex(), to.Hex())
	return nil
}

func runDeposit(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	depositor, err := a.identity(cmd, "depositor")
	if err != nil {
		return err
	}
	amountA, err := amountFlag(cmd, "amount-a")
	if err != nil {
		return err
	}
	amountB, err := amountFlag(cmd, "amount-b")
	if err != nil {
		return err
	}

	if err := a.ctrl.Deposit(a.ctx, depositor, amountA, amountB); err != nil {
		return err
	}
	reserves, err := a.ctrl.GetReserves(a.ctx)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), reserves)
}

func runSwap(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	trader, err := a.identity(cmd, "trader")
	if err != nil {
		return err
	}
	assetIn, err := requiredIdentity(cmd, "asset-in")
	if err != nil {
		return err
	}
	amountIn, err := amountFlag(cmd, "amount-in")
	if err != nil {
		return err
	}
	minOut, err := amountFlag(cmd, "min-out")
	if err != nil {
		return err
	}

	out, err := a.ctrl.Swap(a.ctx, trader, assetIn, amountIn, minOut)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return nil
}

func runQuote(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	assetIn, err := requiredIdentity(cmd, "asset-in")
	if err != nil {
		return err
	}
	amountIn, err := amountFlag(cmd, "amount-in")
	if err != nil {
		return err
	}

	out, err := a.ctrl.QuoteSwap(a.ctx, assetIn, amountIn)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return nil
}

func runSetFee(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	admin, err := a.identity(cmd, "admin")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("fee") {
		return fmt.Errorf("--fee is required")
	}
	fee, _ := cmd.Flags().GetUint16("fee")

	if err := a.ctrl.SetFee(a.ctx, admin, fee); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "fee set to %s\n", model.FormatFee(fee))
	return nil
}

func runReserves(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	reserves, err := a.ctrl.GetReserves(a.ctx)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), reserves)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	info, err := a.ctrl.GetContractInfo(a.ctx)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), info)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
