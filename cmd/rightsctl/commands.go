package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rightshare/client-sdk-go/services/rights"
)

// withApp 创建组件、载入资产后执行 fn
func withApp(opts *rootOptions, fn func(ctx context.Context, cmd *cobra.Command, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(opts, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		if err := a.open(ctx, opts.asset); err != nil {
			return err
		}
		return fn(ctx, cmd, a)
	}
}

// submit 输出回执；重载失败时交易已确认，仅提示
func submit(a *app, receipt *rights.Receipt, err error) error {
	if receipt != nil {
		a.printer.receipt(receipt)
	}
	if err != nil && receipt != nil {
		a.logger.Warn("Transaction confirmed but reload failed", "error", err)
		return nil
	}
	return err
}

// freezeFlags 冻结表单参数；只覆盖显式设置的字段
type freezeFlags struct {
	expiryDate string
	expiryTime string
	exclusive  bool
	maxSupply  string
	purpose    string
	image      string
	terms      string
}

func (f *freezeFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.expiryDate, "expiry-date", "", "expiry date, YYYY-MM-DD (UTC)")
	flags.StringVar(&f.expiryTime, "expiry-time", "", "expiry time, HH:MM (UTC)")
	flags.BoolVar(&f.exclusive, "exclusive", false, "issue a single exclusive IRight")
	flags.StringVar(&f.maxSupply, "max-supply", "", "maximum IRight supply of a non-exclusive freeze")
	flags.StringVar(&f.purpose, "purpose", "", "purpose recorded with the rights")
	flags.StringVar(&f.image, "image", "", "image url recorded with the rights")
	flags.StringVar(&f.terms, "terms", "", "terms url recorded with the rights")
}

func (f *freezeFlags) apply(flags *pflag.FlagSet, form *rights.FreezeForm) bool {
	changed := false
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
			changed = true
		}
	}
	set("expiry-date", &form.ExpiryDate, f.expiryDate)
	set("expiry-time", &form.ExpiryTime, f.expiryTime)
	set("max-supply", &form.MaxISupply, f.maxSupply)
	set("purpose", &form.Purpose, f.purpose)
	set("image", &form.ImageURL, f.image)
	set("terms", &form.TermsURL, f.terms)
	if flags.Changed("exclusive") {
		form.IsExclusive = f.exclusive
		changed = true
	}
	return changed
}

func newEstimateCmd(opts *rootOptions) *cobra.Command {
	var (
		ff freezeFlags
		to string
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Show which actions are available and their gas cost",
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app) error {
			if form := a.session.FreezeForm(); form != nil && !form.ReadOnly {
				if ff.apply(cmd.Flags(), form) {
					a.session.SetFreezeForm(ctx, form)
				}
			}
			if to != "" {
				a.session.SetTransferForm(ctx, &rights.TransferForm{To: to})
			}
			a.session.Wait()
			return a.printer.report(a.session.Asset(), a.session.FreezeForm(), a.session.Snapshot())
		}),
	}
	ff.register(cmd.Flags())
	cmd.Flags().StringVar(&to, "to", "", "transfer destination to estimate")
	return cmd
}

func newApproveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "approve",
		Short: "Allow the Rights DAO to take custody of the NFT",
		RunE: withApp(opts, func(ctx context.Context, _ *cobra.Command, a *app) error {
			receipt, err := a.approve(ctx)
			return submit(a, receipt, err)
		}),
	}
}

func newFreezeCmd(opts *rootOptions) *cobra.Command {
	var (
		ff          freezeFlags
		autoApprove bool
	)
	cmd := &cobra.Command{
		Use:   "freeze",
		Short: "Freeze the NFT into an FRight",
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app) error {
			form := a.session.FreezeForm()
			if form == nil || form.ReadOnly {
				return fmt.Errorf("asset cannot be frozen: %w", rights.ErrActionDisabled)
			}
			ff.apply(cmd.Flags(), form)
			a.session.SetFreezeForm(ctx, form)
			a.session.Wait()

			receipt, err := a.session.Freeze(ctx)
			if errors.Is(err, rights.ErrApprovalRequired) && autoApprove {
				if _, err := a.approve(ctx); err != nil {
					return fmt.Errorf("approve failed: %w", err)
				}
				a.session.Wait()
				receipt, err = a.session.Freeze(ctx)
			}
			return submit(a, receipt, err)
		}),
	}
	ff.register(cmd.Flags())
	cmd.Flags().BoolVar(&autoApprove, "approve", false, "send approve first when an exclusive freeze needs it")
	return cmd
}

func newTransferCmd(opts *rootOptions) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer an IRight",
		RunE: withApp(opts, func(ctx context.Context, _ *cobra.Command, a *app) error {
			a.session.SetTransferForm(ctx, &rights.TransferForm{To: to})
			a.session.Wait()
			receipt, err := a.session.Transfer(ctx)
			return submit(a, receipt, err)
		}),
	}
	cmd.Flags().StringVar(&to, "to", "", "destination address")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newSimpleCmd(opts *rootOptions, use, short string, fn func(*app, context.Context) (*rights.Receipt, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: withApp(opts, func(ctx context.Context, _ *cobra.Command, a *app) error {
			receipt, err := fn(a, ctx)
			return submit(a, receipt, err)
		}),
	}
}
