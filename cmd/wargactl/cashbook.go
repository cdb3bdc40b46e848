package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"warga/internal/core"
	"warga/internal/services"
)

type cashRow struct {
	ID          string
	Date        core.Date
	Description string
	Amount      core.Money
	Receipt     string
}

// cashBook adapts one side of the cash book to the shared list, add and
// delete commands.
type cashBook struct {
	use, alias, noun string
	list             func(year, month int) []cashRow
	add              func(ctx context.Context, in services.CashEntryInput) (cashRow, error)
	remove           func(ctx context.Context, id string) error
}

var expenseBook = cashBook{
	use: "expenses", alias: "pengeluaran", noun: "expense",
	list: func(year, month int) []cashRow {
		var rows []cashRow
		for _, e := range app.Cashbook.Expenses(year, month) {
			rows = append(rows, cashRow{e.ID, e.Date, e.Description, e.Amount, e.Receipt})
		}
		return rows
	},
	add: func(ctx context.Context, in services.CashEntryInput) (cashRow, error) {
		e, err := app.Cashbook.AddExpense(ctx, in)
		return cashRow{e.ID, e.Date, e.Description, e.Amount, e.Receipt}, err
	},
	remove: func(ctx context.Context, id string) error {
		return app.Cashbook.DeleteExpense(ctx, id, true)
	},
}

var incomeBook = cashBook{
	use: "incomes", alias: "pemasukan", noun: "income",
	list: func(year, month int) []cashRow {
		var rows []cashRow
		for _, i := range app.Cashbook.Incomes(year, month) {
			rows = append(rows, cashRow{ID: i.ID, Date: i.Date, Description: i.Description, Amount: i.Amount})
		}
		return rows
	},
	add: func(ctx context.Context, in services.CashEntryInput) (cashRow, error) {
		i, err := app.Cashbook.AddIncome(ctx, in)
		return cashRow{ID: i.ID, Date: i.Date, Description: i.Description, Amount: i.Amount}, err
	},
	remove: func(ctx context.Context, id string) error {
		return app.Cashbook.DeleteIncome(ctx, id, true)
	},
}

// readReceipt embeds an image file as a data URL.
func readReceipt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read receipt: %w", err)
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("receipt %s is %s: %w", filepath.Base(path), mime.String(), core.ErrInvalidReceipt)
	}
	receipt := core.EncodeReceipt(mime.String(), data)
	if !core.ValidReceipt(receipt) {
		return "", fmt.Errorf("receipt %s is larger than %d KiB once encoded: %w",
			filepath.Base(path), core.MaxReceiptLength>>10, core.ErrInvalidReceipt)
	}
	return receipt, nil
}

func cashCmd(b cashBook) *cobra.Command {
	cmd := &cobra.Command{
		Use:     b.use,
		Aliases: []string{b.alias},
		Short:   fmt.Sprintf("Manage %s entries", b.noun),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s entries, newest first", b.noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			year, month := 0, 0
			if all, _ := cmd.Flags().GetBool("all"); !all {
				var err error
				if year, month, err = period(cmd); err != nil {
					return err
				}
			}
			rows := b.list(year, month)
			w := newTable(cmd)
			fmt.Fprintln(w, "ID\tTANGGAL\tDESKRIPSI\tJUMLAH")
			var total core.Money
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Date, r.Description, r.Amount)
				total.Rupiah += r.Amount.Rupiah
			}
			fmt.Fprintf(w, "\t\tTOTAL\t%s\n", total)
			return w.Flush()
		},
	}
	addPeriodFlags(list)
	list.Flags().Bool("all", false, "List every month")

	var in services.CashEntryInput
	add := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Record an %s", b.noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			if path, _ := cmd.Flags().GetString("receipt-file"); path != "" {
				receipt, err := readReceipt(path)
				if err != nil {
					return err
				}
				in.Receipt = receipt
			}
			r, err := b.add(cmd.Context(), in)
			if err != nil {
				if fields := services.FieldErrors(err); fields != nil {
					return fmt.Errorf("invalid input: %v", fields)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s on %s (%s)\n", b.noun, r.Amount, r.Date, r.ID)
			return nil
		},
	}
	add.Flags().StringVar(&in.Date, "date", "", "Date (YYYY-MM-DD)")
	add.Flags().StringVar(&in.Description, "description", "", "Description")
	add.Flags().StringVar(&in.Amount, "amount", "", "Amount, e.g. 150.000")
	if b.use == expenseBook.use {
		add.Flags().StringVar(&in.Receipt, "receipt", "", "Receipt image as a base64 data URL")
		add.Flags().String("receipt-file", "", "Receipt image file (JPEG, PNG, ...) to embed")
		add.MarkFlagsMutuallyExclusive("receipt", "receipt-file")
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Remove an %s entry", b.noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			if !confirm(cmd, fmt.Sprintf("Delete %s %s?", b.noun, args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			if err := b.remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", b.noun, args[0])
			return nil
		},
	}
	addYesFlag(del)

	cmd.AddCommand(list, add, del)
	return cmd
}
