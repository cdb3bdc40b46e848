package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"warga/internal/core"
	"warga/internal/export"
	"warga/internal/services"
)

func recapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recap",
		Short: "Show the monthly financial recap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			year, month, err := period(cmd)
			if err != nil {
				return err
			}
			rc, err := app.Reports.Recap(year, month)
			if err != nil {
				return err
			}
			w := newTable(cmd)
			fmt.Fprintf(w, "Rekap Keuangan %s %d\t\n", core.MonthName(month), year)
			fmt.Fprintf(w, "Iuran RT\t%s\n", rc.CollectedByType[core.DuesRT])
			fmt.Fprintf(w, "Iuran PKK\t%s\n", rc.CollectedByType[core.DuesPKK])
			fmt.Fprintf(w, "Pemasukan lain\t%s\n", rc.OtherIncomeTotal)
			fmt.Fprintf(w, "Total pemasukan\t%s\n", rc.TotalIncome)
			fmt.Fprintf(w, "Total pengeluaran\t%s\n", rc.ExpenseTotal)
			fmt.Fprintf(w, "Saldo\t%s\n", rc.Balance)
			fmt.Fprintf(w, "Target iuran\t%s\n", rc.ExpectedDuesTotal)
			fmt.Fprintf(w, "Warga / KK\t%d / %d\n", rc.TotalResidents, rc.TotalHouseholds)
			return w.Flush()
		},
	}
	addPeriodFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a monthly report as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			year, month, err := period(cmd)
			if err != nil {
				return err
			}
			typeFlag, _ := cmd.Flags().GetString("type")
			formatFlag, _ := cmd.Flags().GetString("format")
			dir, _ := cmd.Flags().GetString("out")

			t, err := export.ParseReportType(typeFlag)
			if err != nil {
				return err
			}

			var files []services.Rendered
			if formatFlag == "all" {
				b, err := app.Reports.Bundle(cmd.Context(), t, year, month)
				if err != nil {
					return err
				}
				files = append(files, b.CSV, b.XLSX)
			} else {
				f, err := export.ParseFormat(formatFlag)
				if err != nil {
					return err
				}
				r, err := app.Reports.Export(cmd.Context(), t, f, year, month)
				if err != nil {
					return err
				}
				files = append(files, r)
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			for _, f := range files {
				path := filepath.Join(dir, f.FileName)
				if err := os.WriteFile(path, f.Body, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(f.Body))
			}
			return nil
		},
	}
	cmd.Flags().String("type", string(export.ReportCombined), "Report: RT, PKK or Keseluruhan")
	cmd.Flags().String("format", string(export.FormatCSV), "Format: csv, xlsx or all")
	cmd.Flags().String("out", ".", "Output directory")
	addPeriodFlags(cmd)
	return cmd
}

func publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a monthly report to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			year, month, err := period(cmd)
			if err != nil {
				return err
			}
			typeFlag, _ := cmd.Flags().GetString("type")
			t, err := export.ParseReportType(typeFlag)
			if err != nil {
				return err
			}
			ref, err := app.Reports.Publish(cmd.Context(), t, year, month)
			if errors.Is(err, services.ErrPublishingDisabled) {
				return fmt.Errorf("%w: set GOOGLE_SPREADSHEET_ID and a service account", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published to %s\n", ref)
			return nil
		},
	}
	cmd.Flags().String("type", string(export.ReportCombined), "Report: RT, PKK or Keseluruhan")
	addPeriodFlags(cmd)
	return cmd
}

func listsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Manage the option lists offered on resident forms",
	}

	show := &cobra.Command{
		Use:   "show [category]",
		Short: "Show one list or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			cats := core.AdminListCategories
			if len(args) == 1 {
				cats = []core.AdminListCategory{core.AdminListCategory(args[0])}
			}
			out := cmd.OutOrStdout()
			for _, c := range cats {
				items, err := app.Lists.Get(c)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%s)\n", core.AdminListLabels[c], c)
				for _, item := range items {
					fmt.Fprintf(out, "  %s\n", item)
				}
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <category> <item>",
		Short: "Add an option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			if err := app.Lists.Add(cmd.Context(), core.AdminListCategory(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s\n", args[1], args[0])
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <category> <item>",
		Short: "Remove an option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			if err := app.Lists.Remove(cmd.Context(), core.AdminListCategory(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %s\n", args[1], args[0])
			return nil
		},
	}

	cmd.AddCommand(show, add, remove)
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a small sample neighborhood",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			if !confirm(cmd, "Add sample residents, payments and cash entries?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			sum, err := services.Seed(cmd.Context(), app)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d residents, %d payments, %d expenses, %d incomes\n",
				sum.Residents, sum.Payments, sum.Expenses, sum.Incomes)
			return nil
		},
	}
	addYesFlag(cmd)
	return cmd
}
