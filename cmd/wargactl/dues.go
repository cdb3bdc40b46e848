package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"warga/internal/core"
)

func arrearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "arrears <noKK>",
		Short: "Show unpaid dues of the last six months",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Dues.Arrears(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s), kategori %s\n", a.HeadName, a.HouseholdID, a.Category)
			if len(a.Lines) == 0 {
				fmt.Fprintln(out, "Tidak ada tunggakan")
				return nil
			}
			w := newTable(cmd)
			fmt.Fprintln(w, "BULAN\tIURAN RT\tIURAN PKK")
			for _, l := range a.Lines {
				fmt.Fprintf(w, "%s %d\t%s\t%s\n", l.MonthName, l.Year, owed(l.RT), owed(l.PKK))
			}
			fmt.Fprintf(w, "TOTAL\t\t%s\n", a.Total)
			return w.Flush()
		},
	}
}

func owed(m *core.Money) string {
	if m == nil {
		return "lunas"
	}
	return m.String()
}

func payCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <noKK>",
		Short: "Record a dues payment at the current rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			year, month, err := period(cmd)
			if err != nil {
				return err
			}
			typ, _ := cmd.Flags().GetString("type")
			p, err := app.Dues.RecordPayment(cmd.Context(), core.PaymentKey{
				HouseholdID: strings.TrimSpace(args[0]),
				Year:        year,
				Month:       month,
				Type:        core.DuesType(strings.ToUpper(typ)),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s %d for %s: %s\n",
				core.DuesLabels[p.Type], core.MonthName(p.Month), p.Year, p.HouseholdID, p.Amount)
			return nil
		},
	}
	cmd.Flags().String("type", string(core.DuesRT), "Dues type: RT or PKK")
	addPeriodFlags(cmd)
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show which households paid for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			year, month, err := period(cmd)
			if err != nil {
				return err
			}
			q, _ := cmd.Flags().GetString("search")
			page, _ := cmd.Flags().GetInt("page")
			p, err := app.Dues.History(year, month, q, page)
			if err != nil {
				return err
			}
			w := newTable(cmd)
			fmt.Fprintln(w, "NO KK\tKEPALA KELUARGA\tRUMAH\tRT\tPKK")
			for _, s := range p.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.HouseholdID, s.HeadName, s.Unit, status(s.RT), status(s.PKK))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringP("search", "q", "", "Filter by head name")
	cmd.Flags().Int("page", 1, "Page number")
	addPeriodFlags(cmd)
	return cmd
}

func status(s core.DuesStatus) string {
	if !s.Paid {
		return "belum"
	}
	if s.PaidAt != nil {
		return "lunas " + s.PaidAt.Format("2006-01-02")
	}
	return "lunas"
}

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show or change the monthly dues per category",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			rates := app.Dues.Rates()
			w := newTable(cmd)
			fmt.Fprintln(w, "KATEGORI\tIURAN RT\tIURAN PKK")
			for _, c := range core.Categories {
				r := rates.For(c)
				fmt.Fprintf(w, "%s\t%s\t%s\n", c, r.RT, r.PKK)
			}
			return w.Flush()
		},
	}

	set := &cobra.Command{
		Use:   "set <category>",
		Short: "Change the rates of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			c := core.Category(strings.ToUpper(args[0]))
			if !c.Valid() {
				return fmt.Errorf("category %q: %w", args[0], core.ErrInvalidCategory)
			}
			rates := app.Dues.Rates().Clone()
			r := rates.For(c)
			for flag, dst := range map[string]*core.Money{"rt": &r.RT, "pkk": &r.PKK} {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				v, _ := cmd.Flags().GetString(flag)
				if strings.TrimSpace(v) == "0" {
					*dst = core.Rp(0)
					continue
				}
				n, err := core.ParseRupiah(v)
				if err != nil {
					return fmt.Errorf("--%s %q: %w", flag, v, err)
				}
				*dst = core.Rp(n)
			}
			rates[c] = r
			if err := app.Dues.SetRates(cmd.Context(), rates); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Kategori %s: RT %s, PKK %s\n", c, r.RT, r.PKK)
			return nil
		},
	}
	set.Flags().String("rt", "", "Monthly RT dues, e.g. 75.000")
	set.Flags().String("pkk", "", "Monthly PKK dues, e.g. 15.000")

	cmd.AddCommand(show, set)
	return cmd
}
