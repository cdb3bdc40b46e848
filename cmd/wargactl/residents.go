package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"warga/internal/core"
)

func residentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "residents",
		Aliases: []string{"warga"},
		Short:   "Manage the resident registry",
	}
	cmd.AddCommand(residentsListCmd())
	cmd.AddCommand(residentsAddCmd())
	cmd.AddCommand(residentsDeleteCmd())
	return cmd
}

func residentsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List residents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			q, _ := cmd.Flags().GetString("search")
			page, _ := cmd.Flags().GetInt("page")
			p := app.Residents.List(q, page)

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\tNAMA\tNO KK\tHUBUNGAN\tRUMAH\tKATEGORI")
			for _, r := range p.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Name, r.HouseholdID, r.Relationship, orPlaceholder(r.Unit), orPlaceholder(string(r.Category)))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d residents)\n", p.Page, max(p.TotalPages, 1), p.TotalItems)
			return nil
		},
	}
	cmd.Flags().StringP("search", "q", "", "Filter by name, NIK, KK or house number")
	cmd.Flags().Int("page", 1, "Page number")
	return cmd
}

func residentsAddCmd() *cobra.Command {
	var in core.Resident
	var sex, birth, category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a resident",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			switch strings.ToUpper(strings.TrimSpace(sex)) {
			case "L", "LAKI-LAKI":
				in.Sex = core.Male
			case "P", "PEREMPUAN":
				in.Sex = core.Female
			default:
				return fmt.Errorf("invalid sex %q: use L or P", sex)
			}
			d, err := core.ParseDate(birth)
			if err != nil {
				return fmt.Errorf("birth date %q: %w", birth, err)
			}
			in.BirthDate = d
			in.Category = core.Category(strings.ToUpper(category))

			saved, err := app.Residents.Save(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", saved.Name, saved.ID)
			if saved.Relationship == core.HeadOfHousehold && category == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "No category given; household uses %s\n", saved.Category)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "Full name")
	f.StringVar(&in.HouseholdID, "kk", "", "Household (KK) number, 16 digits")
	f.StringVar(&in.NIK, "nik", "", "NIK, 16 digits")
	f.StringVar(&sex, "sex", "", "Sex: L or P")
	f.StringVar(&in.BirthPlace, "birth-place", "", "Place of birth")
	f.StringVar(&birth, "birth-date", "", "Date of birth (YYYY-MM-DD)")
	f.StringVar(&in.Relationship, "relationship", core.HeadOfHousehold, "Relationship to the head of household")
	f.StringVar(&in.Unit, "unit", "", "House number, e.g. A1")
	f.StringVar(&in.Address, "address", "", "Address")
	f.StringVar(&category, "category", "", "Household category A-D (heads only)")
	f.StringVar(&in.Religion, "religion", "", "Religion")
	f.StringVar(&in.Education, "education", "", "Education")
	f.StringVar(&in.Occupation, "occupation", "", "Occupation")
	f.StringVar(&in.MaritalStatus, "marital-status", "", "Marital status")
	f.StringVar(&in.Phone, "phone", "", "Phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("kk")
	_ = cmd.MarkFlagRequired("nik")
	_ = cmd.MarkFlagRequired("sex")
	return cmd
}

func residentsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a resident",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			r, err := app.Residents.Get(args[0])
			if err != nil {
				return err
			}
			if !confirm(cmd, fmt.Sprintf("Delete resident %s (%s)?", r.Name, r.ID)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			if err := app.Residents.Delete(cmd.Context(), r.ID, true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", r.Name)
			return nil
		},
	}
	addYesFlag(cmd)
	return cmd
}

func householdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "households",
		Aliases: []string{"kk"},
		Short:   "List households",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireStaff(); err != nil {
				return err
			}
			q, _ := cmd.Flags().GetString("search")
			page, _ := cmd.Flags().GetInt("page")
			p := app.Residents.Households(q, page)

			w := newTable(cmd)
			fmt.Fprintln(w, "NO KK\tKEPALA KELUARGA\tRUMAH\tKATEGORI\tANGGOTA")
			for _, h := range p.Items {
				cat := string(h.Category)
				if h.CategoryFallback {
					cat += " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", h.ID, h.HeadName, h.Unit, cat, h.Members)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d households)\n", p.Page, max(p.TotalPages, 1), p.TotalItems)
			return nil
		},
	}
	cmd.Flags().StringP("search", "q", "", "Filter by head name, KK or house number")
	cmd.Flags().Int("page", 1, "Page number")
	return cmd
}
