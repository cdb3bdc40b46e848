package main

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"warga/internal/core"
)

// confirm asks for a y/N answer unless --yes was given.
func confirm(cmd *cobra.Command, question string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", question)
	answer := readLine(cmd)
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

func readLine(cmd *cobra.Command) string {
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(line)
}

func addYesFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
}

// addPeriodFlags registers --year and --month defaulting to the current
// month.
func addPeriodFlags(cmd *cobra.Command) {
	now := time.Now()
	cmd.Flags().Int("year", now.Year(), "Year")
	cmd.Flags().Int("month", int(now.Month()), "Month (1-12)")
}

func period(cmd *cobra.Command) (int, int, error) {
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	if !core.ValidPeriod(year, month) {
		return 0, 0, fmt.Errorf("%d-%02d: %w", year, month, core.ErrInvalidMonth)
	}
	return year, month, nil
}

func requireStaff() (core.User, error) {
	return app.Auth.Require(core.RoleAdmin, core.RoleTreasurer)
}

func requireAdmin() (core.User, error) {
	return app.Auth.Require(core.RoleAdmin)
}

func orPlaceholder(s string) string {
	if s == "" {
		return core.Placeholder
	}
	return s
}
