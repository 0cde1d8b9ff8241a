package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/sales-crm/internal/domain"
)

var visibleUser string

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Inspect the reporting hierarchy",
}

var directoryCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the reporting hierarchy and summarize it",
	Long: `Loads every user and runs the same validation the API performs at startup:
unknown managers, self-reports, cycles and rank violations are reported and the
command exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: runDirectoryCheck,
}

var visibleCmd = &cobra.Command{
	Use:   "visible",
	Short: "List the users whose records a user can see",
	Args:  cobra.NoArgs,
	RunE:  runVisible,
}

func runDirectoryCheck(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	dir, err := e.loadDirectory(cmd.Context())
	if err != nil {
		return err
	}

	byRole := map[domain.Role]int{}
	var roots []string
	users := dir.Users()
	for _, u := range users {
		byRole[u.Role]++
		if !u.HasManager() {
			roots = append(roots, u.ID)
		}
	}
	sort.Strings(roots)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "directory OK: %d users, %d roots %v\n", len(users), len(roots), roots)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, role := range domain.Roles() {
		fmt.Fprintf(tw, "  %s\t%d\n", role, byRole[role])
	}
	return tw.Flush()
}

func runVisible(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	dir, err := e.loadDirectory(cmd.Context())
	if err != nil {
		return err
	}
	users, err := dir.VisibleUsers(visibleUser)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s can see %d users\n", visibleUser, len(users))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\tREPORTS TO")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Role, u.ReportsTo)
	}
	return tw.Flush()
}
