// Package category manages the spending categories of a profile
package category

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/rabbit/cmd/root"
	"fjacquet/rabbit/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	profileName string
	password    string
	budget      string
	rename      string
)

// Cmd represents the category command
var Cmd = &cobra.Command{
	Use:   "category",
	Short: "Manage the categories of a profile",
	Long:  `List, add, update and delete spending categories and their optional monthly budget.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories with their budget",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return List(cmd.Context(), root.App().GetStore(), profileName, password, cmd.OutOrStdout())
	},
}

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Add(cmd.Context(), root.App().GetStore(), profileName, password, args[0], budget, cmd.OutOrStdout())
	},
}

var updateCmd = &cobra.Command{
	Use:   "update NAME",
	Short: "Rename a category or change its budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Update(cmd.Context(), root.App().GetStore(), profileName, password, args[0], rename, budget, cmd.OutOrStdout())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Delete(cmd.Context(), root.App().GetStore(), profileName, password, args[0], cmd.OutOrStdout())
	},
}

func init() {
	Cmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "Profile name")
	Cmd.PersistentFlags().StringVar(&password, "password", "", "Password of a private profile")
	_ = Cmd.MarkPersistentFlagRequired("profile")
	addCmd.Flags().StringVarP(&budget, "budget", "b", "0", "Monthly budget, 0 for none")
	updateCmd.Flags().StringVarP(&budget, "budget", "b", "0", "Monthly budget, 0 for none")
	updateCmd.Flags().StringVar(&rename, "rename", "", "New category name")
	Cmd.AddCommand(listCmd, addCmd, updateCmd, deleteCmd)
}

// ParseBudget reads a non-negative amount. Empty means no budget.
func ParseBudget(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid budget %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("budget must not be negative: %s", s)
	}
	return d, nil
}

// List prints the categories of a profile.
func List(ctx context.Context, s *store.SQLStore, profile, password string, out io.Writer) error {
	if err := root.Authorize(ctx, s, profile, password); err != nil {
		return err
	}
	categories, err := s.ListCategories(ctx, profile)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	root.Printf(tw, "Category\tBudget\t\n")
	for _, c := range categories {
		b := "-"
		if c.Budget.IsPositive() {
			b = c.Budget.StringFixed(2)
		}
		root.Printf(tw, "%s\t%s\t\n", c.Name, b)
	}
	return tw.Flush()
}

// Add creates a category.
func Add(ctx context.Context, s *store.SQLStore, profile, password, name, rawBudget string, out io.Writer) error {
	if err := root.Authorize(ctx, s, profile, password); err != nil {
		return err
	}
	b, err := ParseBudget(rawBudget)
	if err != nil {
		return err
	}
	c, err := s.CreateCategory(ctx, profile, name, b)
	if err != nil {
		return err
	}
	root.Printf(out, "Category %s added\n", c.Name)
	return nil
}

// Update renames a category and sets its budget. An empty newName keeps the name.
func Update(ctx context.Context, s *store.SQLStore, profile, password, name, newName, rawBudget string, out io.Writer) error {
	if err := root.Authorize(ctx, s, profile, password); err != nil {
		return err
	}
	b, err := ParseBudget(rawBudget)
	if err != nil {
		return err
	}
	if newName == "" {
		newName = name
	}
	c, err := s.UpdateCategory(ctx, profile, name, newName, b)
	if err != nil {
		return err
	}
	root.Printf(out, "Category %s updated\n", c.Name)
	return nil
}

// Delete removes a category. Rules pointing at it are kept.
func Delete(ctx context.Context, s *store.SQLStore, profile, password, name string, out io.Writer) error {
	if err := root.Authorize(ctx, s, profile, password); err != nil {
		return err
	}
	if err := s.DeleteCategory(ctx, profile, name); err != nil {
		return err
	}
	root.Printf(out, "Category %s deleted\n", name)
	return nil
}
