// Package rule manages the keyword rules of a profile
package rule

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/rabbit/cmd/root"
	"fjacquet/rabbit/internal/models"
	"fjacquet/rabbit/internal/store"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"
)

var (
	profileName string
	password    string
	gapsOnly    bool
	newKeyword  string
)

// Cmd represents the rule command
var Cmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage the keyword rules of a profile",
	Long: `Rules map a keyword found in a transaction description to a category.
Descriptions nobody could categorize appear as rules in the NEEDS CATEGORY
category; update them to teach the next run.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in match order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return List(cmd.Context(), root.App().GetStore(), profileName, password, gapsOnly, cmd.OutOrStdout())
	},
}

var addCmd = &cobra.Command{
	Use:   "add KEYWORD CATEGORY",
	Short: "Add a rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Add(cmd.Context(), root.App().GetStore(), profileName, password, args[0], args[1], cmd.OutOrStdout())
	},
}

var updateCmd = &cobra.Command{
	Use:   "update KEYWORD CATEGORY",
	Short: "Change the category of a rule, or its keyword with --keyword",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Update(cmd.Context(), root.App().GetStore(), profileName, password, args[0], newKeyword, args[1], cmd.OutOrStdout())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete KEYWORD",
	Short: "Delete a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Delete(cmd.Context(), root.App().GetStore(), profileName, password, args[0], cmd.OutOrStdout())
	},
}

func init() {
	Cmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "Profile name")
	Cmd.PersistentFlags().StringVar(&password, "password", "", "Password of a private profile")
	_ = Cmd.MarkPersistentFlagRequired("profile")
	listCmd.Flags().BoolVar(&gapsOnly, "gaps", false, "Only list rules waiting for a category")
	updateCmd.Flags().StringVar(&newKeyword, "keyword", "", "New keyword")
	Cmd.AddCommand(listCmd, addCmd, updateCmd, deleteCmd)
}

// Closest returns the candidate nearest to name, ignoring case.
func Closest(name string, candidates []string) (string, bool) {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist >= 0
}

// checkCategory accepts a category of the profile, or one of the fixed ones.
func checkCategory(ctx context.Context, s *store.SQLStore, profile, category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == models.CategoryNeedsCategory || category == models.CategoryUncategorized {
		return category, nil
	}
	categories, err := s.ListCategories(ctx, profile)
	if err != nil {
		return "", err
	}
	names := models.CategoryNames(categories)
	for _, n := range names {
		if strings.EqualFold(n, category) {
			return n, nil
		}
	}
	if hint, ok := Closest(category, names); ok {
		return "", fmt.Errorf("unknown category %q, did you mean %q?", category, hint)
	}
	return "", fmt.Errorf("unknown category %q, add it first with: rabbit category add", category)
}

// List prints the rules of a profile in match order.
func List(ctx context.Context, s *store.SQLStore, profile, password string, gaps bool, out io.Writer) error {
	if err := root.Authorize(ctx, s, profile, password); err != nil {
		return err
	}
	rules, err := s.ListRules(ctx, profile)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	root.Printf(tw, "Keyword\tCategory\t\n")
	for _, r := range rules {
		if gaps && !r.IsGap() {
			continue
		}
		root.Printf(tw, "%s\t%s\t\n", r.Keyword, r.Category)
	}
	return tw.Flush()
}

// Add creates a rule for an existing category.
func Add(ctx context.Context, s *store.SQLStore, profile, password, keyword, category string, out io.Writer) error {
	if err := root.Authorize(ctx, s, profile, password); err != nil {
		return err
	}
	category, err := checkCategory(ctx, s, profile, category)
	if err != nil {
		return err
	}
	r, err := s.CreateRule(ctx, profile, keyword, category)
	if err != nil {
		return err
	}
	root.Printf(out, "Rule %s -> %s added\n", r.Keyword, r.Category)
	return nil
}

// Update changes a rule. An empty newKeyword keeps the keyword.
func Update(ctx context.Context, s *store.SQLStore, profile, password, keyword, newKeyword, category string, out io.Writer) error {
	if err := root.Authorize(ctx, s, profile, password); err != nil {
		return err
	}
	category, err := checkCategory(ctx, s, profile, category)
	if err != nil {
		return err
	}
	if newKeyword == "" {
		newKeyword = keyword
	}
	r, err := s.UpdateRule(ctx, profile, keyword, newKeyword, category)
	if err != nil {
		return err
	}
	root.Printf(out, "Rule %s -> %s updated\n", r.Keyword, r.Category)
	return nil
}

// Delete removes a rule.
func Delete(ctx context.Context, s *store.SQLStore, profile, password, keyword string, out io.Writer) error {
	if err := root.Authorize(ctx, s, profile, password); err != nil {
		return err
	}
	if err := s.DeleteRule(ctx, profile, keyword); err != nil {
		return err
	}
	root.Printf(out, "Rule %s deleted\n", models.NormalizeKeyword(keyword))
	return nil
}
