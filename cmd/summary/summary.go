// Package summary prints the spend summary of an already categorized file
package summary

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"fjacquet/rabbit/cmd/root"
	"fjacquet/rabbit/internal/common"
	"fjacquet/rabbit/internal/container"
	"fjacquet/rabbit/internal/report"

	"github.com/spf13/cobra"
)

var (
	input       string
	profileName string
	password    string
	format      string
)

// Cmd represents the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize a categorized CSV against the profile budgets",
	Long: `Read a Description,Amount,Category file written by "rabbit process" and print
the spend per category with the remaining budget.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Execute(cmd.Context(), root.App(), input, profileName, password, format, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&input, "input", "i", "", "Categorized CSV (local path or gs://)")
	Cmd.Flags().StringVarP(&profileName, "profile", "p", "", "Profile whose budgets are used")
	Cmd.Flags().StringVar(&password, "password", "", "Password of a private profile")
	Cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "Output format (text, json, yaml)")
	_ = Cmd.MarkFlagRequired("input")
	_ = Cmd.MarkFlagRequired("profile")
}

// Execute renders the summary of input for profile.
func Execute(ctx context.Context, c *container.Container, input, profile, password, format string, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("application is not initialized")
	}
	s := c.GetStore()
	if err := root.Authorize(ctx, s, profile, password); err != nil {
		return err
	}

	data, err := c.GetStorage().Get(ctx, input)
	if err != nil {
		return err
	}
	transactions, err := common.ReadCategorizedCSV(bytes.NewReader(data))
	if err != nil {
		return err
	}
	categories, err := s.ListCategories(ctx, profile)
	if err != nil {
		return err
	}

	rendered, err := c.GetReportGenerator().GenerateReport(report.Summarize(profile, categories, transactions), format)
	if err != nil {
		return err
	}
	root.Printf(out, "%s", rendered)
	return nil
}
