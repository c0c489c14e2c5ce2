// Package process runs the categorization of statement files
package process

import (
	"context"
	"fmt"
	"io"

	"fjacquet/rabbit/cmd/root"
	"fjacquet/rabbit/internal/container"
	"fjacquet/rabbit/internal/mailer"
	"fjacquet/rabbit/internal/models"
	"fjacquet/rabbit/internal/processor"

	"github.com/spf13/cobra"
)

// Options holds the process command flags
type Options struct {
	Input             string
	Output            string
	InputDir          string
	OutputDir         string
	Profile           string
	Password          string
	Email             string
	Cleanup           bool
	Summary           string
	DescriptionColumn string
	AmountColumn      string
	SignConvention    string
}

var opts Options

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Categorize a statement CSV for a profile",
	Long: `Clean and categorize a bank statement export, writing Description,Amount,Category.
Outputs may be local paths or gs://bucket/object locations. With --email the run
happens in the background queue and the result is mailed as results.csv.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Execute(cmd.Context(), root.App(), opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Input statement CSV (local path or gs://)")
	Cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output CSV (local path or gs://)")
	Cmd.Flags().StringVar(&opts.InputDir, "input-dir", "", "Process every .csv file of this directory")
	Cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "Output directory for --input-dir")
	Cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "Profile whose rules and categories are used")
	Cmd.Flags().StringVar(&opts.Password, "password", "", "Password of a private profile")
	Cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "Email the result to this address")
	Cmd.Flags().BoolVar(&opts.Cleanup, "cleanup", false, "Remove input and output once the email is sent")
	Cmd.Flags().StringVar(&opts.Summary, "summary", "", "Print a spend summary (text, json, yaml)")
	Cmd.Flags().StringVar(&opts.DescriptionColumn, "description-column", "", "Description column (overrides config)")
	Cmd.Flags().StringVar(&opts.AmountColumn, "amount-column", "", "Amount column (overrides config)")
	Cmd.Flags().StringVar(&opts.SignConvention, "sign", "", "Sign convention: auto, negative, positive")
	_ = Cmd.MarkFlagRequired("profile")
}

// Execute runs the command against the wired container.
func Execute(ctx context.Context, c *container.Container, o Options, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("application is not initialized")
	}
	if err := root.Authorize(ctx, c.GetStore(), o.Profile, o.Password); err != nil {
		return err
	}

	stmtOpts := c.StatementOptions()
	if o.DescriptionColumn != "" {
		stmtOpts.DescriptionColumn = o.DescriptionColumn
	}
	if o.AmountColumn != "" {
		stmtOpts.AmountColumn = o.AmountColumn
	}
	if o.SignConvention != "" {
		sign, ok := models.ParseSignConvention(o.SignConvention)
		if !ok {
			return fmt.Errorf("invalid sign convention: %s", o.SignConvention)
		}
		stmtOpts.SignConvention = sign
	}

	if o.InputDir != "" {
		if o.OutputDir == "" {
			return fmt.Errorf("--output-dir is required with --input-dir")
		}
		results, err := c.GetProcessor().ProcessDirectory(ctx, o.InputDir, o.OutputDir, o.Profile, stmtOpts)
		if err != nil {
			return err
		}
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				root.Printf(out, "FAILED %s: %v\n", r.Input, r.Err)
				continue
			}
			root.Printf(out, "%s -> %s\n", r.Input, r.Output)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d statements failed", failed, len(results))
		}
		return nil
	}

	if o.Input == "" || o.Output == "" {
		return fmt.Errorf("--input and --output are required")
	}
	req := processor.Request{Input: o.Input, Output: o.Output, Profile: o.Profile, Options: stmtOpts}

	if o.Email != "" {
		return enqueue(ctx, c, req, o, out)
	}

	res, err := c.GetProcessor().Run(ctx, req)
	if err != nil {
		return err
	}
	root.Printf(out, "Categorized %d transactions into %s\n", len(res.Transactions), res.Destination)
	if res.Stats.NewGaps > 0 {
		root.Printf(out, "%d new descriptions need a category (see: rabbit rule list -p %s)\n", res.Stats.NewGaps, o.Profile)
	}

	if o.Summary != "" {
		text, err := c.GetReportGenerator().GenerateReport(res.Summary, o.Summary)
		if err != nil {
			return err
		}
		root.Printf(out, "%s", text)
	}
	return nil
}

func enqueue(ctx context.Context, c *container.Container, req processor.Request, o Options, out io.Writer) error {
	if !c.GetMailer().Configured() {
		return mailer.ErrIncompleteConfig
	}

	var result processor.JobResult
	q := c.NewQueue(func(r processor.JobResult) { result = r })
	q.Start(ctx)
	id, err := q.Submit(req, o.Email, o.Cleanup)
	if err != nil {
		q.Close()
		return err
	}
	root.Printf(out, "Job %s queued\n", id)
	q.Close()

	if result.Err != nil {
		return result.Err
	}
	root.Printf(out, "Sent %s to %s\n", result.Destination, o.Email)
	return nil
}
