package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slngraph/internal/config"
	slnio "github.com/matzehuels/slngraph/pkg/io"
)

// renderCommand creates the render command that redraws a saved report.
func (c *CLI) renderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <report.json>",
		Short: "Render the graph of a saved scan report",
		Long: `Render the dependency graph of a report written by 'scan -f json'
without scanning the solution again. Useful to try other formats or
layout options.`,
		Example: `  slngraph render /tmp/dependencyGraph.json -f svg --styled`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], cfg)
		},
	}

	addGraphFlags(cmd.Flags())
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, cfg *config.Config) error {
	report, err := slnio.ImportReport(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	res, err := runner.RenderRecords(ctx, report.Projects, cfg.PipelineOptions())
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	name := report.Solution
	if name == "" {
		name = input
	}
	printSuccess("Rendered %s", StyleHighlight.Render(name))
	printResult(res)
	return nil
}
