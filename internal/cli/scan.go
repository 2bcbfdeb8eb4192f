package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slngraph/internal/config"
	"github.com/matzehuels/slngraph/pkg/pipeline"
)

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <solution>",
		Short: "Scan a solution and write its dependency graph",
		Long: `Scan every project of a solution and write the dependency graph.

The argument is a solution file (.sln, .slnx, go.work, go.mod, Cargo.toml)
or a directory containing one. The DOT file is always written; --format
adds rendered images (svg, png) or a JSON report next to it.

Projects that fail to load are reported as warnings and left out of the
graph. The command fails only if every project failed.`,
		Example: `  slngraph scan ./Shop.sln
  slngraph scan . -f svg,json -o graph.dot --rankdir LR`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return c.runScan(cmd.Context(), args[0], cfg)
		},
	}

	addScanFlags(cmd.Flags())
	return cmd
}

func (c *CLI) runScan(ctx context.Context, path string, cfg *config.Config) error {
	opener, err := c.newOpener()
	if err != nil {
		return err
	}
	host, kind, err := opener.Open(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %s...", host.Solution.Name()))
	spinner.Start()

	res, err := runner.Run(ctx, host, cfg.PipelineOptions())
	if err != nil {
		spinner.StopWithError("Scan failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Scanned %d projects", res.Stats.Projects+res.Stats.Failed))

	printSuccess("Dependency graph of %s", StyleHighlight.Render(host.Solution.Name()))
	printKeyValue("host", string(kind))
	printKeyValue("scan", res.ScanID.String())
	printResult(res)
	if _, ok := res.Outputs[pipeline.FormatSVG]; !ok {
		printNextStep("Open it in a browser", fmt.Sprintf("%s serve %s", appName, path))
	}
	return nil
}
