// Command semacheck runs the naming and typing passes over a YAML fixture
// AST and reports the resulting diagnostics.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/corvid-lang/sema/internal/driver"
)

func main() {
	app := &cli.App{
		Name:  "semacheck",
		Usage: "run semantic analysis over a fixture AST",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "color", Usage: "colorize diagnostic output"},
		},
		Commands: []*cli.Command{
			{
				Name:      "names",
				Usage:     "run name resolution only",
				ArgsUsage: "<fixture.yaml>",
				Action:    runTarget(driver.TargetNameResolution),
			},
			{
				Name:      "check",
				Usage:     "run name resolution and type checking",
				ArgsUsage: "<fixture.yaml>",
				Action:    runTarget(driver.TargetTypeCheck),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
		os.Exit(1)
	}
}

func runTarget(target driver.Target) cli.ActionFunc {
	return func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			return cli.Exit(color.RedString("Error: no fixture file specified"), 1)
		}

		prog, err := driver.LoadFixture(path)
		if err != nil {
			return cli.Exit(color.RedString("Error loading fixture: %s", err), 1)
		}

		res := driver.Run(prog, driver.Options{Target: target})

		formatted := res.Diag.Format()
		if c.Bool("color") {
			formatted = res.Diag.FormatColored()
		}
		if formatted != "" {
			fmt.Println(formatted)
		}

		if res.HasErrors() {
			fmt.Fprintln(os.Stderr, color.RedString("%d error(s)", res.Diag.Count()))
			return cli.Exit("", 1)
		}
		fmt.Fprintln(os.Stderr, color.GreenString("ok"))
		return nil
	}
}
