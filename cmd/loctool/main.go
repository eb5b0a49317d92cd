// Command loctool is an aux-table inspection and config-validation CLI,
// grounded on de-bkg-gognss/cmd/rnxgo/rnxgo.go's urfave/cli/v2 App/Command
// structure (SPEC_FULL.md §10). Unlike cmd/locate, which runs a single
// location, loctool is for the surrounding maintenance tasks: printing the
// production-default config, validating a config file before a batch run,
// and unpacking a distributed aux-data bundle.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/quakelocate/iloc-go/internal/auxdata"
	"github.com/quakelocate/iloc-go/internal/config"
)

func main() {
	app := &cli.App{
		Name:      "loctool",
		Usage:     "iloc-go aux-table and configuration inspection tool",
		Version:   "v0.1.0",
		Compiled:  time.Now(),
		HelpName:  "loctool",
		Commands: []*cli.Command{
			defaultsCommand(),
			validateCommand(),
			unpackBundleCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("loctool: %v", err)
	}
}

func defaultsCommand() *cli.Command {
	return &cli.Command{
		Name:      "defaults",
		Usage:     "print the production-default configuration as JSON",
		ArgsUsage: " ",
		Action: func(c *cli.Context) error {
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(config.Defaults())
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate a config JSON file against the recognized option set",
		ArgsUsage: "<config.json>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("validate: exactly one config file path is required", 1)
			}
			cfg, err := config.Load(c.Args().Get(0))
			if err != nil {
				return cli.Exit(fmt.Sprintf("validate: %v", err), 1)
			}
			fmt.Fprintf(c.App.Writer, "ok: %s is valid (ttime_table=%s, confidence_level=%.2f)\n",
				c.Args().Get(0), cfg.TTimeTable, cfg.ConfidenceLevel)
			return nil
		},
	}
}

func unpackBundleCommand() *cli.Command {
	return &cli.Command{
		Name:      "unpack-bundle",
		Usage:     "unpack a distributed aux-data archive (.tar.gz of TT tables, ellipticity coefficients, ETOPO, depth grid) into a directory",
		ArgsUsage: "<archive> <dest-dir>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("unpack-bundle: requires an archive path and a destination directory", 1)
			}
			if err := auxdata.UnpackBundle(c.Args().Get(0), c.Args().Get(1)); err != nil {
				return cli.Exit(fmt.Sprintf("unpack-bundle: %v", err), 1)
			}
			fmt.Fprintf(c.App.Writer, "unpacked %s into %s\n", c.Args().Get(0), c.Args().Get(1))
			return nil
		},
	}
}
