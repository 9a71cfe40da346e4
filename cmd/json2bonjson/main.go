// Command json2bonjson converts a JSON text document to BONJSON.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kstenerud/go-bonjson/internal/jsoncodec"
)

func main() {
	app := &cli.App{
		Name:      "json2bonjson",
		Usage:     "convert a JSON text document to BONJSON",
		ArgsUsage: "[path|-]",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "json2bonjson:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = "-"
	}

	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	return jsoncodec.JSONToBONJSON(in, os.Stdout)
}
