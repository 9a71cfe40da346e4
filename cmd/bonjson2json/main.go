// Command bonjson2json converts a BONJSON document to JSON text.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kstenerud/go-bonjson"
	"github.com/kstenerud/go-bonjson/internal/jsoncodec"
)

func main() {
	app := &cli.App{
		Name:      "bonjson2json",
		Usage:     "convert a BONJSON document to JSON text",
		ArgsUsage: "[path|-]",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bonjson2json:", diagnose(err))
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

	return jsoncodec.BONJSONToJSON(in, os.Stdout)
}

// diagnose formats a bonjson.*Error with its kind and byte offset, falling
// back to the bare error for anything else (e.g. a file-open failure).
func diagnose(err error) string {
	if e := asBonjsonError(err); e != nil {
		return fmt.Sprintf("%s at byte %d", e.Kind, e.Offset)
	}
	return err.Error()
}

// asBonjsonError walks err's Unwrap chain looking for a *bonjson.Error.
func asBonjsonError(err error) *bonjson.Error {
	for err != nil {
		if e, ok := err.(*bonjson.Error); ok {
			return e
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}
