package main

import (
	"flag"
	"fmt"
	"io"
)

type options struct {
	command string
	name    string
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.command, "command", "up", "Migration command: up, down, status, create")
	fs.StringVar(&opts.name, "name", "", "Name for 'create' command")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if err := opts.validate(); err != nil {
		fmt.Fprintln(output, err)
		fs.Usage()
		return options{}, err
	}
	return opts, nil
}

func (o options) validate() error {
	switch o.command {
	case "up", "down", "status":
	case "create":
		if o.name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, status, create", o.command)
	}
	return nil
}
