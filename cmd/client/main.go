// Package main is the pipe filter client. It sends one string to a running
// server and prints the filtered result.
//
// Usage:
//
//	./client -s <string> -f <filter>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GriffinCanCode/pipefilter/internal/client"
	"github.com/GriffinCanCode/pipefilter/internal/fifo"
	"github.com/GriffinCanCode/pipefilter/internal/filter"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/config"
)

// maxArgs counts the program name and both flag/value pairs.
const maxArgs = 5

func main() {
	os.Exit(run(os.Args, os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	prog := args[0]
	if len(args) > maxArgs {
		usage(stdout, prog)
		return 1
	}

	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	input := fs.String("s", "", "The string to be transformed")
	filterName := fs.String("f", "", "The filter type")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() > 0 {
		usage(stdout, prog)
		return 1
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["s"] || !set["f"] {
		usage(stdout, prog)
		return 1
	}

	if *input == "" {
		fmt.Fprintln(stdout, "Error: The string is empty.")
		usage(stdout, prog)
		return 1
	}
	if !filter.Valid(*filterName) {
		fmt.Fprintf(stdout, "Error: Invalid filter type '%s'.\n", *filterName)
		usage(stdout, prog)
		return 1
	}

	cfg := config.LoadOrDefault()
	pair := fifo.Pair{
		RequestPath:  cfg.Pipes.RequestPath,
		ResponsePath: cfg.Pipes.ResponsePath,
		Perm:         cfg.Pipes.Perm,
	}

	resp, err := client.Call(context.Background(), pair, *input, *filterName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Processed string: %s\n", resp)
	return 0
}

func usage(w io.Writer, prog string) {
	fmt.Fprintf(w, "Usage: %s -s <string> -f <filter>\n", prog)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -s <string>    The string to be transformed")
	fmt.Fprintf(w, "  -f <filter>    The filter type (%s)\n", strings.Join(filter.Names(), ", "))
}
