package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/armgong/rbridge/convert"
	"github.com/armgong/rbridge/sexp"
)

func main() {
	var (
		callName    = flag.String("call", "", "Builtin to call")
		argList     = flag.String("args", "", "Comma-separated arguments (Go literals)")
		list        = flag.Bool("list", false, "List engine builtins and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *list {
		e := sexp.New()
		defer e.Close()
		names := e.Builtins()
		sort.Strings(names)
		fmt.Println("Engine builtins:")
		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}
		return
	}

	if *callName == "" {
		fmt.Fprintln(os.Stderr, "Usage: rbridge -call <builtin> [-args a,b,c]")
		fmt.Fprintln(os.Stderr, "       rbridge -list")
		fmt.Fprintln(os.Stderr, "       rbridge -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*callName, *argList); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(name, argList string) error {
	e := sexp.New()
	defer e.Close()

	fn, err := convert.Func(e, name)
	if err != nil {
		return err
	}
	defer fn.Close()

	args := parseArgs(argList)
	result, err := fn.Call(args...)
	if err != nil {
		return err
	}

	fmt.Printf("%s(%s) = %v\n", name, argList, result)
	return nil
}

// parseArgs parses comma-separated Go literals: integers, floats, booleans,
// and bare strings, each converted through the bridge on the way in.
func parseArgs(s string) []any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	args := make([]any, 0, len(parts))
	for _, p := range parts {
		args = append(args, parseLiteral(strings.TrimSpace(p)))
	}
	return args
}

func parseLiteral(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return strings.Trim(s, `"`)
}
