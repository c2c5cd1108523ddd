package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/5l1v3r1/expresso/internal/ast"
	"github.com/5l1v3r1/expresso/internal/config"
	"github.com/5l1v3r1/expresso/internal/diag"
	"github.com/5l1v3r1/expresso/internal/infer"
	"github.com/5l1v3r1/expresso/internal/parser"
	"github.com/5l1v3r1/expresso/internal/resolve"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-L dir]... [--print-ast] [--print-type] <file>\n", os.Args[0])
}

func isSourceFile(path string) bool {
	return config.HasSourceExt(path)
}

func colorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func reportError(err *diag.Error) {
	if colorEnabled() {
		fmt.Fprintf(os.Stderr, "\033[31m%s\033[39m\n", err.Error())
	} else {
		fmt.Fprintln(os.Stderr, err.Error())
	}
}

type options struct {
	libDirs   []string
	printAST  bool
	printType bool
	file      string
}

func parseArgs(args []string) (options, error) {
	var o options
	i := 0
	for i < len(args) {
		a := args[i]
		switch {
		case a == "-L" || a == "--lib":
			if i+1 >= len(args) {
				return o, fmt.Errorf("%s requires a directory argument", a)
			}
			o.libDirs = append(o.libDirs, args[i+1])
			i += 2
		case strings.HasPrefix(a, "-L"):
			o.libDirs = append(o.libDirs, strings.TrimPrefix(a, "-L"))
			i++
		case a == "--print-ast":
			o.printAST = true
			i++
		case a == "--print-type":
			o.printType = true
			i++
		case strings.HasPrefix(a, "-"):
			return o, fmt.Errorf("unrecognized flag %q", a)
		default:
			if o.file != "" {
				return o, fmt.Errorf("unexpected extra argument %q", a)
			}
			o.file = a
			i++
		}
	}
	if o.file == "" {
		return o, fmt.Errorf("no source file given")
	}
	if !isSourceFile(o.file) {
		fmt.Fprintf(os.Stderr, "warning: %s does not have a recognized source extension (%v)\n", o.file, config.SourceFileExtensions)
	}
	return o, nil
}

func run(o options) int {
	src, err := os.ReadFile(o.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", o.file, err)
		return 1
	}

	expr, synonyms, perr := parser.Parse(o.file, string(src))
	if perr != nil {
		reportError(perr)
		return 1
	}

	resolved, allSynonyms, rerr := resolve.Resolve(o.libDirs, expr, synonyms)
	if rerr != nil {
		reportError(rerr)
		return 1
	}

	if o.printAST {
		fmt.Println(ast.Print(resolved))
	}

	synTable, terr := resolve.BuildSynonymTable(allSynonyms)
	if terr != nil {
		reportError(terr)
		return 1
	}

	scheme, ierr := infer.TypeInference(resolved, synTable)
	if ierr != nil {
		reportError(ierr)
		return 1
	}

	if o.printType {
		fmt.Println(scheme.Type.String())
	}
	return 0
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	o, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	os.Exit(run(o))
}
