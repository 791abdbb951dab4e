package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"wisp/internal/chunk"
	"wisp/internal/interp"
	"wisp/internal/intern"
	"wisp/internal/store"
	"wisp/internal/vm"
)

const Version = "v0.1.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Println("Recovered from panic:", r)
			debug.PrintStack()
		}
	}()

	trace := flag.Bool("trace", false, "Log every executed instruction and stack state")
	disassemble := flag.Bool("disassemble", false, "Print bytecode disassembly before running")
	stats := flag.Bool("stats", false, "Print compile/run timing and chunk size after execution")
	persistPath := flag.String("persist", "", "Persist globals to a sqlite database at this path")
	persistTable := flag.String("persist-dynamodb", "", "Persist globals to this DynamoDB table")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wisp [options] [file]\n\nOptions:\n")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  --%s\n\t%s\n", f.Name, f.Usage)
		})
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("wisp %s\n", Version)
		return
	}

	if *trace {
		logrus.SetLevel(logrus.DebugLevel)
	}

	globalsStore, closeStore, err := openGlobalsStore(*persistPath, *persistTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	if closeStore != nil {
		defer closeStore()
	}

	opts := interp.Options{Trace: *trace, Store: globalsStore}

	args := flag.Args()
	if len(args) < 1 {
		runREPL(opts, *disassemble, *stats)
		return
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "error: expected at most one file argument, got %d\n", len(args))
		os.Exit(64)
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %s\n", args[0], err)
		os.Exit(1)
	}
	if !runFile(opts, string(content), *disassemble, *stats) {
		os.Exit(1)
	}
}

// openGlobalsStore opens whichever persistence backend the user
// selected. At most one of --persist / --persist-dynamodb may be set;
// neither means globals live only in process memory. The backend gets
// its own intern table: it only ever compares strings by value (see
// store.SQLiteStore.Load/Store), never by handle, so sharing a table
// with the interpreter isn't necessary.
func openGlobalsStore(sqlitePath, dynamoTable string) (vm.GlobalsStore, func(), error) {
	switch {
	case sqlitePath != "" && dynamoTable != "":
		return nil, nil, fmt.Errorf("--persist and --persist-dynamodb are mutually exclusive")
	case sqlitePath != "":
		s, err := store.OpenSQLite(sqlitePath, intern.New())
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case dynamoTable != "":
		s, err := store.OpenDynamoDB(context.Background(), dynamoTable, intern.New())
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureTable(context.Background()); err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		return nil, nil, nil
	}
}

func runFile(opts interp.Options, source string, disassemble, showStats bool) bool {
	in := interp.New(opts)

	compileStart := time.Now()
	c, err := in.Compile(source)
	compileElapsed := time.Since(compileStart)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}

	if disassemble {
		fmt.Print(in.Disassemble("main", c))
	}

	runStart := time.Now()
	runErr := in.RunChunk(c)
	runElapsed := time.Since(runStart)

	if showStats {
		printStats(c, compileElapsed, runElapsed)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		return false
	}
	return true
}

func printStats(c *chunk.Chunk, compileElapsed, runElapsed time.Duration) {
	fmt.Fprintf(os.Stderr, "compile: %s, run: %s, code: %s, constants: %s\n",
		compileElapsed, runElapsed,
		humanize.Bytes(uint64(len(c.Code))),
		humanize.Comma(int64(len(c.Constants))))
}

func runREPL(opts interp.Options, disassemble, showStats bool) {
	fmt.Printf("wisp %s\n", Version)
	fmt.Println("Type 'exit' to quit.")

	in := interp.New(opts)
	reader := bufio.NewScanner(os.Stdin)

	prompt := "> "
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		prompt = ""
	}

	for {
		if prompt != "" {
			fmt.Print(prompt)
		}
		if !reader.Scan() {
			break
		}
		line := reader.Text()
		if strings.TrimSpace(line) == "exit" {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		compileStart := time.Now()
		c, err := in.Compile(line)
		compileElapsed := time.Since(compileStart)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if disassemble {
			fmt.Print(in.Disassemble("repl", c))
		}

		runStart := time.Now()
		runErr := in.RunChunk(c)
		if showStats {
			printStats(c, compileElapsed, time.Since(runStart))
		}
		if runErr != nil {
			fmt.Println(runErr)
		}
	}
}
