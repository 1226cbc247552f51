// Command respconv converts between RESP and other document formats.
//
// Settings are read from a .env file in the working directory, from RESPCONV_* environment variables and from
// command line flags, in increasing order of precedence.
//
// Usage:
//
//	respconv <command> [flags] [file]
//
// Commands:
//
//	encode   Convert a JSON, YAML, CBOR or MessagePack document to RESP
//	decode   Convert RESP values to JSON, YAML, CBOR or MessagePack
//	inspect  Show RESP values in redis-cli style
//	shell    Start an interactive shell
//
// Examples:
//
//	# Encode a JSON document
//	echo '{"name":"Alice","age":30}' | respconv encode
//
//	# Decode a capture of server replies to YAML
//	respconv decode -to yaml replies.resp
//
//	# Show a reply
//	printf '*2\r\n$3\r\nfoo\r\n:1\r\n' | respconv inspect
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nussjustin/respcodec/cmd/respconv/commands"
)

const usage = `respconv - RESP converter

Usage:
  respconv <command> [flags] [file]

Commands:
  encode   Convert a JSON, YAML, CBOR or MessagePack document to RESP
  decode   Convert RESP values to JSON, YAML, CBOR or MessagePack
  inspect  Show RESP values in redis-cli style
  shell    Start an interactive shell

Input is read from stdin if no file is given.

Use "respconv <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "encode":
		runEncode(args)
	case "decode":
		runDecode(args)
	case "inspect":
		runInspect(args)
	case "shell":
		runShell(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func loadConfig() *commands.Config {
	// a missing .env file is not an error
	_ = godotenv.Load()

	cfg := commands.NewConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		fatal(err)
	}
	return cfg
}

// parseFlags parses args and applies the -env and -log-level flags shared by all commands.
func parseFlags(fs *flag.FlagSet, cfg *commands.Config, args []string) *slog.Logger {
	envFile := fs.String("env", "", "Load settings from the given .env file")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *envFile != "" {
		if err := cfg.LoadFromFile(*envFile); err != nil {
			fatal(err)
		}
	}
	if *logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
			fatal(err)
		}
	}
	return commands.NewLogger(os.Stderr, cfg.LogLevel)
}

func openInput(fs *flag.FlagSet) io.ReadCloser {
	switch fs.NArg() {
	case 0:
		return io.NopCloser(os.Stdin)
	case 1:
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fatal(fmt.Errorf("failed to open input: %w", err))
		}
		return f
	default:
		fmt.Fprintln(os.Stderr, "Error: at most one input file allowed")
		fs.Usage()
		os.Exit(1)
		return nil
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runEncode(args []string) {
	cfg := loadConfig()

	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `respconv encode - Convert a document to RESP

Usage:
  respconv encode [flags] [file]

Flags:
`)
		fs.PrintDefaults()
	}

	from := fs.String("from", "", "Input format ("+strings.Join(commands.FormatNames(), ", ")+")")
	logger := parseFlags(fs, cfg, args)

	if *from != "" {
		cfg.Format = *from
	}

	in := openInput(fs)
	defer in.Close()

	if err := commands.RunEncode(in, os.Stdout, cfg.Format, logger); err != nil {
		fatal(err)
	}
}

func runDecode(args []string) {
	cfg := loadConfig()

	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `respconv decode - Convert RESP values to documents

Usage:
  respconv decode [flags] [file]

Flags:
`)
		fs.PrintDefaults()
	}

	to := fs.String("to", "", "Output format ("+strings.Join(commands.FormatNames(), ", ")+")")
	maxDepth := fs.Int("max-depth", 0, "Maximum nesting depth of aggregates")
	logger := parseFlags(fs, cfg, args)

	if *to != "" {
		cfg.Format = *to
	}
	if *maxDepth > 0 {
		cfg.MaxDepth = *maxDepth
	}

	in := openInput(fs)
	defer in.Close()

	if err := commands.RunDecode(in, os.Stdout, cfg.Format, cfg.MaxDepth, logger); err != nil {
		fatal(err)
	}
}

func runInspect(args []string) {
	cfg := loadConfig()

	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `respconv inspect - Show RESP values in redis-cli style

Usage:
  respconv inspect [flags] [file]

Flags:
`)
		fs.PrintDefaults()
	}

	maxDepth := fs.Int("max-depth", 0, "Maximum nesting depth of aggregates")
	logger := parseFlags(fs, cfg, args)

	if *maxDepth > 0 {
		cfg.MaxDepth = *maxDepth
	}

	in := openInput(fs)
	defer in.Close()

	if err := commands.RunInspect(in, os.Stdout, cfg.MaxDepth, logger); err != nil {
		fatal(err)
	}
}

func runShell(args []string) {
	cfg := loadConfig()

	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `respconv shell - Start an interactive shell

Usage:
  respconv shell [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	prompt := fs.String("prompt", "", "Prompt shown before each command")
	logger := parseFlags(fs, cfg, args)

	if *prompt != "" {
		cfg.Prompt = *prompt
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := commands.RunShell(ctx, cfg, logger); err != nil {
		fatal(err)
	}
}
