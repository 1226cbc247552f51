package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"

	"github.com/nussjustin/respcodec"
)

// ErrQuit is returned by Shell.Eval for the quit command.
var ErrQuit = errors.New("quit")

const shellHelp = `Commands:
  enc <json>        Encode a JSON document to RESP
  dec <resp>        Decode RESP to JSON (\r, \n, \t and \\ escapes are expanded)
  inspect <resp>    Show RESP in redis-cli style
  help, ?           Show this help
  quit, exit, q     Leave the shell`

var unescaper = strings.NewReplacer(`\r`, "\r", `\n`, "\n", `\t`, "\t", `\\`, `\`)

// Shell evaluates respconv commands interactively.
type Shell struct {
	dm     respcodec.DecMode
	logger *slog.Logger
}

// NewShell returns a Shell that decodes using the limits in cfg.
func NewShell(cfg *Config, logger *slog.Logger) (*Shell, error) {
	dm, err := respcodec.DecOptions{MaxNestedLevels: cfg.MaxDepth}.DecMode()
	if err != nil {
		return nil, err
	}
	return &Shell{dm: dm, logger: logger}, nil
}

// Eval executes a single command line and returns its output.
func (s *Shell) Eval(line string) (string, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return "", nil
	case "help", "?":
		return shellHelp, nil
	case "quit", "exit", "q":
		return "", ErrQuit
	case "enc":
		b, err := encodeDocument(JSON{}, []byte(arg))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", b), nil
	case "dec":
		v, err := s.readValue(arg)
		if err != nil {
			return "", err
		}
		b, err := decodeDocument(JSON{}, s.dm, v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "inspect":
		v, err := s.readValue(arg)
		if err != nil {
			return "", err
		}
		return FormatValue(v), nil
	default:
		return "", fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
	}
}

func (s *Shell) readValue(arg string) (respcodec.Value, error) {
	if arg == "" {
		return respcodec.Value{}, errors.New("missing RESP input")
	}

	r := respcodec.NewReader([]byte(unescaper.Replace(arg)))
	r.SetMaxNestedLevels(s.dm.Options().MaxNestedLevels)

	v, err := r.ReadValue()
	if err != nil {
		return respcodec.Value{}, err
	}
	if r.Len() > 0 {
		s.logger.Warn("ignoring trailing input", slog.Int("offset", r.Offset()), slog.Int("bytes", r.Len()))
	}
	return v, nil
}

// RunShell starts an interactive session and blocks until the user quits, input ends or ctx is canceled.
func RunShell(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	s, err := NewShell(cfg, logger)
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	return s.loop(ctx, rl, rl.Stdout())
}

func (s *Shell) loop(ctx context.Context, rl *readline.Instance, out io.Writer) error {
	fmt.Fprintln(out, shellHelp)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		res, err := s.Eval(line)
		switch {
		case errors.Is(err, ErrQuit):
			return nil
		case err != nil:
			fmt.Fprintf(out, "Error: %v\n", err)
		case res != "":
			fmt.Fprintln(out, res)
		}
	}
}
