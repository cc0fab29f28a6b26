// Package shell implements the interactive PassHash command shell: hash
// derivation with primary and gesture salts, saved configurations and
// their export, import and QR exchange.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinyakov/PassHash/internal/format"
	"github.com/atinyakov/PassHash/internal/models"
	"github.com/atinyakov/PassHash/internal/scanner"
	"github.com/atinyakov/PassHash/internal/service"
	"github.com/atinyakov/PassHash/internal/visualizer"
)

const prompt = "passhash> "

// SecretReader reads a value without echoing it, showing prompt first.
type SecretReader func(ctx context.Context, prompt string) (string, error)

// Shell holds the interactive state: the current text, algorithm, display
// settings and the applied secondary salt. Salts are never persisted.
type Shell struct {
	hashes  *service.HashService
	configs *service.ConfigService
	scanner *scanner.Scanner
	log     *zap.Logger

	terminal   func() (fd int, ok bool)
	in         *scanner.LineSource
	out        io.Writer
	readSecret SecretReader
	now        func() time.Time

	text      string
	algorithm models.HashAlgorithm
	display   models.DisplayFormat
	groupSize int
	session   visualizer.Session
}

// Option customizes a Shell.
type Option func(*Shell)

// WithSecretReader replaces the salt prompt.
func WithSecretReader(r SecretReader) Option {
	return func(s *Shell) { s.readSecret = r }
}

// WithClock sets the clock used for export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Shell) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Shell) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Shell reading commands from in and writing to out.
func New(hashes *service.HashService, configs *service.ConfigService, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		hashes:    hashes,
		configs:   configs,
		log:       zap.NewNop(),
		terminal:  terminalOf(in),
		in:        scanner.NewLineSource(in),
		out:       out,
		now:       time.Now,
		algorithm: models.DefaultAlgorithm,
		display:   models.FormatAll,
		groupSize: format.DefaultGroupSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.readSecret == nil {
		s.readSecret = s.promptSecret
	}
	s.scanner = scanner.New(s.log)
	return s
}

// Run reads and executes commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	defer s.in.Close()
	for {
		fmt.Fprint(s.out, prompt)
		line, err := s.in.Next(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}
		if s.Exec(ctx, line) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch cmd {
	case "help":
		s.help()
	case "algo":
		err = s.cmdAlgo(rest)
	case "hash":
		err = s.cmdHash(ctx, rest)
	case "format":
		err = s.cmdFormat(rest)
	case "group":
		err = s.cmdGroup(rest)
	case "keypad", "pattern", "vault":
		err = s.cmdGesture(cmd, rest)
	case "clear":
		s.session.Clear()
		fmt.Fprintln(s.out, "Secondary salt cleared")
	case "save":
		err = s.cmdSave(ctx, rest)
	case "list":
		err = s.cmdList(ctx)
	case "load":
		err = s.cmdLoad(ctx, rest)
	case "delete":
		err = s.cmdDelete(ctx, rest)
	case "export":
		err = s.cmdExport(ctx, rest)
	case "import":
		err = s.cmdImport(ctx, rest)
	case "qr":
		err = s.cmdQR(ctx)
	case "scan":
		err = s.cmdScan(ctx)
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return true
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return false
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `Available commands:
  algo [name]            show or set the hash algorithm
  hash [text]            derive a password; the salt is read without echo
  format <all|letters|numbers>
  group <n>              group size, 1 disables grouping
  keypad <keys>          secondary salt from keypad keys (0-9 * #)
  pattern <points>       secondary salt from pattern points (0-8)
  vault <n,n,...>        secondary salt from a dial combination (0-35)
  clear                  drop the secondary salt
  save <name>            save text, algorithm and gesture method
  list                   list saved configurations
  load <id>              load a saved configuration
  delete <id>            delete a saved configuration
  export [file]          export configurations as JSON
  import <file>          import configurations from JSON
  qr                     show the configurations as a QR code
  scan                   import a pasted QR code payload
  exit
`)
}

// promptSecret reads the salt without echo when stdin is a terminal with
// nothing pending. Input already read ahead, such as a pasted block of
// lines, is consumed as the salt instead so that no line is lost.
func (s *Shell) promptSecret(ctx context.Context, p string) (string, error) {
	fmt.Fprint(s.out, p)
	defer fmt.Fprintln(s.out)
	if fd, ok := s.terminal(); ok && s.in.Buffered() == 0 {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
	return s.in.Next(ctx)
}

func terminalOf(r io.Reader) func() (int, bool) {
	return func() (int, bool) {
		f, ok := r.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			return 0, false
		}
		return int(f.Fd()), true
	}
}
