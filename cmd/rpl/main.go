package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/ichiban/resolver"
	"github.com/ichiban/resolver/engine"
)

// Version is a version of this build.
var Version = "rpl/0.1"

func main() {
	var (
		verbose bool
		config  string
		c       resolver.Config
	)
	pflag.BoolVarP(&verbose, "verbose", "v", false, `verbose`)
	pflag.StringVar(&config, "config", "", `YAML configuration file`)
	pflag.StringVar(&c.Unknown, "unknown", "", `policy for unknown procedures: error, fail or warning`)
	pflag.DurationVar(&c.Timeout, "timeout", 0, `time limit of each query`)
	pflag.Parse()

	log := logrus.New()

	if config != "" {
		loaded, err := resolver.LoadConfig(config)
		if err != nil {
			log.WithError(err).Fatal("failed to load config")
		}
		c = merge(loaded, c)
	}
	c.Verbose = c.Verbose || verbose
	if err := c.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	if c.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	oldState, err := terminal.MakeRaw(0)
	if err != nil {
		log.WithError(err).Panic("failed to enter raw mode")
	}
	restore := func() {
		_ = terminal.Restore(0, oldState)
	}
	defer restore()

	t := terminal.NewTerminal(os.Stdin, "?- ")
	defer fmt.Printf("\r\n")

	log.SetOutput(t)

	i := resolver.New(os.Stdin, t, resolver.WithLogger(log), resolver.WithConfig(c))
	i.Register("version", 1, func(m *engine.Machine, args []engine.Term) (bool, error) {
		return m.Unify(args[0], engine.Atom(Version)), nil
	})
	i.Register("cd", 1, cd)

	for _, a := range pflag.Args() {
		if err := i.Consult(context.Background(), a); err != nil {
			log.WithField("file", a).WithError(err).Error("failed to consult")
		}
	}

	top := toplevel{
		i:    i,
		term: t,
		out:  t,
		keys: bufio.NewReader(os.Stdin),
		log:  log,
	}
	for {
		if err := top.handleLine(context.Background()); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, engine.ErrHalt) {
				log.WithError(err).Error("failed")
			}
			return
		}
	}
}

// merge overrides the loaded configuration with the values given on the command line.
func merge(loaded, flags resolver.Config) resolver.Config {
	if flags.Unknown != "" {
		loaded.Unknown = flags.Unknown
	}
	if flags.Timeout > 0 {
		loaded.Timeout = flags.Timeout
	}
	return loaded
}

func cd(_ *engine.Machine, args []engine.Term) (bool, error) {
	switch dir := engine.Resolve(args[0]).(type) {
	case *engine.Variable:
		return false, &engine.InstantiationError{Culprit: dir}
	case engine.Atom:
		if err := os.Chdir(string(dir)); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, &engine.TypeError{Type: "atom", Culprit: dir}
	}
}

type lineReader interface {
	ReadLine() (string, error)
	SetPrompt(string)
}

// toplevel reads queries line by line and prints their answers.
type toplevel struct {
	i    *resolver.Interpreter
	term lineReader
	out  io.Writer
	keys io.RuneReader
	log  logrus.FieldLogger
	buf  strings.Builder
}

func (l *toplevel) handleLine(ctx context.Context) error {
	if l.buf.Len() == 0 {
		l.term.SetPrompt("?- ")
	} else {
		l.term.SetPrompt("|  ")
	}

	line, err := l.term.ReadLine()
	if err != nil {
		if err == io.EOF {
			return err
		}
		l.log.WithError(err).Warn("failed to read line")
		l.buf.Reset()
		return nil
	}
	l.buf.WriteString(line)

	// A query ends with a full stop. Keep reading until it does.
	if !strings.HasSuffix(strings.TrimSpace(l.buf.String()), ".") {
		l.buf.WriteRune('\n')
		return nil
	}
	defer l.buf.Reset()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sols, err := l.i.QueryContext(ctx, l.buf.String())
	if err != nil {
		l.log.WithError(err).Warn("failed to query")
		return nil
	}
	defer sols.Close()

	c := 0
	for sols.Next() {
		c++

		m := map[string]engine.Term{}
		if err := sols.Scan(m); err != nil {
			l.log.WithError(err).Warn("failed to scan")
			break
		}

		ls := make([]string, 0, len(sols.Vars()))
		for _, n := range sols.Vars() {
			v := m[n]
			if _, ok := v.(*engine.Variable); ok {
				continue
			}
			var sb strings.Builder
			_ = engine.Write(&sb, v, engine.WriteOptions{
				Quoted:   true,
				Ops:      l.i.Database().Operators(),
				Priority: 699,
			})
			ls = append(ls, fmt.Sprintf("%s = %s", n, sb.String()))
		}
		if len(ls) == 0 {
			if _, err := fmt.Fprintf(l.out, "%t.\n", true); err != nil {
				return err
			}
			break
		}

		if sols.IsLast() {
			if _, err := fmt.Fprintf(l.out, "%s.\n", strings.Join(ls, ",\n")); err != nil {
				return err
			}
			break
		}

		if _, err := fmt.Fprintf(l.out, "%s ", strings.Join(ls, ",\n")); err != nil {
			return err
		}

		r, _, err := l.keys.ReadRune()
		if err != nil {
			l.log.WithError(err).Warn("failed to read rune")
			break
		}
		if r != ';' {
			r = '.'
		}

		if _, err := fmt.Fprintf(l.out, "%s\n", string(r)); err != nil {
			return err
		}

		if r == '.' {
			break
		}
	}

	if err := sols.Err(); err != nil {
		if errors.Is(err, engine.ErrHalt) {
			return err
		}
		var ex *engine.Exception
		if errors.As(err, &ex) {
			if _, err := fmt.Fprintf(l.out, "%s\n", ex); err != nil {
				return err
			}
			return nil
		}
		l.log.WithError(err).Warn("failed")
		return nil
	}

	if c == 0 {
		if _, err := fmt.Fprintf(l.out, "%t.\n", false); err != nil {
			return err
		}
	}
	return nil
}
