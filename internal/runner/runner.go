// Package runner holds the flag parsing and line-driving logic of the
// rxgrep binary, keeping main small.
package runner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"

	"github.com/coregx/rx"
	"github.com/coregx/rx/syntax"
)

// Options are the parsed command-line options.
type Options struct {
	Pattern    string
	Files      goflags.StringSlice
	Dialect    string
	Extended   bool
	IgnoreCase bool
	LineNumber bool
	Invert     bool
	Tags       bool
	Verbose    bool
	Silent     bool
}

// ParseFlags parses the command line into Options.
func ParseFlags() *Options {
	opts := &Options{}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`grep over the rx engine: POSIX dialects, case folding, cut tags.`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&opts.Pattern, "expression", "e", "", "pattern to search for"),
		flagSet.StringSliceVarP(&opts.Files, "file", "f", nil, "files to search (stdin when empty)", goflags.CommaSeparatedStringSliceOptions),
	)

	flagSet.CreateGroup("matching", "Matching",
		flagSet.StringVarP(&opts.Dialect, "dialect", "d", "", "syntax dialect (grep, egrep, awk, sed, emacs, posix-basic, posix-extended)"),
		flagSet.BoolVarP(&opts.Extended, "extended", "E", false, "POSIX extended syntax"),
		flagSet.BoolVarP(&opts.IgnoreCase, "ignore-case", "i", false, "case-insensitive matching"),
		flagSet.BoolVarP(&opts.Invert, "invert", "v", false, "select non-matching lines"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.BoolVarP(&opts.LineNumber, "line-number", "n", false, "prefix matches with line numbers"),
		flagSet.BoolVarP(&opts.Tags, "tags", "t", false, "print the cut tag of each match"),
		flagSet.BoolVar(&opts.Verbose, "verbose", false, "verbose output"),
		flagSet.BoolVar(&opts.Silent, "silent", false, "matches only, no banner or errors"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("could not parse flags: %s", err)
	}

	if opts.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	} else if opts.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	return opts
}

// dialects maps the -d names to syntax flag-sets.
var dialects = map[string]syntax.Flags{
	"grep":                   syntax.Grep,
	"egrep":                  syntax.Egrep,
	"awk":                    syntax.Awk,
	"posix-awk":              syntax.PosixAwk,
	"sed":                    syntax.Sed,
	"emacs":                  syntax.Emacs,
	"posix-basic":            syntax.PosixBasic,
	"posix-extended":         syntax.PosixExtended,
	"posix-minimal-basic":    syntax.PosixMinimalBasic,
	"posix-minimal-extended": syntax.PosixMinimalExtended,
}

// Runner drives one compiled pattern over the input files.
type Runner struct {
	opts *Options
	re   *rx.Regexp
}

// New validates the options and compiles the pattern.
func New(opts *Options) (*Runner, error) {
	if opts.Pattern == "" {
		return nil, fmt.Errorf("no pattern given (use -e)")
	}
	var (
		re  *rx.Regexp
		err error
	)
	if opts.Dialect != "" {
		dialect, ok := dialects[strings.ToLower(opts.Dialect)]
		if !ok {
			return nil, fmt.Errorf("unknown dialect %q", opts.Dialect)
		}
		var translate []byte
		if opts.IgnoreCase {
			translate = rx.CaseFoldTable()
		}
		re, err = rx.CompileDialect(opts.Pattern, dialect, translate)
	} else {
		flags := rx.Newline
		if opts.Extended {
			flags |= rx.Extended
		}
		if opts.IgnoreCase {
			flags |= rx.IgnoreCase
		}
		re, err = rx.Compile(opts.Pattern, flags)
	}
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", opts.Pattern, err)
	}
	return &Runner{opts: opts, re: re}, nil
}

// Close releases the compiled pattern.
func (r *Runner) Close() {
	r.re.Free()
}

// Run searches every input and writes matching lines to w. It returns
// the number of matching lines.
func (r *Runner) Run(w io.Writer) (int, error) {
	defer r.Close()
	if len(r.opts.Files) == 0 {
		return r.grep(w, "", os.Stdin)
	}
	total := 0
	for _, name := range r.opts.Files {
		f, err := os.Open(name)
		if err != nil {
			gologger.Error().Msgf("cannot open %s: %s", name, err)
			continue
		}
		n, err := r.grep(w, name, f)
		f.Close()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *Runner) grep(w io.Writer, name string, in io.Reader) (int, error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	matched := 0
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Bytes()
		regs, err := r.re.Search(line, 0, len(line), 0)
		hit := err == nil
		if e, ok := err.(*rx.Error); ok && e.Code != rx.NoMatch {
			return matched, fmt.Errorf("match failed: %s", rx.ErrorText(e.Code))
		}
		if hit == r.opts.Invert {
			continue
		}
		matched++
		var sb strings.Builder
		if name != "" {
			sb.WriteString(name)
			sb.WriteByte(':')
		}
		if r.opts.LineNumber {
			fmt.Fprintf(&sb, "%d:", lineno)
		}
		if r.opts.Tags && hit && len(regs) > 0 {
			fmt.Fprintf(&sb, "[%d]:", regs[0].FinalTag)
		}
		sb.Write(line)
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return matched, err
		}
	}
	return matched, sc.Err()
}
