// Command usregion normalizes U.S. region references.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/r2northstar/usregion/db/regiondb"
	"github.com/r2northstar/usregion/pkg/usregion"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

var opt struct {
	Region  []string
	Output  string
	Omit    []string
	Alias   []string
	DB      string
	JSON    bool
	Verbose bool
	Help    bool
}

func init() {
	pflag.StringSliceVarP(&opt.Region, "region", "r", nil, "Region classes to match (state, territory, associated, all)")
	pflag.StringVarP(&opt.Output, "output", "o", "code", "Field to output (code, name, ap)")
	pflag.StringSliceVar(&opt.Omit, "omit", nil, "Codes to exclude from matching")
	pflag.StringArrayVarP(&opt.Alias, "alias", "a", nil, "Extra CODE=alias to match (may be repeated)")
	pflag.StringVar(&opt.DB, "db", "", "Read the region table from a sqlite3 database instead of the builtin one")
	pflag.BoolVarP(&opt.JSON, "json", "j", false, "Output a JSON object for each query")
	pflag.BoolVarP(&opt.Verbose, "verbose", "v", false, "Log matching details to stderr")
	pflag.BoolVarP(&opt.Help, "help", "h", false, "Show this help text")
}

func main() {
	pflag.Parse()

	if opt.Help {
		fmt.Printf("usage: %s [options] [query...]\n\noptions:\n%s\nnote: if no queries are provided, they are read from stdin, one per line\n", os.Args[0], pflag.CommandLine.FlagUsages())
		os.Exit(2)
	}

	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if opt.Verbose {
		l = l.Level(zerolog.DebugLevel)
	} else {
		l = l.Level(zerolog.WarnLevel)
	}

	res, err := loadResolver(context.Background(), opt.DB, opt.Alias)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load regions: %v\n", err)
		os.Exit(1)
	}
	l.Debug().Int("regions", res.Table().Len()).Str("source", sourceName(opt.DB)).Msg("loaded region table")

	o, err := parseOptions(opt.Region, opt.Output, opt.Omit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	p := &printer{res: res, opt: o, json: opt.JSON, w: w, l: l}

	if pflag.NArg() != 0 {
		err = p.PrintAll(pflag.Args())
	} else {
		err = p.PrintLines(os.Stdin)
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func sourceName(db string) string {
	if db == "" {
		return "builtin"
	}
	return db
}

// loadResolver loads the region table from db (or the builtin one if empty),
// adding the provided CODE=alias pairs.
func loadResolver(ctx context.Context, db string, alias []string) (*usregion.Resolver, error) {
	t := usregion.Builtin()
	if db != "" {
		if _, err := os.Stat(db); err != nil {
			return nil, err
		}
		x, err := regiondb.Open(db)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", db, err)
		}
		defer x.Close()

		if cur, to, err := x.Version(); err != nil {
			return nil, fmt.Errorf("open %q: %w", db, err)
		} else if cur != to {
			return nil, fmt.Errorf("open %q: database version %d does not match %d (use usregion-import to create it)", db, cur, to)
		}
		if t, err = x.Load(ctx); err != nil {
			return nil, fmt.Errorf("load %q: %w", db, err)
		}
	}
	if len(alias) != 0 {
		m, err := usregion.ParseAliases(alias...)
		if err != nil {
			return nil, err
		}
		if t, err = t.WithAliases(m); err != nil {
			return nil, err
		}
	}
	return usregion.NewResolver(t), nil
}

func parseOptions(region []string, output string, omit []string) (usregion.Options, error) {
	var o usregion.Options

	cs, err := usregion.ParseClasses(region...)
	if err != nil {
		return o, err
	}
	o.Classes = cs

	f, ok := usregion.ParseField(output)
	if !ok {
		return o, fmt.Errorf("unknown output field %q", output)
	}
	o.Output = usregion.FieldOutput(f)

	o.Omit = usregion.SplitCodes(omit...)
	return o, nil
}

type printer struct {
	res  *usregion.Resolver
	opt  usregion.Options
	json bool
	w    io.Writer
	l    zerolog.Logger
}

// Print resolves q and writes the result, or null if it couldn't be resolved.
func (p *printer) Print(q string) error {
	code, matched := p.res.Match(q, p.opt)
	result, ok := p.res.Normalize(q, p.opt)

	ev := p.l.Debug().Str("query", q).Str("sanitized", usregion.Sanitize(q))
	if matched {
		ev.Str("code", code).Bool("result", ok).Msg("matched")
	} else {
		ev.Msg("no match")
	}

	if p.json {
		obj := map[string]any{
			"query":  q,
			"code":   nil,
			"result": nil,
		}
		if matched {
			obj["code"] = code
		}
		if ok {
			obj["result"] = result
		}
		buf, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(p.w, "%s\n", buf)
		return err
	}

	if !ok {
		result = "null"
	}
	_, err := fmt.Fprintln(p.w, result)
	return err
}

// PrintAll calls Print for each query, stopping at the first error.
func (p *printer) PrintAll(qs []string) error {
	for _, q := range qs {
		if err := p.Print(q); err != nil {
			return err
		}
	}
	return nil
}

// PrintLines calls Print for each line of r.
func (p *printer) PrintLines(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := p.Print(sc.Text()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
