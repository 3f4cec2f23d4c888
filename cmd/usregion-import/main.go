// Command usregion-import creates a region database for usregiond.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/r2northstar/usregion/db/regiondb"
	"github.com/r2northstar/usregion/pkg/usregion"
	"github.com/spf13/pflag"
)

var opt struct {
	JSON  string
	Alias []string
	Help  bool
}

func init() {
	pflag.StringVarP(&opt.JSON, "json", "j", "", "Import regions from a JSON file (in the /v1/regions response format, - for stdin) instead of the builtin table")
	pflag.StringArrayVarP(&opt.Alias, "alias", "a", nil, "Extra CODE=alias to add (may be repeated)")
	pflag.BoolVarP(&opt.Help, "help", "h", false, "Show this help text")
}

func main() {
	pflag.Parse()

	if pflag.NArg() != 1 || opt.Help {
		fmt.Printf("usage: %s [options] db_file\n\noptions:\n%s", os.Args[0], pflag.CommandLine.FlagUsages())
		if opt.Help {
			os.Exit(2)
		}
		os.Exit(0)
	}

	t, err := source(opt.JSON, opt.Alias)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := create(context.Background(), pflag.Arg(0), t); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d regions\n", t.Len())
}

// source gets the table to import.
func source(name string, alias []string) (*usregion.Table, error) {
	t := usregion.Builtin()
	if name != "" {
		var r io.Reader
		if name == "-" {
			r = os.Stdin
		} else {
			f, err := os.Open(name)
			if err != nil {
				return nil, fmt.Errorf("read regions: %w", err)
			}
			defer f.Close()
			r = f
		}
		x, err := readJSON(r)
		if err != nil {
			return nil, fmt.Errorf("read regions: %w", err)
		}
		t = x
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
	return t, nil
}

type regionJSON struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	AP    *string  `json:"ap"`
	Other []string `json:"other"`
	Class string   `json:"class"`
}

// readJSON reads a table from a /v1/regions response.
func readJSON(r io.Reader) (*usregion.Table, error) {
	var obj struct {
		Regions []regionJSON `json:"regions"`
	}
	if err := json.NewDecoder(r).Decode(&obj); err != nil {
		return nil, err
	}
	if len(obj.Regions) == 0 {
		return nil, fmt.Errorf("no regions")
	}
	rs := make([]usregion.Record, len(obj.Regions))
	for i, x := range obj.Regions {
		c, ok := usregion.ParseClass(x.Class)
		if !ok || c == usregion.All {
			return nil, fmt.Errorf("region %q: invalid class %q", x.Code, x.Class)
		}
		rs[i] = usregion.Record{
			Code:  x.Code,
			Name:  x.Name,
			Other: x.Other,
			Class: c,
		}
		if x.AP != nil {
			rs[i].AP = *x.AP
		}
	}
	return usregion.NewTable(rs)
}

// create creates and initializes a new database at name containing t.
func create(ctx context.Context, name string, t *usregion.Table) error {
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("create region db: %q already exists", name)
	}

	db, err := regiondb.Open(name)
	if err != nil {
		return fmt.Errorf("create region db: %w", err)
	}
	defer db.Close()

	if err := db.Init(ctx); err != nil {
		return fmt.Errorf("migrate region db: %w", err)
	}
	if err := db.Save(ctx, t); err != nil {
		return fmt.Errorf("save regions: %w", err)
	}
	return nil
}
