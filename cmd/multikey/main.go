// Command multikey queries and serves collections of records stored in JSON,
// JSON Lines or YAML files.
//
//	multikey [flags] COMMAND FILE [ARGS]
//
// Records are keyed by the --primary field, and every --secondary field adds a
// secondary index named after the field.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ridge/multikey/codec"
	"github.com/ridge/multikey/collection"
	"github.com/ridge/multikey/httpapi"
	"github.com/ridge/multikey/mirror"
	"github.com/ridge/multikey/records"
	"github.com/ridge/multikey/run"
	"github.com/ridge/multikey/thttp"
	"github.com/ridge/multikey/tlog"
	"github.com/ridge/multikey/tnet"
	"github.com/ridge/multikey/watch"
	"github.com/ridge/parallel"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	primary   = pflag.String("primary", "id", "Primary key field")
	secondary = pflag.StringSlice("secondary", nil, "Secondary key field (repeatable)")
	addr      = pflag.String("addr", "localhost:8080", "Address to serve on (serve)")
	watchFile = pflag.Bool("watch", false, "Reload the file when it changes (serve)")
	sorted    = pflag.Bool("sorted", false, "Order output by primary key instead of insertion order")
)

type command struct {
	args    string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, schema *records.Schema, path string, args []string) error
}

var commands = map[string]command{
	"check":   {args: "FILE", run: check},
	"get":     {args: "FILE KEY", minArgs: 1, maxArgs: 1, run: get},
	"group":   {args: "FILE LEVEL KEY", minArgs: 2, maxArgs: 2, run: group},
	"keys":    {args: "FILE [LEVEL]", maxArgs: 1, run: keys},
	"convert": {args: "FILE OUT", minArgs: 1, maxArgs: 1, run: convert},
	"serve":   {args: "FILE", run: serve},
}

// usageError reports a bad command line. The process exits with 2.
func usageError(format string, args ...any) error {
	return run.ExitCode(fmt.Errorf(format, args...), 2)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] COMMAND FILE [ARGS]\n\nCommands:\n", os.Args[0])
	names := maps.Keys(commands)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s %s\n", name, commands[name].args)
	}
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	pflag.PrintDefaults()
}

func main() {
	pflag.Usage = usage
	pflag.Parse()

	args := pflag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	name, args := args[0], args[1:]

	task := func(ctx context.Context) error {
		cmd, ok := commands[name]
		if !ok {
			return usageError("unknown command %s", name)
		}
		if len(args) < 1+cmd.minArgs || len(args) > 1+cmd.maxArgs {
			return usageError("usage: %s %s", name, cmd.args)
		}
		schema, err := newSchema(args[0])
		if err != nil {
			return err
		}
		return cmd.run(tlog.Named(ctx, name), schema, args[0], args[1:])
	}
	if name == "serve" {
		run.Server(task)
	} else {
		run.Tool(task)
	}
}

func newSchema(path string) (schema *records.Schema, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = usageError("%v", r)
		}
	}()
	return records.NewSchema(path, *primary, *secondary...), nil
}

func check(ctx context.Context, schema *records.Schema, path string, args []string) error {
	c, err := records.Load(ctx, schema, path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d records\n", path, c.Count())
	for _, level := range schema.Levels() {
		fmt.Printf("  %s: %d keys\n", level, len(c.LevelKeys(level)))
	}
	return nil
}

func get(ctx context.Context, schema *records.Schema, path string, args []string) error {
	c, err := records.Load(ctx, schema, path)
	if err != nil {
		return err
	}
	item, err := c.Get(args[0])
	if err != nil {
		return err
	}
	return output(item)
}

func group(ctx context.Context, schema *records.Schema, path string, args []string) error {
	if _, ok := schema.Level(args[0]); !ok {
		return usageError("unknown index %s", args[0])
	}
	c, err := records.Load(ctx, schema, path)
	if err != nil {
		return err
	}
	if !*sorted {
		return output(c.Search(args[0], args[1]))
	}
	snapshot, err := sortedSnapshot(c)
	if err != nil {
		return err
	}
	return output(values(snapshot.Search(args[0], args[1])))
}

func keys(ctx context.Context, schema *records.Schema, path string, args []string) error {
	if len(args) == 1 {
		if _, ok := schema.Level(args[0]); !ok {
			return usageError("unknown index %s", args[0])
		}
	}
	c, err := records.Load(ctx, schema, path)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		return output(c.LevelKeys(args[0]))
	}
	if !*sorted {
		return output(c.Keys())
	}
	snapshot, err := sortedSnapshot(c)
	if err != nil {
		return err
	}
	keys := []string{}
	var r records.Record
	for iter := snapshot.All(); iter(&r); {
		keys = append(keys, schema.PrimaryKey(r))
	}
	return output(keys)
}

func convert(ctx context.Context, schema *records.Schema, path string, args []string) error {
	c, err := records.Load(ctx, schema, path)
	if err != nil {
		return err
	}
	if err := codec.WriteFile(args[0], c.Compact()); err != nil {
		return err
	}
	tlog.Get(ctx).Info("Records written", zap.String("path", args[0]), zap.Int("count", c.Count()))
	return nil
}

func serve(ctx context.Context, schema *records.Schema, path string, args []string) error {
	c, err := records.Load(ctx, schema, path)
	if err != nil {
		return err
	}
	holder := httpapi.NewHolder(c)
	listener, err := tnet.Listen(*addr)
	if err != nil {
		return err
	}

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		server := thttp.NewServer(listener, thttp.StandardMiddleware(httpapi.NewHandler(holder)))
		spawn("server", parallel.Fail, server.Run)

		if *watchFile {
			m, err := newMirror(schema)
			if err != nil {
				return err
			}
			if _, _, err := m.Sync(c); err != nil {
				return err
			}
			spawn("watch", parallel.Fail, func(ctx context.Context) error {
				return watch.File(ctx, path, func(ctx context.Context) (*records.Collection, error) {
					return records.Load(ctx, schema, path)
				}, func(ctx context.Context, c *records.Collection) error {
					_, changes, err := m.Sync(c)
					if err != nil {
						return err
					}
					holder.Swap(c)
					logChanges(ctx, changes)
					return nil
				})
			})
		}
		return nil
	})
}

func logChanges(ctx context.Context, changes map[string]mirror.Change[records.Record]) {
	if len(changes) == 0 {
		return
	}
	var added, updated, removed int
	for _, change := range changes {
		switch {
		case change.Before == nil:
			added++
		case change.After == nil:
			removed++
		default:
			updated++
		}
	}
	tlog.Get(ctx).Info("Records reloaded", zap.Int("added", added), zap.Int("updated", updated), zap.Int("removed", removed))
}

func newMirror(schema *records.Schema) (m *mirror.Mirror[string, records.Record], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = usageError("%v", r)
		}
	}()
	return mirror.New(schema), nil
}

func sortedSnapshot(c *records.Collection) (mirror.Snapshot[string, records.Record], error) {
	m, err := newMirror(c.Schema())
	if err != nil {
		return mirror.Snapshot[string, records.Record]{}, err
	}
	snapshot, _, err := m.Sync(c)
	return snapshot, err
}

func values(iter collection.Iterator[records.Record]) []records.Record {
	items := []records.Record{}
	var r records.Record
	for iter(&r) {
		items = append(items, r)
	}
	return items
}

func output(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
