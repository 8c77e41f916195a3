// Command schoolctl runs database maintenance: goose migrations and the demo seed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Spok95/school-records/internal/db"
	"github.com/Spok95/school-records/internal/logging"
	"github.com/Spok95/school-records/internal/models"
)

const usage = `usage: schoolctl [-dsn URL] <command>

commands:
  migrate up|down|status|redo|version   run goose against the embedded migrations
  seed-demo                             insert the demo school (safe to repeat)
`

func main() {
	_ = godotenv.Load()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("schoolctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dsn := fs.String("dsn", os.Getenv("DATABASE_URL"), "postgres connection string")
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cmd, err := parseCommand(fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, usage)
		return 2
	}
	if *dsn == "" {
		fmt.Fprintln(stderr, "DATABASE_URL or -dsn is required")
		return 2
	}

	lg, err := logging.Init(os.Getenv("LOG_LEVEL"), "dev")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer lg.Closer()

	database, err := db.Open(ctx, *dsn)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = database.Close() }()

	switch cmd.name {
	case "migrate":
		err = db.RunMigrations(ctx, database, lg.GooseLogger(), cmd.arg)
	case "seed-demo":
		if err = db.Migrate(ctx, database, lg.GooseLogger()); err == nil {
			err = db.SeedDemo(ctx, database, today())
		}
		if err == nil {
			fmt.Fprintln(stdout, "demo data ready: try parent email p@x.com")
		}
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

type command struct {
	name string
	arg  string
}

var migrateArgs = map[string]bool{"up": true, "down": true, "status": true, "redo": true, "version": true}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, fmt.Errorf("missing command")
	}
	switch args[0] {
	case "migrate":
		if len(args) != 2 || !migrateArgs[args[1]] {
			return command{}, fmt.Errorf("migrate needs one of: up, down, status, redo, version")
		}
		return command{name: "migrate", arg: args[1]}, nil
	case "seed-demo":
		if len(args) != 1 {
			return command{}, fmt.Errorf("seed-demo takes no arguments")
		}
		return command{name: "seed-demo"}, nil
	}
	return command{}, fmt.Errorf("unknown command %q", args[0])
}

// today is the current day in the TZ the server uses.
func today() models.Date {
	loc := time.UTC
	if tz := os.Getenv("TZ"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	return models.DateOf(time.Now().In(loc))
}
