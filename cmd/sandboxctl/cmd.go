package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/danmuck/sandbox/internal/observability"
	"github.com/danmuck/sandbox/internal/sandbox"
	"github.com/mna/mainer"
	"github.com/rs/zerolog/log"
)

const binName = "sandboxctl"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...]
       %[1]s -h|--help
       %[1]s -v|--version

Spawns one worker per configured launcher, lets each run to its
deadline while logging a tick counter, and joins them all in reverse
construction order before exiting.

Valid flag options are:
       -c --config <path>        Load settings from a TOML file.
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Environment:
       SANDBOX_LOG_LEVEL         trace, debug, info, warn, error or off.
       SANDBOX_LOG_TIMESTAMP     Include timestamps (bool).
       SANDBOX_LOG_NOCOLOR       Disable colored output (bool).
       SANDBOX_LOG_BYPASS        Write raw JSON lines (bool).
`, binName)
)

type cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool   `flag:"h,help"`
	Version bool   `flag:"v,version"`
	Config  string `flag:"c,config"`

	args []string
}

func (c *cmd) SetArgs(args []string) {
	c.args = args
}

func (c *cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 0 {
		return fmt.Errorf("unexpected argument: %s", c.args[0])
	}
	if c.Config != "" && strings.TrimSpace(c.Config) == "" {
		return errors.New("config: path must not be blank")
	}
	return nil
}

func (c *cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	var p mainer.Parser
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	observability.InitLogger(binName)
	cfg := sandbox.DefaultServiceConfig()
	if c.Config != "" {
		loaded, err := loadServiceConfig(c.Config)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %v\n", binName, err)
			return mainer.Failure
		}
		cfg = loaded
		log.Info().Str("path", c.Config).Msg("loaded sandbox config")
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt, syscall.SIGTERM)
	report, err := sandbox.NewServiceWithConfig(cfg).RunContext(ctx)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %v\n", binName, err)
		return mainer.Failure
	}
	for _, j := range report.Joined {
		log.Debug().Str("launcher", j.Name).Str("worker", j.WorkerID).Msg("joined")
	}
	return mainer.Success
}
