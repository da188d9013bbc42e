package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/dengtao07/expression/cli/cmd"
	"github.com/dengtao07/expression/pkg"
)

// CLI is the top-level command-line interface.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print the version and exit." short:"V"`

	Init  cmd.Init  `cmd:"" help:"Write the current flag values to the configuration file"`
	Parse cmd.Parse `cmd:"" help:"Print the syntax tree of an expression"`
	Repl  cmd.Repl  `cmd:"" help:"Evaluate expressions interactively"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate expressions against bindings"`
}

// Run parses args and runs the selected command. Kong calls exit after
// printing help or a usage error.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var cli CLI

	// Logger flags take effect before kong runs, so that errors from the
	// configuration resolvers are already logged as requested.
	cli.Log.scan(args)

	parser, err := kong.New(&cli, cli.options(ctx, exit)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	defer cli.Log.start(ctx)()
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

func (c *CLI) options(ctx context.Context, exit func(int)) []kong.Option {
	conf := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier:  conf,
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.HistoryIdentifier: cachePath(historyFile),
		"version":             pkg.Name + " " + pkg.Version,
	}

	return []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{c.Log.group(), c.Pprof.group()}),
		kong.DefaultEnvars(strings.ToUpper(pkg.Prefix())),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, configPath("config.json")),
		kong.Configuration(resolve, conf),
		vars.CloneWith(c.Log.vars()).CloneWith(c.Pprof.vars()),
	}
}
