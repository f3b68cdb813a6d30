package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmgilman/objfs"
)

// app carries state shared by all commands.
type app struct {
	v   *viper.Viper
	out io.Writer
	in  io.Reader

	configPath string
	cfg        *config
	drv        *objfs.Driver
}

func newRootCmd(out io.Writer, in io.Reader) *cobra.Command {
	a := &app{v: viper.New(), out: out, in: in}
	setDefaults(a.v)

	root := &cobra.Command{
		Use:           "objfs",
		Short:         "Browse and edit an object store container as a folder hierarchy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.v, a.configPath)
			if err != nil {
				return err
			}
			if err := checkOutput(cfg.Output); err != nil {
				return err
			}
			a.cfg = cfg

			drv, err := newDriver(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			a.drv = drv
			return nil
		},
	}
	root.SetOut(out)
	root.SetIn(in)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (YAML)")
	flags.String("backend", "swift", "storage backend: swift, minio or memory")
	flags.StringP("output", "o", "text", "output format: text, json or yaml")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("seed", "", "local directory loaded into the memory backend")
	bindFlags(a.v, flags, map[string]string{
		"backend":     "backend",
		"output":      "output",
		"log_level":   "log-level",
		"memory.seed": "seed",
	})

	root.AddCommand(
		a.lsCmd(),
		a.statCmd(),
		a.catCmd(),
		a.putCmd(),
		a.touchCmd(),
		a.writeCmd(),
		a.rmCmd(),
		a.mkdirCmd(),
		a.mvCmd(),
		a.cpCmd(),
		a.renameCmd(),
		a.hashCmd(),
		a.urlCmd(),
		a.fetchCmd(),
		a.existsCmd(),
		a.permsCmd(),
		a.flushCmd(),
	)
	return root
}

// bindFlags binds config keys to the named flags.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}
