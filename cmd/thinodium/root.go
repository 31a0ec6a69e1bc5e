package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Nemutagk/thinodium"
	"github.com/Nemutagk/thinodium/config"
	"github.com/Nemutagk/thinodium/driver/mongodb"
	"github.com/Nemutagk/thinodium/helper"
	"github.com/Nemutagk/thinodium/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	url        string
	verbose    bool

	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "thinodium",
		Short:         "Raw CRUD over MongoDB collections configured for thinodium",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("loading .env: %w", err)
			}

			lc := logger.FromEnv("thinodium")
			if opts.verbose {
				lc.Level = "debug"
			}
			opts.log = logger.New(lc).With(zap.String("run_id", helper.GetUuidV7()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "thinodium.yaml", "YAML file with the connection and model settings")
	cmd.PersistentFlags().StringVar(&opts.url, "url", "", "MongoDB connection string (overrides the config file)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newInitCmd(opts),
		newGetCmd(opts),
		newAllCmd(opts),
		newInsertCmd(opts),
		newUpdateCmd(opts),
		newRemoveCmd(opts),
	)
	return cmd
}

// Execute corre el comando raíz; lo llama main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig usa el archivo si existe; --url tiene prioridad.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && o.url != "":
		cfg = &config.Config{}
	default:
		return nil, err
	}

	if o.url != "" {
		cfg.URL = o.url
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) open(ctx context.Context) (*mongodb.Database, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := thinodium.Open(ctx, cfg.URL, cfg.Options, thinodium.WithLogger(o.log))
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

// withModel conecta, inicializa el modelo name y corre fn.
func (o *rootOptions) withModel(ctx context.Context, name string, fn func(*mongodb.Model) error) (err error) {
	db, cfg, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if derr := db.Disconnect(context.Background()); derr != nil && err == nil {
			err = derr
		}
	}()

	mc, err := cfg.Model(name)
	if err != nil {
		return err
	}
	m, err := db.Model(ctx, name, mc)
	if err != nil {
		return err
	}
	return fn(m)
}
