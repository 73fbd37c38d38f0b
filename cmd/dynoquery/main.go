package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dynoquery/dynoquery/internal/catalog"
	"github.com/dynoquery/dynoquery/internal/config"
	"github.com/dynoquery/dynoquery/internal/console"
	"github.com/dynoquery/dynoquery/internal/generator"
	"github.com/dynoquery/dynoquery/internal/reports"
	"github.com/dynoquery/dynoquery/internal/session"
	"github.com/dynoquery/dynoquery/internal/store"
	"github.com/dynoquery/dynoquery/internal/utils"
)

func main() {
	var (
		host       string
		port       string
		user       string
		password   string
		database   string
		sslMode    string
		configFile string
		envFile    string
		logLevel   string
	)

	// connect builds an opened session from flags, config file and env
	connect := func() (*session.Session, *logrus.Logger, error) {
		logger := utils.SetupLogging(logLevel)
		utils.LoadEnvironmentVariables(envFile, logger)

		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, nil, err
		}
		if host != "" {
			cfg.Host = host
		}
		if port != "" {
			cfg.Port = port
		}
		if user != "" {
			cfg.User = user
		}
		if password != "" {
			cfg.Password = password
		}
		if database != "" {
			cfg.Database = database
		}
		if sslMode != "" {
			cfg.SSLMode = sslMode
		}

		if !utils.ValidateConnectionParams(cfg.Host, cfg.User, cfg.Database, cfg.Port, logger) {
			return nil, nil, fmt.Errorf("invalid connection parameters")
		}

		sess := session.New(cfg, logger)
		if err := sess.Open(); err != nil {
			return nil, nil, err
		}
		return sess, logger, nil
	}

	rootCmd := &cobra.Command{
		Use:   "dynoquery",
		Short: "An interactive schema-aware query tool for PostgreSQL",
		Long: `dynoquery

An interactive tool that discovers a PostgreSQL schema at runtime and
builds safe dynamic SQL on top of it: inserts, updates, deletes,
multi-table filtered search, synthetic data generation and prepared
reports, without any per-table code.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, logger, err := connect()
			if err != nil {
				return err
			}
			defer sess.Close()

			cons, err := console.NewConsole()
			if err != nil {
				return err
			}
			defer cons.Close()

			cat := catalog.New(sess, logger)
			app := &console.App{
				Console:   cons,
				Catalog:   cat,
				Store:     store.New(sess, cat, logger),
				Generator: generator.New(sess, cat, logger),
				Reports:   reports.NewRunner(sess, logger),
				Logger:    logger,
			}
			return app.Run()
		},
	}

	var (
		records   int
		allTables bool
	)
	generateCmd := &cobra.Command{
		Use:   "generate [table]",
		Short: "Generate synthetic rows for one table, or for every table with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !allTables && len(args) == 0 {
				return fmt.Errorf("a table name or --all is required")
			}

			sess, logger, err := connect()
			if err != nil {
				return err
			}
			defer sess.Close()

			cat := catalog.New(sess, logger)
			gen := generator.New(sess, cat, logger)

			if allTables {
				results, err := gen.GenerateAll(records)
				if err != nil {
					return err
				}
				failed := 0
				for _, r := range results {
					if r.Err != nil {
						failed++
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d tables failed", failed, len(results))
				}
				return nil
			}

			inserted, err := gen.Generate(args[0], records)
			if err != nil {
				return err
			}
			logger.Infof("Done, %d rows inserted", inserted)
			return nil
		},
	}
	generateCmd.Flags().IntVarP(&records, "records", "r", utils.GetEnvInt("PG_RECORDS", 10), "Number of rows to generate per table")
	generateCmd.Flags().BoolVar(&allTables, "all", false, "Populate every table in foreign key dependency order")
	rootCmd.AddCommand(generateCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&host, "host", "H", "", "PostgreSQL host (default: PG_HOST or localhost)")
	flags.StringVarP(&port, "port", "P", "", "PostgreSQL port (default: PG_PORT or 5432)")
	flags.StringVarP(&user, "user", "u", "", "PostgreSQL user (default: PG_USER or postgres)")
	flags.StringVarP(&password, "password", "p", "", "PostgreSQL password (default: PG_PASSWORD)")
	flags.StringVarP(&database, "database", "d", "", "PostgreSQL database (default: PG_DATABASE)")
	flags.StringVar(&sslMode, "sslmode", "", "PostgreSQL sslmode (default: PG_SSLMODE or disable)")
	flags.StringVarP(&configFile, "config", "c", "", "Path to a yaml config file (default: dynoquery.yaml if present)")
	flags.StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	flags.StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
