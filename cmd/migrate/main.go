package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openjurist/lawgraph/internal/queue"
	"github.com/openjurist/lawgraph/internal/util"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/logger/console"
	"github.com/openjurist/lawgraph/pkg/store"

	gomigrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	flagKind  string
	flagStart string
)

var rootCmd = &cobra.Command{
	Use:   "lawgraph",
	Short: "Publish court records from a CourtListener database as knowledge graph edits",
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Materialize every pending record of one kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(flagKind)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := runSchemaMigrations(); err != nil {
			return err
		}

		conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer conn.Close()

		eng, err := queue.NewEngine(conn)
		if err != nil {
			return err
		}
		return eng.Run(ctx, kind, flagStart)
	},
}

var citationsCmd = &cobra.Command{
	Use:   "citations",
	Short: "Expand citation edges for every cluster with an assigned id",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := runSchemaMigrations(); err != nil {
			return err
		}

		conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer conn.Close()

		eng, err := queue.NewEngine(conn)
		if err != nil {
			return err
		}
		return eng.RunCitations(ctx)
	},
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Queue a migration job for the worker instead of running it inline",
	RunE: func(cmd *cobra.Command, args []string) error {
		queueName := queue.CitationQueue
		var body []byte
		var err error

		if flagKind != "" {
			kind, kindErr := parseKind(flagKind)
			if kindErr != nil {
				return kindErr
			}
			queueName = queue.MigrateQueue
			body, err = json.Marshal(queue.MigrateJobMsg{
				Kind:  string(kind),
				Start: flagStart,
			})
		} else {
			body, err = json.Marshal(queue.CitationJobMsg{})
		}
		if err != nil {
			return fmt.Errorf("failed to marshal job: %w", err)
		}

		conn := queue.Init()
		defer conn.Close()
		ch, chErr := conn.Channel()
		if chErr != nil {
			return fmt.Errorf("failed to open channel: %w", chErr)
		}
		defer ch.Close()

		if err := queue.SetupQueues(ch, []string{queueName}); err != nil {
			return err
		}
		if err := queue.PublishFIFO(ch, queueName, body); err != nil {
			return fmt.Errorf("failed to publish job: %w", err)
		}

		logger.Info("Job queued", "queue", queueName, "kind", flagKind, "start", flagStart)
		return nil
	},
}

func parseKind(name string) (store.RecordKind, error) {
	for _, kind := range store.AllKinds() {
		if kind == store.KindCitation {
			continue
		}
		if string(kind) == name {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown record kind %q", name)
}

// runSchemaMigrations installs the bookkeeping columns and catalog tables
// before the first run. Already-applied migrations are a no-op.
func runSchemaMigrations() error {
	dir := util.GetEnvString("MIGRATIONS_DIR", "db/migrations")
	m, err := gomigrate.New("file://"+dir, util.GetEnv("DATABASE_URL"))
	if err != nil {
		return fmt.Errorf("failed to load schema migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, gomigrate.ErrNoChange) {
		return fmt.Errorf("failed to apply schema migrations: %w", err)
	}
	return nil
}

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	migrateCmd.Flags().StringVar(&flagKind, "kind", "", "record kind to materialize")
	migrateCmd.Flags().StringVar(&flagStart, "start", "", "resume after this source key")
	_ = migrateCmd.MarkFlagRequired("kind")

	enqueueCmd.Flags().StringVar(&flagKind, "kind", "", "record kind to materialize (empty queues a citation job)")
	enqueueCmd.Flags().StringVar(&flagStart, "start", "", "resume after this source key")

	rootCmd.AddCommand(migrateCmd, citationsCmd, enqueueCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("Run failed", "err", err)
	}
}
