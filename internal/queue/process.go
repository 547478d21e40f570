package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openjurist/lawgraph/internal/util"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/migrate"
	"github.com/openjurist/lawgraph/pkg/publish"
	"github.com/openjurist/lawgraph/pkg/store"
	pgxstore "github.com/openjurist/lawgraph/pkg/store/pgx"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validate = validator.New()

// MigrateJobMsg asks the worker to materialize every pending record of
// one kind, resuming after the given start key.
type MigrateJobMsg struct {
	Message string `json:"message"`
	Kind    string `json:"kind" validate:"required,oneof=court person position docket originating_docket opinion cluster argument"`
	Start   string `json:"start"`
}

// CitationJobMsg asks the worker to expand citation edges for every
// cluster that already has an assigned id.
type CitationJobMsg struct {
	Message string `json:"message"`
}

// NewEngine builds a fresh engine bound to the pool, configured from the
// environment. Engines are single use; a retried job gets a new one.
func NewEngine(conn *pgxpool.Pool) (*migrate.Engine, error) {
	audit, err := publish.NewAuditWriter(util.GetEnvString("AUDIT_DIR", "audit"))
	if err != nil {
		return nil, fmt.Errorf("failed to create audit writer: %w", err)
	}

	st := pgxstore.NewStore(conn)
	return migrate.New(migrate.Config{
		Catalog:        pgxstore.NewCatalog(conn),
		Ledger:         st,
		Source:         st,
		Publisher:      publish.NewAPIClient(util.GetEnv("PUBLISH_API_URL")),
		Audit:          audit,
		SpaceID:        util.GetEnv("SPACE_ID"),
		Author:         util.GetEnv("AUTHOR_ID"),
		FlushThreshold: int(util.GetEnvNumeric("FLUSH_THRESHOLD", 0)),
	}), nil
}

func ProcessMigrateMessage(
	ctx context.Context,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(MigrateJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to unmarshal migrate job: %w", err)
	}
	if err := validate.Struct(data); err != nil {
		return fmt.Errorf("invalid migrate job: %w", err)
	}

	logger.Info("[Queue] Processing migrate job", "kind", data.Kind, "start", data.Start)

	maxTries := int(util.GetEnvNumeric("JOB_MAX_TRIES", 3))
	return util.RetryErrWithContext(ctx, maxTries, func(ctx context.Context) error {
		eng, err := NewEngine(conn)
		if err != nil {
			return err
		}
		return eng.Run(ctx, store.RecordKind(data.Kind), data.Start)
	})
}

func ProcessCitationMessage(
	ctx context.Context,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(CitationJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to unmarshal citation job: %w", err)
	}

	logger.Info("[Queue] Processing citation job")

	maxTries := int(util.GetEnvNumeric("JOB_MAX_TRIES", 3))
	return util.RetryErrWithContext(ctx, maxTries, func(ctx context.Context) error {
		eng, err := NewEngine(conn)
		if err != nil {
			return err
		}
		return eng.RunCitations(ctx)
	})
}
