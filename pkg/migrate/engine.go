// Package migrate implements the incremental materialization engine: it
// walks source records, maps each one to graph operations, accumulates
// them in a bounded batch and publishes the batch as edits, tracking
// progress in the source database itself.
package migrate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/publish"
	"github.com/openjurist/lawgraph/pkg/store"
)

// pendingPageSize bounds how many pending keys one scan pulls.
const pendingPageSize = 200

// Engine materializes source records into graph operations and publishes
// them in bounded batches. It is not safe for concurrent use; each run
// owns one engine.
type Engine struct {
	catalog store.Catalog
	ledger  store.Ledger
	source  store.SourceStore
	pub     publish.Publisher
	audit   *publish.AuditWriter

	batch   *graph.Batch
	spaceID string
	author  string

	// inProgress maps records currently being materialized to their
	// assigned id, so reference cycles resolve to forward references
	// instead of recursing forever.
	inProgress map[string]string
	flushSeq   int
}

type Config struct {
	Catalog   store.Catalog
	Ledger    store.Ledger
	Source    store.SourceStore
	Publisher publish.Publisher
	Audit     *publish.AuditWriter

	SpaceID string
	Author  string
	// FlushThreshold overrides the default batch bound when positive.
	FlushThreshold int
}

func New(cfg Config) *Engine {
	return &Engine{
		catalog:    cfg.Catalog,
		ledger:     cfg.Ledger,
		source:     cfg.Source,
		pub:        cfg.Publisher,
		audit:      cfg.Audit,
		batch:      graph.NewBatch(cfg.FlushThreshold),
		spaceID:    cfg.SpaceID,
		author:     cfg.Author,
		inProgress: make(map[string]string),
	}
}

func progressKey(kind store.RecordKind, key string) string {
	return string(kind) + "|" + key
}

// Run materializes every pending record of one kind, resuming after the
// given start key. Any error rolls back the whole run's ledger markers
// before propagating.
func (e *Engine) Run(ctx context.Context, kind store.RecordKind, start string) error {
	if kind == store.KindCitation {
		return fmt.Errorf("citations are expanded per cluster, use the citations run")
	}

	// A run killed between id assignment and a confirmed publish leaves
	// records holding ids whose operations never reached the graph, and
	// the pending scan would skip them forever. Their edited markers
	// survive until ClearTouched, so reset them before scanning.
	if err := e.ledger.ResetRun(ctx); err != nil {
		return fmt.Errorf("failed to reset markers left by a previous run: %w", err)
	}

	logger.Info("[Engine] Starting run", "kind", kind, "after", start)

	processed := 0
	cursor := start
	for {
		keys, err := e.source.PendingKeys(ctx, kind, cursor, pendingPageSize)
		if err != nil {
			return e.rollback(ctx, fmt.Errorf("failed to scan pending %s records: %w", kind, err))
		}
		if len(keys) == 0 {
			break
		}

		for _, key := range keys {
			ops, _, err := e.materialize(ctx, kind, key)
			if err != nil {
				return e.rollback(ctx, fmt.Errorf("failed to materialize %s %s: %w", kind, key, err))
			}
			for _, op := range ops {
				e.batch.Append(op)
			}
			processed++

			if e.batch.ShouldFlush() {
				if err := e.flush(ctx, fmt.Sprintf("%s_%s", kind, key)); err != nil {
					return e.rollback(ctx, err)
				}
			}
		}
		cursor = keys[len(keys)-1]
	}

	if err := e.flush(ctx, fmt.Sprintf("%s_final", kind)); err != nil {
		return e.rollback(ctx, err)
	}

	logger.Info("[Engine] Run finished", "kind", kind, "processed", processed)
	return nil
}

// RunCitations expands citation edges for every cluster that already has
// an assigned id, one unmaterialized citation at a time.
func (e *Engine) RunCitations(ctx context.Context) error {
	if err := e.ledger.ResetRun(ctx); err != nil {
		return fmt.Errorf("failed to reset markers left by a previous run: %w", err)
	}

	clusters, err := e.source.ClustersWithIDs(ctx)
	if err != nil {
		return e.rollback(ctx, fmt.Errorf("failed to list clusters: %w", err))
	}

	logger.Info("[Engine] Starting citation expansion", "clusters", len(clusters))

	processed := 0
	for _, clusterID := range clusters {
		for {
			cit, err := e.source.NextCitation(ctx, clusterID)
			if err != nil {
				return e.rollback(ctx, fmt.Errorf("failed to scan citations for cluster %d: %w", clusterID, err))
			}
			if cit == nil {
				break
			}

			ops, _, err := e.citation(ctx, cit)
			if err != nil {
				return e.rollback(ctx, fmt.Errorf("failed to materialize citation %d: %w", cit.ID, err))
			}
			for _, op := range ops {
				e.batch.Append(op)
			}
			processed++

			if e.batch.ShouldFlush() {
				if err := e.flush(ctx, fmt.Sprintf("citation_%d", cit.ID)); err != nil {
					return e.rollback(ctx, err)
				}
			}
		}
	}

	if err := e.flush(ctx, "citation_final"); err != nil {
		return e.rollback(ctx, err)
	}

	logger.Info("[Engine] Citation expansion finished", "citations", processed)
	return nil
}

func (e *Engine) materialize(ctx context.Context, kind store.RecordKind, key string) ([]graph.Op, string, error) {
	switch kind {
	case store.KindCourt:
		return e.court(ctx, key)
	case store.KindPerson:
		id, err := parseKey(key)
		if err != nil {
			return nil, "", err
		}
		return e.person(ctx, id)
	case store.KindPosition:
		id, err := parseKey(key)
		if err != nil {
			return nil, "", err
		}
		return e.positionByID(ctx, id)
	case store.KindDocket:
		id, err := parseKey(key)
		if err != nil {
			return nil, "", err
		}
		return e.docket(ctx, id)
	case store.KindOriginatingDocket:
		id, err := parseKey(key)
		if err != nil {
			return nil, "", err
		}
		return e.originatingDocket(ctx, id)
	case store.KindCluster:
		id, err := parseKey(key)
		if err != nil {
			return nil, "", err
		}
		return e.cluster(ctx, id)
	case store.KindOpinion:
		id, err := parseKey(key)
		if err != nil {
			return nil, "", err
		}
		return e.opinionByID(ctx, id)
	case store.KindArgument:
		id, err := parseKey(key)
		if err != nil {
			return nil, "", err
		}
		return e.argumentByID(ctx, id)
	default:
		return nil, "", fmt.Errorf("unknown record kind %q", kind)
	}
}

func parseKey(key string) (int64, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad record key %q: %w", key, err)
	}
	return id, nil
}

// begin assigns and persists a fresh external id for a record and marks
// it touched. The caller must already have checked for an assigned id.
func (e *Engine) begin(ctx context.Context, kind store.RecordKind, key string) (string, func(), error) {
	id := graph.NewID()
	pk := progressKey(kind, key)
	e.inProgress[pk] = id
	done := func() { delete(e.inProgress, pk) }

	if err := e.ledger.MarkAssigned(ctx, kind, key, id); err != nil {
		done()
		return "", nil, fmt.Errorf("failed to record id for %s %s: %w", kind, key, err)
	}
	if err := e.ledger.MarkTouched(ctx, kind, key); err != nil {
		done()
		return "", nil, fmt.Errorf("failed to mark %s %s touched: %w", kind, key, err)
	}
	return id, done, nil
}

// flush publishes the accumulated batch as one edit. Ledger markers stay
// intact when the publish fails, so a later rollback can undo the run.
func (e *Engine) flush(ctx context.Context, label string) error {
	ops := e.batch.Drain()
	if len(ops) == 0 {
		return nil
	}

	valid, invalid := graph.StripInvalid(ops)
	if len(invalid) > 0 {
		logger.Warn("[Engine] Dropping operations with missing fields", "count", len(invalid), "batch", label)
	}
	if len(valid) == 0 {
		return nil
	}

	e.flushSeq++
	edit := publish.Edit{
		SpaceID: e.spaceID,
		Author:  e.author,
		Name:    fmt.Sprintf("lawgraph %s batch %d", label, e.flushSeq),
		Ops:     valid,
	}

	if e.audit != nil {
		if path, err := e.audit.Write(edit, label); err != nil {
			logger.Warn("[Engine] Failed to write audit artifact", "error", err)
		} else {
			logger.Debug("[Engine] Wrote audit artifact", "path", path)
		}
	}

	txHash, err := e.pub.Publish(ctx, edit)
	if err != nil {
		return fmt.Errorf("failed to publish batch %d: %w", e.flushSeq, err)
	}
	logger.Info("[Engine] Published edit", "batch", e.flushSeq, "ops", len(valid), "tx", txHash)

	if err := e.ledger.ClearTouched(ctx); err != nil {
		return fmt.Errorf("failed to clear run markers after publish: %w", err)
	}
	return nil
}

// rollback resets ledger state for everything the failed run touched and
// returns the original cause.
func (e *Engine) rollback(ctx context.Context, cause error) error {
	logger.Error("[Engine] Run failed, rolling back touched records", "error", cause)
	if err := e.ledger.ResetRun(ctx); err != nil {
		return fmt.Errorf("%w (rollback also failed: %v)", cause, err)
	}
	return cause
}

// dateField pairs a property name with an optional source date.
type dateField struct {
	name string
	when *time.Time
}

// timeTriple emits a TIME triple with the display format for the source
// granularity. Courts and dockets have no granularity column; they pass
// the empty string and get the full-date format.
func timeTriple(entityID, attributeID string, t time.Time, granularity string) graph.Op {
	return graph.MakeTriple(entityID, attributeID, graph.Value{
		Kind:   graph.TimeValue,
		Value:  t.UTC().Format(time.RFC3339),
		Format: dateFormat(granularity),
	})
}

func numberTriple(entityID, attributeID string, value string) graph.Op {
	return graph.MakeTriple(entityID, attributeID, graph.Value{
		Kind:  graph.NumberValue,
		Value: value,
	})
}

func urlTriple(entityID, attributeID, value string) graph.Op {
	return graph.MakeTriple(entityID, attributeID, graph.Value{
		Kind:  graph.URLValue,
		Value: value,
	})
}

func checkboxTriple(entityID, attributeID string, set bool) graph.Op {
	value := "0"
	if set {
		value = "1"
	}
	return graph.MakeTriple(entityID, attributeID, graph.Value{
		Kind:  graph.CheckboxValue,
		Value: value,
	})
}

// property resolves a property id and logs the miss.
func (e *Engine) property(ctx context.Context, owner, name string) (string, error) {
	id, err := e.catalog.Property(ctx, owner, name)
	if err != nil {
		return "", err
	}
	if id == "" {
		logger.Error("[Catalog] Unknown property", "owner", owner, "name", name)
	}
	return id, nil
}

// choice resolves a property and choice pair, logging misses.
func (e *Engine) choice(ctx context.Context, owner, name, choice string) (string, string, error) {
	propertyID, choiceID, err := e.catalog.PropertyChoice(ctx, owner, name, choice)
	if err != nil {
		return "", "", err
	}
	if propertyID == "" {
		logger.Error("[Catalog] Unknown property", "owner", owner, "name", name)
	} else if choiceID == "" {
		logger.Error("[Catalog] Unknown choice", "owner", owner, "name", name, "choice", choice)
	}
	return propertyID, choiceID, nil
}

// typeRelation emits the Types relation for a freshly created entity.
func (e *Engine) typeRelation(ctx context.Context, entityID, typeName string) ([]graph.Op, error) {
	typeID, err := e.catalog.TypeID(ctx, typeName)
	if err != nil {
		return nil, err
	}
	if typeID == "" {
		logger.Error("[Catalog] Unknown type", "name", typeName)
		return nil, nil
	}
	return []graph.Op{graph.MakeRelation(entityID, typeID, graph.TypesProperty)}, nil
}

// choiceRelation emits a choice relation (for example a jurisdiction or a
// precedential status) when both the property and the choice resolve. The
// relation id is returned for provenance attachment.
func (e *Engine) choiceRelation(ctx context.Context, entityID, owner, name, code string) ([]graph.Op, string, error) {
	propertyID, choiceID, err := e.choice(ctx, owner, name, code)
	if err != nil {
		return nil, "", err
	}
	if propertyID == "" || choiceID == "" {
		return nil, "", nil
	}
	op := graph.MakeRelation(entityID, choiceID, propertyID)
	return []graph.Op{op}, op.Relation.ID, nil
}
