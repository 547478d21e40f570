package migrate

import (
	"context"
	"fmt"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/store"
)

// originatingDocket materializes the lower-court docket information of an
// appellate docket. The appellate docket emits the links in both
// directions.
func (e *Engine) originatingDocket(ctx context.Context, key int64) ([]graph.Op, string, error) {
	orig, err := e.source.OriginatingDocket(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if orig == nil {
		logger.Warn("[OrigDocket] Record not found", "id", key)
		return nil, "", nil
	}
	recordKey := fmt.Sprintf("%d", orig.ID)
	if orig.GeoID != "" {
		return nil, orig.GeoID, nil
	}
	if id, ok := e.inProgress[progressKey(store.KindOriginatingDocket, recordKey)]; ok {
		return nil, id, nil
	}

	id, done, err := e.begin(ctx, store.KindOriginatingDocket, recordKey)
	if err != nil {
		return nil, "", err
	}
	defer done()

	logger.Debug("[OrigDocket] Materializing", "id", orig.ID, "number", orig.DocketNumber)

	name := "Lower Court Docket"
	if orig.DocketNumber != "" {
		name = "Lower Court Docket - " + orig.DocketNumber
	}
	ops := []graph.Op{graph.MakeText(id, graph.NameProperty, name)}

	typeOps, err := e.typeRelation(ctx, id, "Docket")
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, typeOps...)

	if orig.DocketNumber != "" {
		propertyID, err := e.property(ctx, "docket", "Docket number")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, graph.MakeText(id, propertyID, orig.DocketNumber))
		}
	}

	for _, judge := range []struct {
		name     string
		personID *int64
	}{
		{"Assigned to", orig.AssignedToID},
		{"Ordering judge", orig.OrderingJudgeID},
	} {
		if judge.personID == nil {
			continue
		}
		propertyID, err := e.property(ctx, "docket", judge.name)
		if err != nil {
			return nil, "", err
		}
		depOps, personID, err := e.personEntity(ctx, *judge.personID)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, depOps...)
		if propertyID == "" || personID == "" {
			continue
		}
		ops = append(ops, graph.MakeRelation(id, personID, propertyID))
	}

	for _, field := range []dateField{
		{"Date filed", orig.DateFiled},
		{"Date disposed", orig.DateDisposed},
		{"Date judgement", orig.DateJudgment},
	} {
		if field.when == nil {
			continue
		}
		propertyID, err := e.property(ctx, "docket", field.name)
		if err != nil {
			return nil, "", err
		}
		if propertyID == "" {
			continue
		}
		ops = append(ops, timeTriple(id, propertyID, *field.when, ""))
	}

	refs := []sourceRef{{
		Source:   courtListenerSource,
		RecordID: recordKey,
		Label:    "Originating court",
	}}
	provOps, err := e.sourceRelations(ctx, id, refs...)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, provOps...)

	return ops, id, nil
}
