package migrate

import (
	"context"
	"fmt"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/store"
)

const pacerSource = "Public Access to Court Electronic Records (PACER)"

const defaultDocketCover = "JW2tsV6YJu1m3Hp1VHxE9a"

// docket materializes one docket: case name, court and judge links, the
// originating lower-court docket and the filing dates.
func (e *Engine) docket(ctx context.Context, key int64) ([]graph.Op, string, error) {
	docket, err := e.source.Docket(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if docket == nil {
		logger.Warn("[Docket] Record not found", "id", key)
		return nil, "", nil
	}
	recordKey := fmt.Sprintf("%d", docket.ID)
	if docket.GeoID != "" {
		return nil, docket.GeoID, nil
	}
	if id, ok := e.inProgress[progressKey(store.KindDocket, recordKey)]; ok {
		return nil, id, nil
	}

	id, done, err := e.begin(ctx, store.KindDocket, recordKey)
	if err != nil {
		return nil, "", err
	}
	defer done()

	caseName := firstNonEmpty(docket.CaseNameFull, docket.CaseName, docket.CaseNameShort)
	logger.Debug("[Docket] Materializing", "id", docket.ID, "case", caseName)

	ops := []graph.Op{graph.MakeText(id, graph.NameProperty, "Docket - "+caseName)}
	ops = append(ops, graph.MakeRelation(id, defaultDocketCover, graph.CoverProperty))

	typeOps, err := e.typeRelation(ctx, id, "Docket")
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, typeOps...)

	if caseName != "" {
		propertyID, err := e.property(ctx, "docket", "Case name")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, graph.MakeText(id, propertyID, caseName))
		}
	}

	refs := docketSourceRefs(docket)

	if docket.CourtID != "" {
		relOps, err := e.courtLink(ctx, id, "docket", "Assigned court", docket.CourtID, refs)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, relOps...)
	}
	if docket.AppealFromID != "" {
		relOps, err := e.courtLink(ctx, id, "docket", "Appeal from", docket.AppealFromID, refs)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, relOps...)
	}

	for _, judge := range []struct {
		name     string
		personID *int64
	}{
		{"Assigned to", docket.AssignedToID},
		{"Referred to", docket.ReferredToID},
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

	if docket.OriginatingID != nil {
		origOps, origID, err := e.originatingDocket(ctx, *docket.OriginatingID)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, origOps...)
		if origID != "" {
			propertyID, err := e.property(ctx, "docket", "Originating docket")
			if err != nil {
				return nil, "", err
			}
			if propertyID != "" {
				ops = append(ops, graph.MakeRelation(id, origID, propertyID))
			}
			parentID, err := e.property(ctx, "docket", "Parent docket")
			if err != nil {
				return nil, "", err
			}
			if parentID != "" {
				ops = append(ops, graph.MakeRelation(origID, id, parentID))
			}
		}
	}

	if docket.ParentDocketID != nil {
		depOps, parentGeoID, err := e.docket(ctx, *docket.ParentDocketID)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, depOps...)
		if parentGeoID != "" {
			propertyID, err := e.property(ctx, "docket", "Parent docket")
			if err != nil {
				return nil, "", err
			}
			if propertyID != "" {
				ops = append(ops, graph.MakeRelation(id, parentGeoID, propertyID))
			}
		}
	}

	dateOps, err := e.docketDates(ctx, id, docket)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, dateOps...)

	if docket.Cause != "" {
		propertyID, err := e.property(ctx, "docket", "Cause")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, graph.MakeText(id, propertyID, docket.Cause))
		}
	}
	if docket.JuryDemand != "" {
		propertyID, err := e.property(ctx, "docket", "Jury demand")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, graph.MakeText(id, propertyID, docket.JuryDemand))
		}
	}
	if docket.DocketNumber != "" {
		propertyID, err := e.property(ctx, "docket", "Docket number")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, graph.MakeText(id, propertyID, docket.DocketNumber))
		}
	}
	if docket.NatureOfSuit != "" {
		choiceOps, relID, err := e.choiceRelation(ctx, id, "docket", "Nature of suit", docket.NatureOfSuit)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, choiceOps...)
		if relID != "" {
			provOps, err := e.sourceRelations(ctx, relID, refs...)
			if err != nil {
				return nil, "", err
			}
			ops = append(ops, provOps...)
		}
	}

	provOps, err := e.sourceRelations(ctx, id, refs...)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, provOps...)

	// Oral arguments recorded against this docket are materialized with
	// it, so the docket carries its Arguments relations immediately
	// instead of waiting for the argument scan.
	args, err := e.source.DocketArguments(ctx, docket.ID)
	if err != nil {
		return nil, "", err
	}
	for _, arg := range args {
		argOps, _, err := e.argumentByID(ctx, arg.ID)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, argOps...)
	}

	return ops, id, nil
}

// courtLink materializes a court and relates it to an entity under the
// given property, with provenance on the relation.
func (e *Engine) courtLink(ctx context.Context, fromID, owner, name, courtID string, refs []sourceRef) ([]graph.Op, error) {
	propertyID, err := e.property(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	depOps, targetID, err := e.court(ctx, courtID)
	if err != nil {
		return nil, err
	}
	ops := depOps
	if propertyID == "" || targetID == "" {
		return ops, nil
	}
	rel := graph.MakeRelation(fromID, targetID, propertyID)
	ops = append(ops, rel)
	provOps, err := e.sourceRelations(ctx, rel.Relation.ID, refs...)
	if err != nil {
		return nil, err
	}
	return append(ops, provOps...), nil
}

func (e *Engine) docketDates(ctx context.Context, id string, docket *store.Docket) ([]graph.Op, error) {
	var ops []graph.Op
	for _, field := range []dateField{
		{"Date filed", docket.DateFiled},
		{"Date terminated", docket.DateTerminated},
		{"Date argued", docket.DateArgued},
	} {
		if field.when == nil {
			continue
		}
		propertyID, err := e.property(ctx, "docket", field.name)
		if err != nil {
			return nil, err
		}
		if propertyID == "" {
			continue
		}
		ops = append(ops, timeTriple(id, propertyID, *field.when, ""))
	}
	return ops, nil
}

// docketSourceRefs builds the provenance of a docket: the primary record
// plus PACER when the docket carries a PACER case id.
func docketSourceRefs(d *store.Docket) []sourceRef {
	refs := []sourceRef{{
		Source:   courtListenerSource,
		RecordID: fmt.Sprintf("%d", d.ID),
		Label:    "Docket",
	}}
	if d.Slug != "" {
		refs[0].WebURL = fmt.Sprintf("https://www.courtlistener.com/docket/%d/%s", d.ID, d.Slug)
	}
	if d.PacerCaseID != "" {
		refs = append(refs, sourceRef{
			Source:   pacerSource,
			RecordID: d.PacerCaseID,
			WebURL:   fmt.Sprintf("https://ecf.%s.uscourts.gov/cgi-bin/DktRpt.pl?%s", d.CourtID, d.PacerCaseID),
		})
	}
	return refs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
