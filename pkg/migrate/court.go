package migrate

import (
	"context"
	"fmt"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/store"
)

const defaultCourtCover = "V57bURTE52Y6xzQpV2ietA"

// court materializes one court and, recursively, the courts it appeals to
// and receives appeals from.
func (e *Engine) court(ctx context.Context, key string) ([]graph.Op, string, error) {
	court, err := e.source.Court(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if court == nil {
		logger.Warn("[Court] Record not found", "id", key)
		return nil, "", nil
	}
	if court.GeoID != "" {
		return nil, court.GeoID, nil
	}
	if id, ok := e.inProgress[progressKey(store.KindCourt, key)]; ok {
		return nil, id, nil
	}

	id, done, err := e.begin(ctx, store.KindCourt, key)
	if err != nil {
		return nil, "", err
	}
	defer done()

	logger.Debug("[Court] Materializing", "id", key, "name", court.FullName)

	ops := []graph.Op{graph.MakeText(id, graph.NameProperty, court.FullName)}
	ops = append(ops, graph.MakeRelation(id, defaultCourtCover, graph.CoverProperty))

	blockOps, err := e.courtBlocks(ctx, id)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, blockOps...)

	if court.StartDate != nil {
		ops = append(ops, timeTriple(id, graph.StartTimeProperty, *court.StartDate, ""))
	}
	if court.EndDate != nil {
		ops = append(ops, timeTriple(id, graph.EndTimeProperty, *court.EndDate, ""))
	}
	if court.URL != "" {
		propertyID, err := e.property(ctx, "court", "Website")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, urlTriple(id, propertyID, court.URL))
		}
	}
	if court.CitationString != "" {
		propertyID, err := e.property(ctx, "court", "Citation abbreviation")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, graph.MakeText(id, propertyID, court.CitationString))
		}
	}

	typeOps, err := e.typeRelation(ctx, id, "Court")
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, typeOps...)

	ref := sourceRef{Source: courtListenerSource, RecordID: court.ID, Label: "Court"}

	if court.Jurisdiction != "" {
		label := jurisdictions[court.Jurisdiction]
		if label == "" {
			logger.Warn("[Court] Unknown jurisdiction code", "id", key, "code", court.Jurisdiction)
		} else {
			choiceOps, relID, err := e.choiceRelation(ctx, id, "court", "Jurisdiction", label)
			if err != nil {
				return nil, "", err
			}
			ops = append(ops, choiceOps...)
			if relID != "" {
				provOps, err := e.sourceRelations(ctx, relID, ref)
				if err != nil {
					return nil, "", err
				}
				ops = append(ops, provOps...)
			}
		}
	}

	appealOps, err := e.courtAppeals(ctx, id, court.ID, ref)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, appealOps...)

	provOps, err := e.sourceRelations(ctx, id, ref)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, provOps...)

	return ops, id, nil
}

// courtAppeals links a court to the courts above and below it, creating
// the neighbors first when they have no id yet.
func (e *Engine) courtAppeals(ctx context.Context, id, courtID string, ref sourceRef) ([]graph.Op, error) {
	var ops []graph.Op

	appealsTo, err := e.source.CourtAppealsTo(ctx, courtID)
	if err != nil {
		return nil, err
	}
	for _, higher := range appealsTo {
		propertyID, err := e.property(ctx, "court", "Appeals to")
		if err != nil {
			return nil, err
		}
		depOps, higherID, err := e.court(ctx, higher)
		if err != nil {
			return nil, err
		}
		ops = append(ops, depOps...)
		if propertyID == "" || higherID == "" {
			continue
		}
		rel := graph.MakeRelation(id, higherID, propertyID)
		ops = append(ops, rel)
		provOps, err := e.sourceRelations(ctx, rel.Relation.ID, ref)
		if err != nil {
			return nil, err
		}
		ops = append(ops, provOps...)
	}

	appealsFrom, err := e.source.CourtAppealsFrom(ctx, courtID)
	if err != nil {
		return nil, err
	}
	for _, lower := range appealsFrom {
		propertyID, err := e.property(ctx, "court", "Receives appeals from")
		if err != nil {
			return nil, err
		}
		depOps, lowerID, err := e.court(ctx, lower)
		if err != nil {
			return nil, err
		}
		ops = append(ops, depOps...)
		if propertyID == "" || lowerID == "" {
			continue
		}
		rel := graph.MakeRelation(id, lowerID, propertyID)
		ops = append(ops, rel)
		provOps, err := e.sourceRelations(ctx, rel.Relation.ID, ref)
		if err != nil {
			return nil, err
		}
		ops = append(ops, provOps...)
	}

	return ops, nil
}

// courtBlocks attaches the four query blocks of a court page: current and
// past judges, opinions and dockets.
func (e *Engine) courtBlocks(ctx context.Context, courtEntityID string) ([]graph.Op, error) {
	var ops []graph.Op
	var stream graph.PositionStream

	judgeTypeID, err := e.catalog.TypeID(ctx, "Judge")
	if err != nil {
		return nil, err
	}

	if judgeTypeID != "" {
		block := graph.MakeDataBlock(courtEntityID, "Current Judges", stream.Next())
		ops = append(ops, block.Ops...)
		filter := graph.QueryFilter(e.spaceID, judgeTypeID, graph.WorksAtProperty, courtEntityID)
		ops = append(ops, graph.MakeText(block.BlockID, graph.FilterProperty, filter))
		ops = append(ops, graph.MakeRelation(block.RelationID, graph.GalleryView, graph.ViewProperty))

		block = graph.MakeDataBlock(courtEntityID, "Past Judges", stream.Next())
		ops = append(ops, block.Ops...)
		filter = graph.QueryFilter(e.spaceID, judgeTypeID, graph.WorkedAtProperty, courtEntityID)
		ops = append(ops, graph.MakeText(block.BlockID, graph.FilterProperty, filter))
		ops = append(ops, graph.MakeRelation(block.RelationID, graph.TableView, graph.ViewProperty))
		colOps, err := e.shownColumns(ctx, block.RelationID, "Judge", "Gender", "Ethnicity", "Political affiliation")
		if err != nil {
			return nil, err
		}
		ops = append(ops, colOps...)
	}

	blockOps, err := e.courtQueryBlock(ctx, courtEntityID, stream.Next(), "Court Opinions",
		"Opinion Group", "Opinion group", "Judges", "Date filed")
	if err != nil {
		return nil, err
	}
	ops = append(ops, blockOps...)

	blockOps, err = e.courtQueryBlock(ctx, courtEntityID, stream.Next(), "Court Dockets",
		"Docket", "Docket", "Docket number", "Opinions")
	if err != nil {
		return nil, err
	}
	ops = append(ops, blockOps...)

	return ops, nil
}

// courtQueryBlock builds one table block listing entities of a type whose
// "Assigned court" points at the court.
func (e *Engine) courtQueryBlock(
	ctx context.Context,
	courtEntityID, position, blockName, typeName, propertyOwner string,
	columns ...string,
) ([]graph.Op, error) {
	typeID, err := e.catalog.TypeID(ctx, typeName)
	if err != nil {
		return nil, err
	}
	assignedID, err := e.property(ctx, propertyOwner, "Assigned court")
	if err != nil {
		return nil, err
	}
	if typeID == "" || assignedID == "" {
		return nil, nil
	}

	block := graph.MakeDataBlock(courtEntityID, blockName, position)
	ops := block.Ops
	filter := graph.QueryFilter(e.spaceID, typeID, assignedID, courtEntityID)
	ops = append(ops, graph.MakeText(block.BlockID, graph.FilterProperty, filter))
	ops = append(ops, graph.MakeRelation(block.RelationID, graph.TableView, graph.ViewProperty))

	colOps, err := e.shownColumns(ctx, block.RelationID, propertyOwner, columns...)
	if err != nil {
		return nil, err
	}
	return append(ops, colOps...), nil
}

// shownColumns emits one shown-column relation per resolvable property.
func (e *Engine) shownColumns(ctx context.Context, relationID, owner string, columns ...string) ([]graph.Op, error) {
	var ops []graph.Op
	for _, col := range columns {
		propertyID, err := e.property(ctx, owner, col)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve column %s: %w", col, err)
		}
		if propertyID == "" {
			continue
		}
		ops = append(ops, graph.MakeRelation(relationID, propertyID, graph.ShownColumnsProperty))
	}
	return ops, nil
}
