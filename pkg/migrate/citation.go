package migrate

import (
	"context"
	"fmt"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/store"
)

const defaultCitationCover = "BWk9j97KSmFJgXTsBPsAxD"

// citation materializes one citing→cited edge as an Authorities relation
// between the two opinion groups. The relation's id is recorded as the
// citation's external id, so a citation is a relation, not an entity.
func (e *Engine) citation(ctx context.Context, cit *store.Citation) ([]graph.Op, string, error) {
	recordKey := fmt.Sprintf("%d", cit.ID)
	if cit.GeoID != "" {
		return nil, cit.GeoID, nil
	}

	var ops []graph.Op
	var citedID string
	if cit.CitedClusterID != nil {
		depOps, depID, err := e.cluster(ctx, *cit.CitedClusterID)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, depOps...)
		citedID = depID
	}

	// The id is recorded even when the cited side cannot be resolved, so
	// the per-cluster scan always advances.
	id, done, err := e.begin(ctx, store.KindCitation, recordKey)
	if err != nil {
		return nil, "", err
	}
	defer done()

	if citedID == "" || cit.CitingClusterGeo == "" {
		logger.Warn("[Citation] Cited cluster unresolved, skipping relation", "id", cit.ID)
		return ops, id, nil
	}

	propertyID, err := e.property(ctx, "Opinion Group", "Authorities")
	if err != nil {
		return nil, "", err
	}
	if propertyID == "" {
		return ops, id, nil
	}

	ops = append(ops, graph.MakeRelationWithID(id, cit.CitingClusterGeo, citedID, propertyID))

	if cit.Parenthetical != "" {
		parenID, err := e.property(ctx, "Authorities", "Parenthetical")
		if err != nil {
			return nil, "", err
		}
		if parenID != "" {
			ops = append(ops, graph.MakeText(id, parenID, cit.Parenthetical))
		}
	}
	ops = append(ops, graph.MakeRelation(id, defaultCitationCover, graph.CoverProperty))

	if cit.Depth != nil {
		depthID, err := e.property(ctx, "Authorities", "Citation count")
		if err != nil {
			return nil, "", err
		}
		if depthID != "" {
			ops = append(ops, numberTriple(id, depthID, int64String(cit.Depth)))
		}
	}

	ref := sourceRef{
		Source:   courtListenerSource,
		RecordID: recordKey,
		Label:    "Citation",
	}
	if cit.CitingClusterSlug != "" && cit.CitingClusterID != nil {
		ref.WebURL = fmt.Sprintf("https://www.courtlistener.com/opinion/%d/%s/authorities/",
			*cit.CitingClusterID, cit.CitingClusterSlug)
	}
	provOps, err := e.sourceRelations(ctx, id, ref)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, provOps...)

	return ops, id, nil
}
