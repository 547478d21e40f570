package migrate

import (
	"context"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
)

// Names of the source catalog entries every provenance relation points at.
const (
	courtListenerSource = "Court Listener"
	fjcSource           = "Federal Judicial Center"
	scdbSource          = "The Supreme Court Database"
	archiveSource       = "Internet Archive"
)

// sourceRef describes one provenance attachment: which catalog source the
// data came from, the record's identifier there, a short label for the
// record kind and an optional public URL.
type sourceRef struct {
	Source   string
	RecordID string
	Label    string
	WebURL   string
	// ExtraURLs are additional links carried on the same relation, such
	// as an archived PDF or audio file.
	ExtraURLs []string
	// MediaURL points at the hosted media file of an archive source.
	MediaURL string
}

// sourceRelations emits a Sources relation per reference, with the
// database identifier, description and web URL attached to the relation's
// own id, never to the entity. Unresolvable sources are skipped.
func (e *Engine) sourceRelations(ctx context.Context, fromID string, refs ...sourceRef) ([]graph.Op, error) {
	var ops []graph.Op
	for _, ref := range refs {
		sourceID, err := e.catalog.SourceID(ctx, ref.Source)
		if err != nil {
			return nil, err
		}
		if sourceID == "" {
			logger.Error("[Catalog] Unknown source", "name", ref.Source)
			continue
		}

		rel := graph.MakeRelation(fromID, sourceID, graph.SourcesProperty)
		relID := rel.Relation.ID
		ops = append(ops, rel)

		if ref.RecordID != "" {
			propertyID, err := e.property(ctx, "source", "Database identifier")
			if err != nil {
				return nil, err
			}
			if propertyID != "" {
				ops = append(ops, graph.MakeText(relID, propertyID, ref.RecordID))
			}
			if ref.Label != "" {
				ops = append(ops, graph.MakeText(relID, graph.DescriptionProperty, ref.Label))
			}
		}
		if ref.WebURL != "" {
			ops = append(ops, urlTriple(relID, graph.WebURLProperty, ref.WebURL))
		}
		for _, extra := range ref.ExtraURLs {
			ops = append(ops, urlTriple(relID, graph.WebURLProperty, extra))
		}
		if ref.MediaURL != "" {
			ops = append(ops, urlTriple(relID, graph.MediaURLProperty, ref.MediaURL))
		}
	}
	return ops, nil
}
