package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/store"
)

const defaultOpinionCover = "LkvXiYi1cbtGa2zKMgdnMF"

// opinionByID loads an opinion and its cluster, then materializes it.
func (e *Engine) opinionByID(ctx context.Context, key int64) ([]graph.Op, string, error) {
	opinion, err := e.source.Opinion(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if opinion == nil {
		logger.Warn("[Opinion] Record not found", "id", key)
		return nil, "", nil
	}

	var cluster *store.Cluster
	if opinion.ClusterID != nil {
		cluster, err = e.source.Cluster(ctx, *opinion.ClusterID)
		if err != nil {
			return nil, "", err
		}
	}
	return e.opinion(ctx, opinion, cluster)
}

// opinion materializes one opinion. The cluster provides the case names,
// the filing date and the court; it may be nil for orphaned rows.
func (e *Engine) opinion(ctx context.Context, opinion *store.Opinion, cluster *store.Cluster) ([]graph.Op, string, error) {
	recordKey := fmt.Sprintf("%d", opinion.ID)
	if opinion.GeoID != "" {
		return nil, opinion.GeoID, nil
	}
	if id, ok := e.inProgress[progressKey(store.KindOpinion, recordKey)]; ok {
		return nil, id, nil
	}

	id, done, err := e.begin(ctx, store.KindOpinion, recordKey)
	if err != nil {
		return nil, "", err
	}
	defer done()

	logger.Debug("[Opinion] Materializing", "id", opinion.ID, "type", opinion.Type)

	var ops []graph.Op
	refs := opinionSourceRefs(opinion, cluster)

	var courtID string
	if cluster != nil {
		courtID = cluster.CourtID
		caseName := firstNonEmpty(cluster.CaseNameFull, cluster.CaseName, cluster.CaseNameShort)
		if caseName != "" {
			propertyID, err := e.property(ctx, "opinion", "Case name")
			if err != nil {
				return nil, "", err
			}
			if propertyID != "" {
				ops = append(ops, graph.MakeText(id, propertyID, caseName))
			}
		}
		if cluster.DateFiled != nil {
			propertyID, err := e.property(ctx, "opinion", "Date filed")
			if err != nil {
				return nil, "", err
			}
			if propertyID != "" {
				ops = append(ops, timeTriple(id, propertyID, *cluster.DateFiled, ""))
			}
		}
	}

	if source, markup := selectOpinionText(opinion); source != "" {
		ops = append(ops, contentBlocks(id, paragraphs(source, markup))...)
	}

	if courtID != "" {
		relOps, err := e.courtLink(ctx, id, "opinion", "Assigned court", courtID, refs)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, relOps...)
	}

	authorOps, authorLastName, err := e.opinionAuthors(ctx, id, opinion, cluster, refs)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, authorOps...)

	ops = append(ops, graph.MakeText(id, graph.NameProperty, opinionName(opinion, cluster, authorLastName)))

	typeOps, err := e.typeRelation(ctx, id, "Opinion")
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, typeOps...)
	ops = append(ops, graph.MakeRelation(id, defaultOpinionCover, graph.CoverProperty))

	joinOps, err := e.opinionJoinedBy(ctx, id, opinion, cluster, refs)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, joinOps...)

	panelOps, err := e.opinionPanel(ctx, id, opinion, refs)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, panelOps...)

	if cluster != nil {
		clusterGeo := cluster.GeoID
		if clusterGeo == "" {
			clusterGeo = e.inProgress[progressKey(store.KindCluster, fmt.Sprintf("%d", cluster.ID))]
		}
		if clusterGeo != "" {
			for _, link := range []struct {
				owner, name  string
				from, target string
			}{
				{"Opinion Group", "Opinions", clusterGeo, id},
				{"opinion", "Opinion group", id, clusterGeo},
			} {
				propertyID, err := e.property(ctx, link.owner, link.name)
				if err != nil {
					return nil, "", err
				}
				if propertyID == "" {
					continue
				}
				rel := graph.MakeRelation(link.from, link.target, propertyID)
				ops = append(ops, rel)
				provOps, err := e.sourceRelations(ctx, rel.Relation.ID, refs...)
				if err != nil {
					return nil, "", err
				}
				ops = append(ops, provOps...)
			}
		}
	}

	if opinion.Type != "" {
		choiceOps, relID, err := e.choiceRelation(ctx, id, "opinion", "Opinion type", opinion.Type)
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

	if opinion.DownloadURL != "" {
		propertyID, err := e.property(ctx, "opinion", "Download URL")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, urlTriple(id, propertyID, opinion.DownloadURL))
		}
	}
	if opinion.PerCuriam != nil {
		propertyID, err := e.property(ctx, "opinion", "Per curiam")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, checkboxTriple(id, propertyID, *opinion.PerCuriam))
		}
	}

	provOps, err := e.sourceRelations(ctx, id, refs...)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, provOps...)

	return ops, id, nil
}

// opinionName builds the display name: the opinion-type label, the
// author's last name and the shortest available case name.
func opinionName(o *store.Opinion, c *store.Cluster, authorLastName string) string {
	name := opinionTypes[o.Type]
	if name == "" {
		name = "Opinion"
	}
	if authorLastName != "" {
		name += " - " + authorLastName
	}
	if c != nil {
		if caseName := firstNonEmpty(c.CaseNameShort, c.CaseName, c.CaseNameFull); caseName != "" {
			name += " - " + caseName
		}
	}
	return name
}

// opinionAuthors relates the authoring judges to the opinion, preferring
// the structured author id over the free-text author string. The last
// name of the first resolved author feeds the entity name.
func (e *Engine) opinionAuthors(ctx context.Context, id string, opinion *store.Opinion, cluster *store.Cluster, refs []sourceRef) ([]graph.Op, string, error) {
	propertyID, err := e.property(ctx, "opinion", "Authors")
	if err != nil {
		return nil, "", err
	}

	var authorIDs []int64
	if opinion.AuthorID != nil {
		authorIDs = append(authorIDs, *opinion.AuthorID)
	} else if opinion.AuthorStr != "" && cluster != nil {
		for _, name := range nameListSplit.Split(opinion.AuthorStr, -1) {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			judgeID, err := e.source.JudgeByName(ctx, name, cluster.CourtID, cluster.DateFiled)
			if err != nil {
				return nil, "", err
			}
			if judgeID != 0 {
				authorIDs = append(authorIDs, judgeID)
			}
		}
	}

	var ops []graph.Op
	var lastName string
	for _, authorID := range authorIDs {
		author, err := e.source.Person(ctx, authorID)
		if err != nil {
			return nil, "", err
		}
		if author != nil && lastName == "" {
			lastName = author.NameLast
		}

		depOps, personID, err := e.personEntity(ctx, authorID)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, depOps...)
		if propertyID == "" || personID == "" {
			continue
		}
		rel := graph.MakeRelation(id, personID, propertyID)
		ops = append(ops, rel)
		provOps, err := e.sourceRelations(ctx, rel.Relation.ID, refs...)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, provOps...)
	}
	return ops, lastName, nil
}

// opinionJoinedBy relates the joining judges, falling back to the
// free-text joined-by string when the join table has no rows.
func (e *Engine) opinionJoinedBy(ctx context.Context, id string, opinion *store.Opinion, cluster *store.Cluster, refs []sourceRef) ([]graph.Op, error) {
	propertyID, err := e.property(ctx, "opinion", "Joined by")
	if err != nil {
		return nil, err
	}

	joined, err := e.source.OpinionJoinedBy(ctx, opinion.ID)
	if err != nil {
		return nil, err
	}

	var ops []graph.Op
	found := false
	for _, personID := range joined {
		if opinion.AuthorID != nil && personID == *opinion.AuthorID {
			continue
		}
		relOps, ok, err := e.judgeRelation(ctx, id, propertyID, personID, refs)
		if err != nil {
			return nil, err
		}
		ops = append(ops, relOps...)
		found = found || ok
	}
	if found || opinion.JoinedByStr == "" || cluster == nil {
		return ops, nil
	}

	for _, name := range strings.Split(opinion.JoinedByStr, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		judgeID, err := e.source.JudgeByName(ctx, name, cluster.CourtID, cluster.DateFiled)
		if err != nil {
			return nil, err
		}
		if judgeID == 0 {
			continue
		}
		relOps, _, err := e.judgeRelation(ctx, id, propertyID, judgeID, refs)
		if err != nil {
			return nil, err
		}
		ops = append(ops, relOps...)
	}
	return ops, nil
}

// opinionPanel relates the cluster's panel judges, excluding the author.
func (e *Engine) opinionPanel(ctx context.Context, id string, opinion *store.Opinion, refs []sourceRef) ([]graph.Op, error) {
	if opinion.ClusterID == nil {
		return nil, nil
	}
	panel, err := e.source.ClusterPanel(ctx, *opinion.ClusterID)
	if err != nil {
		return nil, err
	}
	if len(panel) == 0 {
		return nil, nil
	}

	propertyID, err := e.property(ctx, "opinion", "Panel Judges")
	if err != nil {
		return nil, err
	}

	var ops []graph.Op
	for _, personID := range panel {
		if opinion.AuthorID != nil && personID == *opinion.AuthorID {
			continue
		}
		relOps, _, err := e.judgeRelation(ctx, id, propertyID, personID, refs)
		if err != nil {
			return nil, err
		}
		ops = append(ops, relOps...)
	}
	return ops, nil
}

// judgeRelation materializes a person and relates them to an opinion,
// with provenance on the relation. The bool reports whether a relation
// was actually emitted.
func (e *Engine) judgeRelation(ctx context.Context, fromID, propertyID string, personID int64, refs []sourceRef) ([]graph.Op, bool, error) {
	depOps, targetID, err := e.personEntity(ctx, personID)
	if err != nil {
		return nil, false, err
	}
	ops := depOps
	if propertyID == "" || targetID == "" {
		return ops, false, nil
	}
	rel := graph.MakeRelation(fromID, targetID, propertyID)
	ops = append(ops, rel)
	provOps, err := e.sourceRelations(ctx, rel.Relation.ID, refs...)
	if err != nil {
		return nil, false, err
	}
	return append(ops, provOps...), true, nil
}

// opinionSourceRefs builds the provenance of an opinion. The public page
// lives under the cluster id, not the opinion id.
func opinionSourceRefs(o *store.Opinion, c *store.Cluster) []sourceRef {
	ref := sourceRef{
		Source:   courtListenerSource,
		RecordID: fmt.Sprintf("%d", o.ID),
		Label:    "Opinion",
	}
	if c != nil && c.Slug != "" {
		ref.WebURL = fmt.Sprintf("https://www.courtlistener.com/opinion/%d/%s", c.ID, c.Slug)
	}
	return []sourceRef{ref}
}
