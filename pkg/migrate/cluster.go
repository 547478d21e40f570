package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/store"
)

const defaultClusterCover = "WvCXEzUrpcEL1HXKotvQus"

// cluster materializes one opinion cluster as an Opinion Group entity,
// then walks every opinion of the cluster. Opinions are expanded even
// when the cluster itself was already published, so reruns pick up
// opinions added to an existing cluster.
func (e *Engine) cluster(ctx context.Context, key int64) ([]graph.Op, string, error) {
	cluster, err := e.source.Cluster(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if cluster == nil {
		logger.Warn("[Cluster] Record not found", "id", key)
		return nil, "", nil
	}

	recordKey := fmt.Sprintf("%d", cluster.ID)
	if cluster.GeoID != "" {
		ops, err := e.clusterOpinions(ctx, cluster)
		return ops, cluster.GeoID, err
	}
	if id, ok := e.inProgress[progressKey(store.KindCluster, recordKey)]; ok {
		return nil, id, nil
	}

	id, done, err := e.begin(ctx, store.KindCluster, recordKey)
	if err != nil {
		return nil, "", err
	}
	defer done()

	logger.Debug("[Cluster] Materializing", "id", cluster.ID, "case", cluster.CaseName)

	ops := []graph.Op{graph.MakeText(id, graph.NameProperty, clusterTitle(cluster))}

	typeOps, err := e.typeRelation(ctx, id, "Opinion Group")
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, typeOps...)
	ops = append(ops, graph.MakeRelation(id, defaultClusterCover, graph.CoverProperty))

	refs := clusterSourceRefs(cluster)

	caseName := firstNonEmpty(cluster.CaseNameFull, cluster.CaseName, cluster.CaseNameShort)
	if caseName != "" {
		propertyID, err := e.property(ctx, "Opinion Group", "Case name")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, graph.MakeText(id, propertyID, caseName))
		}
	}
	if cluster.DateFiled != nil {
		propertyID, err := e.property(ctx, "Opinion Group", "Date filed")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, timeTriple(id, propertyID, *cluster.DateFiled, ""))
		}
	}

	if cluster.CourtID != "" {
		relOps, err := e.courtLink(ctx, id, "Opinion Group", "Assigned court", cluster.CourtID, refs)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, relOps...)
	}

	ops = append(ops, contentBlocks(id, clusterTextParts(cluster))...)

	blockOps, err := e.citedByBlock(ctx, id)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, blockOps...)

	judgeOps, err := e.clusterJudges(ctx, id, cluster, refs)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, judgeOps...)

	if cluster.Disposition != "" {
		propertyID, err := e.property(ctx, "Opinion Group", "Disposition")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, graph.MakeText(id, propertyID, cluster.Disposition))
		}
	}

	if cluster.DocketID != nil {
		depOps, docketID, err := e.docket(ctx, *cluster.DocketID)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, depOps...)
		if docketID != "" {
			for _, link := range []struct {
				owner, name  string
				from, target string
			}{
				{"Opinion Group", "Docket", id, docketID},
				{"docket", "Opinions", docketID, id},
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

	if cluster.SCDBDirection != "" {
		choiceOps, relID, err := e.choiceRelation(ctx, id, "Opinion Group", "Decision leaning", cluster.SCDBDirection)
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
	for _, votes := range []struct {
		name  string
		value *int64
	}{
		{"Majority votes", cluster.SCDBVotesMajority},
		{"Minority votes", cluster.SCDBVotesMinority},
	} {
		if votes.value == nil {
			continue
		}
		propertyID, err := e.property(ctx, "Opinion Group", votes.name)
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, numberTriple(id, propertyID, int64String(votes.value)))
		}
	}

	if cluster.Posture != "" {
		propertyID, err := e.property(ctx, "Opinion Group", "Posture")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, graph.MakeText(id, propertyID, cluster.Posture))
		}
	}
	if cluster.CitationCount != nil && *cluster.CitationCount != 0 {
		propertyID, err := e.property(ctx, "Opinion Group", "Citation count")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, numberTriple(id, propertyID, int64String(cluster.CitationCount)))
		}
	}

	if cluster.PrecedentialStatus != "" {
		choiceOps, relID, err := e.choiceRelation(ctx, id, "Opinion Group", "Precedential status", cluster.PrecedentialStatus)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, choiceOps...)
		if relID != "" {
			// Status comes from the primary record, never from SCDB.
			provOps, err := e.sourceRelations(ctx, relID, refs[:1]...)
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

	opinionOps, err := e.clusterOpinions(ctx, cluster)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, opinionOps...)

	return ops, id, nil
}

// clusterTitle builds the display name: the kind, the filing date and the
// shortest available case name.
func clusterTitle(c *store.Cluster) string {
	title := "Opinion Group"
	if c.DateFiled != nil {
		title += " - " + c.DateFiled.UTC().Format("2006-01-02")
	}
	if name := firstNonEmpty(c.CaseNameShort, c.CaseName, c.Slug); name != "" {
		title += " - " + name
	}
	return title
}

// clusterTextParts collects the narrative fields of a cluster into headed
// sections, in a fixed order. Headnotes fall back to the headmatter.
func clusterTextParts(c *store.Cluster) []string {
	headnotes := c.Headnotes
	if headnotes == "" {
		headnotes = c.Headmatter
	}

	var parts []string
	for _, section := range []struct {
		heading string
		text    string
	}{
		{"Headnotes", headnotes},
		{"Syllabus", c.Syllabus},
		{"Summary", c.Summary},
		{"Procedural History", c.ProceduralHistory},
		{"History", c.History},
		{"Attorneys", c.Attorneys},
		{"Arguments", c.Arguments},
		{"Correction", c.Correction},
		{"Other Dates", c.OtherDates},
	} {
		if section.text == "" {
			continue
		}
		body := fieldParagraphs(section.text)
		if len(body) == 0 {
			continue
		}
		parts = append(parts, "# "+section.heading)
		parts = append(parts, body...)
	}
	return parts
}

// citedByBlock lists the opinion groups citing this one, filtered on the
// Authorities relation pointing back at the entity.
func (e *Engine) citedByBlock(ctx context.Context, entityID string) ([]graph.Op, error) {
	typeID, err := e.catalog.TypeID(ctx, "Opinion Group")
	if err != nil {
		return nil, err
	}
	propertyID, err := e.property(ctx, "Opinion Group", "Authorities")
	if err != nil {
		return nil, err
	}
	if typeID == "" || propertyID == "" {
		return nil, nil
	}

	var stream graph.PositionStream
	block := graph.MakeDataBlock(entityID, "Cited by", stream.Next())
	ops := block.Ops
	filter := graph.QueryFilter(e.spaceID, typeID, propertyID, entityID)
	ops = append(ops, graph.MakeText(block.BlockID, graph.FilterProperty, filter))
	ops = append(ops, graph.MakeRelation(block.RelationID, graph.TableView, graph.ViewProperty))
	return ops, nil
}

// clusterJudges resolves the free-text judges string against judicial
// positions held at the cluster's court on the filing date.
func (e *Engine) clusterJudges(ctx context.Context, id string, c *store.Cluster, refs []sourceRef) ([]graph.Op, error) {
	if c.Judges == "" {
		return nil, nil
	}
	propertyID, err := e.property(ctx, "Opinion Group", "Judges")
	if err != nil {
		return nil, err
	}

	var ops []graph.Op
	for _, name := range nameListSplit.Split(c.Judges, -1) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		judgeID, err := e.source.JudgeByName(ctx, name, c.CourtID, c.DateFiled)
		if err != nil {
			return nil, err
		}
		if judgeID == 0 {
			continue
		}
		depOps, personID, err := e.personEntity(ctx, judgeID)
		if err != nil {
			return nil, err
		}
		ops = append(ops, depOps...)
		if propertyID == "" || personID == "" {
			continue
		}
		rel := graph.MakeRelation(id, personID, propertyID)
		ops = append(ops, rel)
		provOps, err := e.sourceRelations(ctx, rel.Relation.ID, refs...)
		if err != nil {
			return nil, err
		}
		ops = append(ops, provOps...)
	}
	return ops, nil
}

// clusterOpinions materializes every opinion of the cluster.
func (e *Engine) clusterOpinions(ctx context.Context, c *store.Cluster) ([]graph.Op, error) {
	opinions, err := e.source.ClusterOpinions(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	var ops []graph.Op
	for i := range opinions {
		opOps, _, err := e.opinion(ctx, &opinions[i], c)
		if err != nil {
			return nil, err
		}
		ops = append(ops, opOps...)
	}
	return ops, nil
}

// clusterSourceRefs builds the provenance of a cluster: the primary
// record first, then the Supreme Court Database when an SCDB id exists.
// Callers that must not attribute a field to SCDB slice off the tail.
func clusterSourceRefs(c *store.Cluster) []sourceRef {
	ref := sourceRef{
		Source:   courtListenerSource,
		RecordID: fmt.Sprintf("%d", c.ID),
		Label:    "Opinion cluster",
	}
	if c.Slug != "" {
		ref.WebURL = fmt.Sprintf("https://www.courtlistener.com/opinion/%d/%s", c.ID, c.Slug)
	}
	if c.HarvardPDFPath != "" {
		ref.ExtraURLs = []string{"https://storage.courtlistener.com/" + c.HarvardPDFPath}
	}

	refs := []sourceRef{ref}
	if c.SCDBID != "" {
		refs = append(refs, sourceRef{
			Source:   scdbSource,
			RecordID: c.SCDBID,
			WebURL:   fmt.Sprintf("http://scdb.wustl.edu/analysisCaseDetail.php?sid=&cid=%s-01&pg=0", c.SCDBID),
		})
	}
	return refs
}
