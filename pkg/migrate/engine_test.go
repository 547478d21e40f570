package migrate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/publish"
	"github.com/openjurist/lawgraph/pkg/store"
	"github.com/openjurist/lawgraph/pkg/store/memory"
)

type fakePublisher struct {
	edits []publish.Edit
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, edit publish.Edit) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.edits = append(p.edits, edit)
	return fmt.Sprintf("tx-%d", len(p.edits)), nil
}

func newTestEngine(st *memory.Store, pub publish.Publisher, threshold int) *Engine {
	return New(Config{
		Catalog:        memory.NewCatalog(),
		Ledger:         st,
		Source:         st,
		Publisher:      pub,
		SpaceID:        "space-1",
		Author:         "author-1",
		FlushThreshold: threshold,
	})
}

func TestRunAssignsAndPublishes(t *testing.T) {
	st := memory.NewStore()
	st.Courts["ca1"] = &store.Court{ID: "ca1", FullName: "First Circuit"}
	st.Courts["ca2"] = &store.Court{ID: "ca2", FullName: "Second Circuit"}
	pub := &fakePublisher{}
	eng := newTestEngine(st, pub, 0)

	if err := eng.Run(context.Background(), store.KindCourt, ""); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, id := range []string{"ca1", "ca2"} {
		if st.Courts[id].GeoID == "" {
			t.Errorf("court %s has no assigned id", id)
		}
	}
	if len(pub.edits) != 1 {
		t.Fatalf("expected one published edit, got %d", len(pub.edits))
	}
	for _, op := range pub.edits[0].Ops {
		if !op.Valid() {
			t.Errorf("published invalid operation: %+v", op)
		}
	}
	if len(st.Touched) != 0 {
		t.Errorf("touched markers not cleared after publish: %v", st.Touched)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	st := memory.NewStore()
	st.Courts["scotus"] = &store.Court{ID: "scotus", FullName: "Supreme Court"}
	pub := &fakePublisher{}

	if err := newTestEngine(st, pub, 0).Run(context.Background(), store.KindCourt, ""); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	assigned := st.Courts["scotus"].GeoID

	if err := newTestEngine(st, pub, 0).Run(context.Background(), store.KindCourt, ""); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if got := st.Courts["scotus"].GeoID; got != assigned {
		t.Errorf("second run reassigned id: got %q, want %q", got, assigned)
	}
	if len(pub.edits) != 1 {
		t.Errorf("second run published again: %d edits", len(pub.edits))
	}
}

func TestRunRollsBackOnPublishFailure(t *testing.T) {
	st := memory.NewStore()
	st.Courts["ca9"] = &store.Court{ID: "ca9", FullName: "Ninth Circuit"}
	pub := &fakePublisher{err: errors.New("space unavailable")}
	eng := newTestEngine(st, pub, 0)

	if err := eng.Run(context.Background(), store.KindCourt, ""); err == nil {
		t.Fatal("expected run to fail")
	}
	// One reset at run start, one for the rollback itself.
	if st.Resets != 2 {
		t.Errorf("expected rollback to reset markers, got %d resets", st.Resets)
	}
	if st.Courts["ca9"].GeoID != "" {
		t.Errorf("assigned id survived rollback: %q", st.Courts["ca9"].GeoID)
	}
	if len(st.Touched) != 0 {
		t.Errorf("touched markers survived rollback: %v", st.Touched)
	}
}

func TestRunRepublishesRecordsFromInterruptedRun(t *testing.T) {
	st := memory.NewStore()
	// A process killed mid-run leaves the id assigned and the edited
	// marker set, with nothing published under that id.
	st.Courts["ca5"] = &store.Court{ID: "ca5", GeoID: "stale-id", FullName: "Fifth Circuit"}
	st.Touched["court|ca5"] = true
	pub := &fakePublisher{}
	eng := newTestEngine(st, pub, 0)

	if err := eng.Run(context.Background(), store.KindCourt, ""); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := st.Courts["ca5"].GeoID
	if got == "" {
		t.Fatal("court was never rescanned")
	}
	if got == "stale-id" {
		t.Fatal("stale id survived the run")
	}
	if len(pub.edits) != 1 {
		t.Fatalf("expected one published edit, got %d", len(pub.edits))
	}
	var published bool
	for _, op := range pub.edits[0].Ops {
		if op.Triple != nil && op.Triple.EntityID == got {
			published = true
		}
	}
	if !published {
		t.Errorf("no operations published under the reassigned id %q", got)
	}
}

func TestRunDocketMaterializesItsArguments(t *testing.T) {
	st := memory.NewStore()
	docketID := int64(7)
	st.Dockets[7] = &store.Docket{ID: 7, CaseName: "United States v. Nixon"}
	st.Arguments[3] = &store.Argument{ID: 3, DocketID: &docketID, CaseName: "United States v. Nixon"}
	pub := &fakePublisher{}
	eng := newTestEngine(st, pub, 0)

	if err := eng.Run(context.Background(), store.KindDocket, ""); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if st.Dockets[7].GeoID == "" {
		t.Fatal("docket has no assigned id")
	}
	argID := st.Arguments[3].GeoID
	if argID == "" {
		t.Fatal("argument recorded against the docket was not materialized")
	}
	var published bool
	for _, edit := range pub.edits {
		for _, op := range edit.Ops {
			if op.Triple != nil && op.Triple.EntityID == argID {
				published = true
			}
		}
	}
	if !published {
		t.Errorf("no operations published under the argument id %q", argID)
	}
}

func TestRunRejectsCitationKind(t *testing.T) {
	eng := newTestEngine(memory.NewStore(), &fakePublisher{}, 0)
	if err := eng.Run(context.Background(), store.KindCitation, ""); err == nil {
		t.Fatal("expected citation kind to be rejected")
	}
}

func TestRunResumesStrictlyAfterStart(t *testing.T) {
	st := memory.NewStore()
	for _, id := range []string{"alpha", "beta", "gamma"} {
		st.Courts[id] = &store.Court{ID: id, FullName: id}
	}
	pub := &fakePublisher{}
	eng := newTestEngine(st, pub, 0)

	if err := eng.Run(context.Background(), store.KindCourt, "beta"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if st.Courts["alpha"].GeoID != "" {
		t.Error("court before the cursor was materialized")
	}
	if st.Courts["beta"].GeoID != "" {
		t.Error("the cursor key itself was materialized")
	}
	if st.Courts["gamma"].GeoID == "" {
		t.Error("court after the cursor was not materialized")
	}
}

func TestRunFlushesPerRecordAtLowThreshold(t *testing.T) {
	st := memory.NewStore()
	st.Courts["ca1"] = &store.Court{ID: "ca1", FullName: "First Circuit"}
	st.Courts["ca2"] = &store.Court{ID: "ca2", FullName: "Second Circuit"}
	pub := &fakePublisher{}
	eng := newTestEngine(st, pub, 1)

	if err := eng.Run(context.Background(), store.KindCourt, ""); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(pub.edits) != 2 {
		t.Errorf("expected one edit per record, got %d", len(pub.edits))
	}
}

func TestRunCitationsAssignsRelationID(t *testing.T) {
	st := memory.NewStore()
	st.Clusters[1] = &store.Cluster{ID: 1, GeoID: "citing-cluster-id", Slug: "roe-v-wade", CaseName: "Roe v. Wade"}
	st.Clusters[2] = &store.Cluster{ID: 2, CaseName: "Griswold v. Connecticut"}
	cited := int64(2)
	citing := int64(1)
	st.Citations[10] = &store.Citation{ID: 10, CitingClusterID: &citing, CitedClusterID: &cited}

	cat := memory.NewCatalog()
	cat.SetProperty("Opinion Group", "Authorities", "prop-authorities")
	pub := &fakePublisher{}
	eng := New(Config{
		Catalog:   cat,
		Ledger:    st,
		Source:    st,
		Publisher: pub,
		SpaceID:   "space-1",
		Author:    "author-1",
	})

	if err := eng.RunCitations(context.Background()); err != nil {
		t.Fatalf("citation run failed: %v", err)
	}

	citationID := st.Citations[10].GeoID
	if citationID == "" {
		t.Fatal("citation has no assigned id")
	}
	if st.Clusters[2].GeoID == "" {
		t.Fatal("cited cluster was not materialized")
	}

	var found *graph.Relation
	for _, edit := range pub.edits {
		for _, op := range edit.Ops {
			if op.Relation != nil && op.Relation.ID == citationID {
				found = op.Relation
			}
		}
	}
	if found == nil {
		t.Fatal("no relation published under the citation's id")
	}
	if found.FromID != "citing-cluster-id" {
		t.Errorf("relation cites from %q, want the citing cluster", found.FromID)
	}
	if found.ToID != st.Clusters[2].GeoID {
		t.Errorf("relation cites to %q, want the cited cluster", found.ToID)
	}
	if found.RelationTypeID != "prop-authorities" {
		t.Errorf("relation typed %q, want the authorities property", found.RelationTypeID)
	}
}

func TestRunCitationsAdvancesPastUnresolved(t *testing.T) {
	st := memory.NewStore()
	st.Clusters[1] = &store.Cluster{ID: 1, GeoID: "citing-cluster-id", CaseName: "Marbury v. Madison"}
	citing := int64(1)
	// No cited cluster at all: the edge must still get an id so the scan
	// does not return it forever.
	st.Citations[11] = &store.Citation{ID: 11, CitingClusterID: &citing}
	pub := &fakePublisher{}
	eng := newTestEngine(st, pub, 0)

	if err := eng.RunCitations(context.Background()); err != nil {
		t.Fatalf("citation run failed: %v", err)
	}
	citationID := st.Citations[11].GeoID
	if citationID == "" {
		t.Fatal("unresolved citation has no assigned id")
	}
	for _, edit := range pub.edits {
		for _, op := range edit.Ops {
			if op.Relation != nil && op.Relation.ID == citationID {
				t.Fatal("unresolved citation still published a relation")
			}
		}
	}
}

func TestSourceRelationsAttachToRelationID(t *testing.T) {
	cat := memory.NewCatalog()
	cat.SetSource("Court Listener", "src-cl")
	cat.SetSource("Federal Judicial Center", "src-fjc")
	cat.SetProperty("source", "Database identifier", "prop-dbid")
	eng := New(Config{
		Catalog:   cat,
		Ledger:    memory.NewStore(),
		Source:    memory.NewStore(),
		Publisher: &fakePublisher{},
		SpaceID:   "space-1",
		Author:    "author-1",
	})

	ops, err := eng.sourceRelations(context.Background(), "entity-1",
		sourceRef{Source: courtListenerSource, RecordID: "42", Label: "judge", WebURL: "https://example.org/judge/42"},
		sourceRef{Source: fjcSource, RecordID: "fjc-42", Label: "judge"},
	)
	if err != nil {
		t.Fatalf("sourceRelations failed: %v", err)
	}

	relIDs := map[string]bool{}
	for _, op := range ops {
		if op.Relation != nil {
			if op.Relation.FromID != "entity-1" {
				t.Errorf("relation from %q, want the entity", op.Relation.FromID)
			}
			if relIDs[op.Relation.ID] {
				t.Errorf("relation id %q reused across sources", op.Relation.ID)
			}
			relIDs[op.Relation.ID] = true
		}
	}
	if len(relIDs) != 2 {
		t.Fatalf("expected 2 source relations, got %d", len(relIDs))
	}

	// Identifiers, descriptions and URLs belong to their own relation,
	// never to the entity itself.
	for _, op := range ops {
		if op.Triple == nil {
			continue
		}
		if op.Triple.EntityID == "entity-1" {
			t.Errorf("triple %q attached to the entity instead of a relation", op.Triple.AttributeID)
		}
		if !relIDs[op.Triple.EntityID] {
			t.Errorf("triple %q attached to unknown id %q", op.Triple.AttributeID, op.Triple.EntityID)
		}
	}
}
