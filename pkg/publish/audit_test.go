package publish

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/openjurist/lawgraph/pkg/graph"
)

func TestAuditWriterDeterministicName(t *testing.T) {
	dir := t.TempDir()
	w, err := NewAuditWriter(dir)
	if err != nil {
		t.Fatalf("NewAuditWriter: %v", err)
	}

	edit := Edit{
		SpaceID: "space1",
		Author:  "0xabc",
		Name:    "Add court test",
		Ops: []graph.Op{
			graph.MakeText("e1", "a1", "v1"),
			graph.MakeText("e2", "a2", "v2"),
		},
	}

	path, err := w.Write(edit, "court_1")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if filepath.Base(path) != "publish_2_op_court_1.txt" {
		t.Fatalf("unexpected artifact name %q", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}

	var ops []graph.Op
	if err := json.Unmarshal(raw, &ops); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("artifact has %d ops, want 2", len(ops))
	}
	if ops[0].Triple == nil || ops[0].Triple.EntityID != "e1" {
		t.Fatalf("artifact lost op order: %+v", ops[0])
	}
}
