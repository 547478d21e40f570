package graph

import "testing"

func TestOpValid(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		want bool
	}{
		{
			name: "complete triple",
			op:   MakeText("e1", "a1", "v"),
			want: true,
		},
		{
			name: "triple missing value",
			op:   MakeText("e1", "a1", ""),
			want: false,
		},
		{
			name: "triple missing attribute",
			op:   MakeText("e1", "", "v"),
			want: false,
		},
		{
			name: "complete relation",
			op:   MakeRelation("f1", "t1", "r1"),
			want: true,
		},
		{
			name: "relation missing target",
			op:   MakeRelation("f1", "", "r1"),
			want: false,
		},
		{
			name: "empty op",
			op:   Op{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Valid(); got != tt.want {
				t.Fatalf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStripInvalid(t *testing.T) {
	ops := []Op{
		MakeText("e1", "a1", "v1"),
		MakeText("e2", "a2", ""),
		MakeRelation("f1", "t1", "r1"),
		{},
	}

	valid, invalid := StripInvalid(ops)
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid ops, got %d", len(valid))
	}
	if len(invalid) != 2 {
		t.Fatalf("expected 2 invalid ops, got %d", len(invalid))
	}
	if valid[0].Triple == nil || valid[0].Triple.EntityID != "e1" {
		t.Fatalf("valid ops out of order: %+v", valid[0])
	}
	if got := FindInvalid(valid); len(got) != 0 {
		t.Fatalf("stripped batch still contains %d invalid ops", len(got))
	}
}

func TestMakeRelationGeneratesID(t *testing.T) {
	a := MakeRelation("f", "t", "r")
	b := MakeRelation("f", "t", "r")
	if a.Relation.ID == "" || b.Relation.ID == "" {
		t.Fatal("relation id not generated")
	}
	if a.Relation.ID == b.Relation.ID {
		t.Fatal("relation ids must be unique")
	}
	if len(a.Relation.ID) != idLength {
		t.Fatalf("relation id length = %d, want %d", len(a.Relation.ID), idLength)
	}
}
