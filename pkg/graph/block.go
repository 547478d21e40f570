package graph

import "fmt"

// MakeTextBlock builds the operations for one ordered content block
// attached to fromID: a fresh block entity typed as a text block, its
// markdown content, and the attaching relation carrying the ordering key
// on the relation's own id.
func MakeTextBlock(fromID, text, position string) []Op {
	blockID := NewID()

	rel := MakeRelation(fromID, blockID, BlocksProperty)
	return []Op{
		MakeRelation(blockID, TextBlockType, TypesProperty),
		MakeText(blockID, MarkdownContentProperty, text),
		rel,
		MakeText(rel.Relation.ID, RelationIndexProperty, position),
	}
}

// DataBlock is a query-backed block (a live table or gallery) attached to
// an entity's page.
type DataBlock struct {
	BlockID    string
	RelationID string
	Ops        []Op
}

// MakeDataBlock builds a named query block attached to fromID. The
// caller sets the filter and view on the returned ids.
func MakeDataBlock(fromID, name, position string) DataBlock {
	blockID := NewID()

	rel := MakeRelation(fromID, blockID, BlocksProperty)
	ops := []Op{
		MakeRelation(blockID, DataBlockType, TypesProperty),
		MakeText(blockID, NameProperty, name),
		rel,
		MakeText(rel.Relation.ID, RelationIndexProperty, position),
	}
	return DataBlock{
		BlockID:    blockID,
		RelationID: rel.Relation.ID,
		Ops:        ops,
	}
}

// QueryFilter renders the filter expression selecting entities of a type
// that carry a given relation to target, scoped to one space.
func QueryFilter(spaceID, typeID, attributeID, targetID string) string {
	return fmt.Sprintf(
		`{"where":{"spaces":[%q],"AND":[{"attribute":%q,"is":%q},{"attribute":%q,"is":%q}]}}`,
		spaceID, TypesProperty, typeID, attributeID, targetID,
	)
}
