package graph

// ValueKind identifies the native type of a triple value.
type ValueKind string

const (
	TextValue     ValueKind = "TEXT"
	NumberValue   ValueKind = "NUMBER"
	URLValue      ValueKind = "URL"
	TimeValue     ValueKind = "TIME"
	CheckboxValue ValueKind = "CHECKBOX"
)

// Value is a typed triple value. Format is only meaningful for TIME values
// and carries the display format for the date's granularity.
type Value struct {
	Kind   ValueKind `json:"type"`
	Value  string    `json:"value"`
	Format string    `json:"format,omitempty"`
}

// Triple assigns an attribute value to an entity.
type Triple struct {
	EntityID    string `json:"entityId"`
	AttributeID string `json:"attributeId"`
	Value       Value  `json:"value"`
}

// Relation is a typed edge between two entities. Its own ID is an
// attachment point: further triples may use it as their entity id, which
// is how relations carry dates, provenance and ordering keys.
type Relation struct {
	ID             string `json:"id"`
	FromID         string `json:"fromId"`
	ToID           string `json:"toId"`
	RelationTypeID string `json:"relationTypeId"`
}

// Op is one publishable graph operation, either a triple or a relation.
type Op struct {
	Triple   *Triple   `json:"triple,omitempty"`
	Relation *Relation `json:"relation,omitempty"`
}

// MakeTriple builds a triple operation.
func MakeTriple(entityID, attributeID string, value Value) Op {
	return Op{Triple: &Triple{
		EntityID:    entityID,
		AttributeID: attributeID,
		Value:       value,
	}}
}

// MakeText builds a TEXT triple operation.
func MakeText(entityID, attributeID, value string) Op {
	return MakeTriple(entityID, attributeID, Value{Kind: TextValue, Value: value})
}

// MakeRelation builds a relation operation with a freshly generated
// relation id.
func MakeRelation(fromID, toID, relationTypeID string) Op {
	return Op{Relation: &Relation{
		ID:             NewID(),
		FromID:         fromID,
		ToID:           toID,
		RelationTypeID: relationTypeID,
	}}
}

// MakeRelationWithID builds a relation operation under a caller-chosen
// relation id. Used where the relation id doubles as a record's external
// id.
func MakeRelationWithID(id, fromID, toID, relationTypeID string) Op {
	return Op{Relation: &Relation{
		ID:             id,
		FromID:         fromID,
		ToID:           toID,
		RelationTypeID: relationTypeID,
	}}
}

// Valid reports whether every required field of the operation is set.
// Operations with empty required fields must never reach a publish call.
func (o Op) Valid() bool {
	switch {
	case o.Triple != nil:
		t := o.Triple
		return t.EntityID != "" && t.AttributeID != "" && t.Value.Kind != "" && t.Value.Value != ""
	case o.Relation != nil:
		r := o.Relation
		return r.ID != "" && r.FromID != "" && r.ToID != "" && r.RelationTypeID != ""
	default:
		return false
	}
}

// FindInvalid returns the operations that fail the null-field check.
func FindInvalid(ops []Op) []Op {
	var invalid []Op
	for _, op := range ops {
		if !op.Valid() {
			invalid = append(invalid, op)
		}
	}
	return invalid
}

// StripInvalid splits ops into valid and invalid operations, preserving
// order within each group.
func StripInvalid(ops []Op) (valid []Op, invalid []Op) {
	valid = make([]Op, 0, len(ops))
	for _, op := range ops {
		if op.Valid() {
			valid = append(valid, op)
		} else {
			invalid = append(invalid, op)
		}
	}
	return valid, invalid
}
