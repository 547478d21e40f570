package graph

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Base58 alphabet used by the target graph protocol for entity ids.
const idAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const idLength = 22

// NewID generates a fresh external entity id client-side. Ids are globally
// unique and never reused; no round-trip to the graph system is required
// before an id appears in operations.
func NewID() string {
	id, _ := gonanoid.Generate(idAlphabet, idLength)
	return id
}
