package game

import (
	"fmt"
	"math/rand"
)

// GenerateGrassIDs produces a deterministic grass id list for hosts that
// start a match without supplying their own map. The same seed always
// yields the same list, so a client running the matching generator agrees
// with the server on every id.
func GenerateGrassIDs(seed int64, n int) []string {
	return generateIDs("grass", seed, n)
}

func GeneratePenIDs(seed int64, n int) []string {
	return generateIDs("pen", seed+1, n)
}

func generateIDs(prefix string, seed int64, n int) []string {
	rng := rand.New(rand.NewSource(seed))
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("%s-%d-%08x", prefix, i+1, rng.Uint32()))
	}
	return ids
}

// BuildGrassMap creates fresh grass entities from an id list. Empty ids are
// skipped and duplicates collapse by map semantics.
func BuildGrassMap(ids []string) map[string]*Grass {
	m := make(map[string]*Grass, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		m[id] = NewGrass(id)
	}
	return m
}

func BuildPenMap(ids []string) map[string]*Pen {
	m := make(map[string]*Pen, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		m[id] = &Pen{ID: id}
	}
	return m
}
