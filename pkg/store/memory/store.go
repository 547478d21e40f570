package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/openjurist/lawgraph/pkg/store"
)

// Store holds source records and ledger state in maps. It implements both
// store.SourceStore and store.Ledger so a test can inspect ledger effects
// on the records it seeded.
type Store struct {
	Courts       map[string]*store.Court
	AppealsTo    map[string][]string
	People       map[int64]*store.Person
	Positions    map[int64]*store.Position
	Dockets      map[int64]*store.Docket
	OrigDockets  map[int64]*store.OriginatingDocket
	Clusters     map[int64]*store.Cluster
	Opinions     map[int64]*store.Opinion
	Citations    map[int64]*store.Citation
	Arguments    map[int64]*store.Argument
	Panels       map[int64][]int64
	JoinedBy     map[int64][]int64
	Judges       map[string]int64 // "lastname|courtID"

	Assigned map[string]string // "kind|key" -> external id
	Touched  map[string]bool
	Resets   int
	Clears   int
}

func NewStore() *Store {
	return &Store{
		Courts:      make(map[string]*store.Court),
		AppealsTo:   make(map[string][]string),
		People:      make(map[int64]*store.Person),
		Positions:   make(map[int64]*store.Position),
		Dockets:     make(map[int64]*store.Docket),
		OrigDockets: make(map[int64]*store.OriginatingDocket),
		Clusters:    make(map[int64]*store.Cluster),
		Opinions:    make(map[int64]*store.Opinion),
		Citations:   make(map[int64]*store.Citation),
		Arguments:   make(map[int64]*store.Argument),
		Panels:      make(map[int64][]int64),
		JoinedBy:    make(map[int64][]int64),
		Judges:      make(map[string]int64),
		Assigned:    make(map[string]string),
		Touched:     make(map[string]bool),
	}
}

func ledgerKey(kind store.RecordKind, key string) string {
	return string(kind) + "|" + key
}

func (s *Store) MarkAssigned(_ context.Context, kind store.RecordKind, key, externalID string) error {
	s.Assigned[ledgerKey(kind, key)] = externalID
	s.setGeoID(kind, key, externalID)
	return nil
}

func (s *Store) MarkTouched(_ context.Context, kind store.RecordKind, key string) error {
	s.Touched[ledgerKey(kind, key)] = true
	return nil
}

func (s *Store) ClearTouched(_ context.Context) error {
	s.Clears++
	s.Touched = make(map[string]bool)
	return nil
}

func (s *Store) ResetRun(_ context.Context) error {
	s.Resets++
	for lk := range s.Touched {
		kind, key, _ := strings.Cut(lk, "|")
		delete(s.Assigned, lk)
		s.setGeoID(store.RecordKind(kind), key, "")
	}
	s.Touched = make(map[string]bool)
	return nil
}

func (s *Store) setGeoID(kind store.RecordKind, key, id string) {
	switch kind {
	case store.KindCourt:
		if c, ok := s.Courts[key]; ok {
			c.GeoID = id
		}
		return
	}

	n, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return
	}
	switch kind {
	case store.KindPerson:
		if p, ok := s.People[n]; ok {
			p.GeoID = id
		}
	case store.KindPosition:
		if p, ok := s.Positions[n]; ok {
			p.GeoID = id
		}
	case store.KindDocket:
		if d, ok := s.Dockets[n]; ok {
			d.GeoID = id
		}
	case store.KindOriginatingDocket:
		if o, ok := s.OrigDockets[n]; ok {
			o.GeoID = id
		}
	case store.KindCluster:
		if c, ok := s.Clusters[n]; ok {
			c.GeoID = id
		}
	case store.KindOpinion:
		if o, ok := s.Opinions[n]; ok {
			o.GeoID = id
		}
	case store.KindCitation:
		if c, ok := s.Citations[n]; ok {
			c.GeoID = id
		}
	case store.KindArgument:
		if a, ok := s.Arguments[n]; ok {
			a.GeoID = id
		}
	}
}

func (s *Store) Court(_ context.Context, id string) (*store.Court, error) {
	return s.Courts[id], nil
}

func (s *Store) CourtAppealsTo(_ context.Context, id string) ([]string, error) {
	return s.AppealsTo[id], nil
}

func (s *Store) CourtAppealsFrom(_ context.Context, id string) ([]string, error) {
	var from []string
	for court, targets := range s.AppealsTo {
		for _, t := range targets {
			if t == id {
				from = append(from, court)
			}
		}
	}
	sort.Strings(from)
	return from, nil
}

func (s *Store) Person(_ context.Context, id int64) (*store.Person, error) {
	p := s.People[id]
	for hops := 0; p != nil && p.IsAliasOf != nil && hops < 4; hops++ {
		target := s.People[*p.IsAliasOf]
		if target == nil {
			break
		}
		p = target
	}
	return p, nil
}

func (s *Store) PersonPositions(_ context.Context, personID int64) ([]store.Position, error) {
	var out []store.Position
	ids := make([]int64, 0, len(s.Positions))
	for id := range s.Positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p := s.Positions[id]
		if p.PersonID != nil && *p.PersonID == personID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *Store) JudgeByName(_ context.Context, lastName, courtID string, _ *time.Time) (int64, error) {
	return s.Judges[strings.ToLower(strings.TrimSpace(lastName))+"|"+courtID], nil
}

func (s *Store) Position(_ context.Context, id int64) (*store.Position, error) {
	return s.Positions[id], nil
}

func (s *Store) Docket(_ context.Context, id int64) (*store.Docket, error) {
	return s.Dockets[id], nil
}

func (s *Store) OriginatingDocket(_ context.Context, id int64) (*store.OriginatingDocket, error) {
	return s.OrigDockets[id], nil
}

func (s *Store) DocketArguments(_ context.Context, docketID int64) ([]store.Argument, error) {
	var out []store.Argument
	ids := make([]int64, 0, len(s.Arguments))
	for id := range s.Arguments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		a := s.Arguments[id]
		if a.DocketID != nil && *a.DocketID == docketID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *Store) Cluster(_ context.Context, id int64) (*store.Cluster, error) {
	return s.Clusters[id], nil
}

func (s *Store) Opinion(_ context.Context, id int64) (*store.Opinion, error) {
	return s.Opinions[id], nil
}

func (s *Store) ClusterOpinions(_ context.Context, clusterID int64) ([]store.Opinion, error) {
	var out []store.Opinion
	ids := make([]int64, 0, len(s.Opinions))
	for id := range s.Opinions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		o := s.Opinions[id]
		if o.ClusterID != nil && *o.ClusterID == clusterID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *Store) ClusterPanel(_ context.Context, clusterID int64) ([]int64, error) {
	return s.Panels[clusterID], nil
}

func (s *Store) OpinionJoinedBy(_ context.Context, opinionID int64) ([]int64, error) {
	return s.JoinedBy[opinionID], nil
}

func (s *Store) NextCitation(_ context.Context, citingClusterID int64) (*store.Citation, error) {
	ids := make([]int64, 0, len(s.Citations))
	for id := range s.Citations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		c := s.Citations[id]
		if c.GeoID != "" || c.CitingClusterID == nil || *c.CitingClusterID != citingClusterID {
			continue
		}
		if citing, ok := s.Clusters[citingClusterID]; ok {
			c.CitingClusterGeo = citing.GeoID
			c.CitingClusterSlug = citing.Slug
		}
		return c, nil
	}
	return nil, nil
}

func (s *Store) ClustersWithIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for id, c := range s.Clusters {
		if c.GeoID != "" {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) PendingKeys(_ context.Context, kind store.RecordKind, start string, limit int) ([]string, error) {
	var keys []string
	switch kind {
	case store.KindCourt:
		for id, c := range s.Courts {
			if c.GeoID == "" {
				keys = append(keys, id)
			}
		}
		sort.Strings(keys)
	default:
		var ids []int64
		collect := func(id int64, geo string) {
			if geo == "" {
				ids = append(ids, id)
			}
		}
		switch kind {
		case store.KindPerson:
			for id, r := range s.People {
				collect(id, r.GeoID)
			}
		case store.KindPosition:
			for id, r := range s.Positions {
				collect(id, r.GeoID)
			}
		case store.KindDocket:
			for id, r := range s.Dockets {
				collect(id, r.GeoID)
			}
		case store.KindOriginatingDocket:
			for id, r := range s.OrigDockets {
				collect(id, r.GeoID)
			}
		case store.KindCluster:
			for id, r := range s.Clusters {
				collect(id, r.GeoID)
			}
		case store.KindOpinion:
			for id, r := range s.Opinions {
				collect(id, r.GeoID)
			}
		case store.KindCitation:
			for id, r := range s.Citations {
				collect(id, r.GeoID)
			}
		case store.KindArgument:
			for id, r := range s.Arguments {
				collect(id, r.GeoID)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			keys = append(keys, strconv.FormatInt(id, 10))
		}
	}

	out := keys[:0:0]
	for _, key := range keys {
		// Keys at or before the cursor were already visited.
		if start != "" && !greaterKey(kind, key, start) {
			continue
		}
		out = append(out, key)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func greaterKey(kind store.RecordKind, a, b string) bool {
	if kind == store.KindCourt {
		return a > b
	}
	an, _ := strconv.ParseInt(a, 10, 64)
	bn, _ := strconv.ParseInt(b, 10, 64)
	return an > bn
}

func (s *Store) Argument(_ context.Context, id int64) (*store.Argument, error) {
	return s.Arguments[id], nil
}
