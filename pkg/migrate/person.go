package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/store"
)

// Stock judge portraits, picked by gender when no photograph exists.
const (
	defaultJudgeAvatar       = "9JnoWcjFpLrU4M5dGTMsoQ"
	defaultFemaleJudgeAvatar = "VWjhuB2LuScMgykGmNDZbp"
)

// nonJudgePositionTypes are position codes that do not make their holder
// a judge, unless the mapped title says otherwise.
var nonJudgePositionTypes = map[string]bool{
	"att-gen": true, "att-gen-ass": true, "att-gen-ass-spec": true,
	"sen-counsel": true, "dep-sol-gen": true, "pres": true, "gov": true,
	"mayor": true, "clerk": true, "clerk-chief-dep": true, "staff-atty": true,
	"prof": true, "adj-prof": true, "prac": true, "pros": true,
	"pub-def": true, "da": true, "ada": true, "legis": true, "sen": true,
	"state-sen": true,
}

// person materializes one person and all of their positions. Alias rows
// resolve to the canonical person before anything is emitted.
func (e *Engine) person(ctx context.Context, key int64) ([]graph.Op, string, error) {
	person, err := e.source.Person(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if person == nil {
		logger.Warn("[Person] Record not found", "id", key)
		return nil, "", nil
	}

	recordKey := fmt.Sprintf("%d", person.ID)
	if person.GeoID != "" {
		// Positions may still be pending even when the person exists.
		ops, err := e.personPositions(ctx, person.ID)
		return ops, person.GeoID, err
	}
	if id, ok := e.inProgress[progressKey(store.KindPerson, recordKey)]; ok {
		return nil, id, nil
	}

	id, done, err := e.begin(ctx, store.KindPerson, recordKey)
	if err != nil {
		return nil, "", err
	}
	defer done()

	fullName := personFullName(person)
	logger.Debug("[Person] Materializing", "id", person.ID, "name", fullName)

	ops := []graph.Op{graph.MakeText(id, graph.NameProperty, fullName)}
	ops = append(ops, graph.MakeRelation(id, graph.PersonType, graph.TypesProperty))

	refs := personSourceRefs(person)

	for _, attr := range []struct {
		name string
		code string
		fjc  bool
	}{
		{"Gender", person.Gender, true},
		{"Religion", person.Religion, false},
		{"Ethnicity", person.Race, true},
	} {
		if attr.code == "" {
			continue
		}
		choiceOps, relID, err := e.choiceRelation(ctx, id, "judge", attr.name, attr.code)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, choiceOps...)
		if relID == "" {
			continue
		}
		relRefs := refs
		if !attr.fjc {
			relRefs = refs[:1]
		}
		provOps, err := e.sourceRelations(ctx, relID, relRefs...)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, provOps...)
	}

	positions, err := e.source.PersonPositions(ctx, person.ID)
	if err != nil {
		return nil, "", err
	}
	if holdsJudicialPosition(positions) {
		judgeOps, err := e.typeRelation(ctx, id, "Judge")
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, judgeOps...)

		blockOps, err := e.judgeOpinionsBlock(ctx, id)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, blockOps...)

		avatar := defaultJudgeAvatar
		if person.Gender == "f" {
			avatar = defaultFemaleJudgeAvatar
		}
		ops = append(ops, graph.MakeRelation(id, avatar, graph.AvatarProperty))
	}

	if person.DateBorn != nil {
		propertyID, err := e.property(ctx, "judge", "Date of birth")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, timeTriple(id, propertyID, *person.DateBorn, person.DateBornGran))
		}
	}
	if person.DateDied != nil {
		propertyID, err := e.property(ctx, "judge", "Date of death")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, timeTriple(id, propertyID, *person.DateDied, person.DateDiedGran))
		}
	}

	if person.PoliticalParty != "" {
		choiceOps, relID, err := e.choiceRelation(ctx, id, "judge", "Political affiliation", person.PoliticalParty)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, choiceOps...)
		if relID != "" {
			if person.PartySource != "" {
				label := partySources[person.PartySource]
				if label == "" {
					logger.Warn("[Person] Unknown party source code", "id", person.ID, "code", person.PartySource)
				} else {
					srcOps, _, err := e.choiceRelation(ctx, relID, "source", "Political party source", label)
					if err != nil {
						return nil, "", err
					}
					ops = append(ops, srcOps...)
				}
			}
			provOps, err := e.sourceRelations(ctx, relID, refs...)
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

	posOps, err := e.personPositions(ctx, person.ID)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, posOps...)

	return ops, id, nil
}

// personFullName assembles the display name from the name parts and the
// suffix vocabulary, dropping whatever is absent.
func personFullName(p *store.Person) string {
	parts := []string{p.NameFirst, p.NameMiddle, p.NameLast, suffixes[strings.ToLower(p.NameSuffix)]}
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}

// personSourceRefs builds the provenance references of a person: the
// primary record plus the FJC cross-reference when one exists. The
// primary reference is always first.
func personSourceRefs(p *store.Person) []sourceRef {
	refs := []sourceRef{{
		Source:   courtListenerSource,
		RecordID: fmt.Sprintf("%d", p.ID),
		Label:    "Person",
	}}
	if p.Slug != "" {
		refs[0].WebURL = fmt.Sprintf("https://www.courtlistener.com/person/%d/%s", p.ID, p.Slug)
	}
	if p.FJCID != nil {
		refs = append(refs, sourceRef{
			Source:   fjcSource,
			RecordID: fmt.Sprintf("%d", *p.FJCID),
			WebURL:   "https://www.fjc.gov/sites/default/files/history/judges.csv",
		})
	}
	return refs
}

// holdsJudicialPosition reports whether any position makes the person a
// judge: a court-bound position whose type is not in the non-judge list,
// or whose mapped title is a judicial one.
func holdsJudicialPosition(positions []store.Position) bool {
	for _, pos := range positions {
		if pos.PositionType == "" || pos.CourtID == "" {
			continue
		}
		if !nonJudgePositionTypes[pos.PositionType] || isJudicialTitle(pos.JobTitle) {
			return true
		}
	}
	return false
}

// isJudicialTitle reports whether a free-text job title matches the
// mapped title of a judicial position code.
func isJudicialTitle(title string) bool {
	if title == "" {
		return false
	}
	for code, mapped := range positionTypes {
		if !nonJudgePositionTypes[code] && mapped == title {
			return true
		}
	}
	return false
}

// personPositions materializes every position of a person.
func (e *Engine) personPositions(ctx context.Context, personID int64) ([]graph.Op, error) {
	positions, err := e.source.PersonPositions(ctx, personID)
	if err != nil {
		return nil, err
	}

	var ops []graph.Op
	for i := range positions {
		posOps, _, err := e.position(ctx, &positions[i])
		if err != nil {
			return nil, err
		}
		ops = append(ops, posOps...)
	}
	return ops, nil
}

// judgeOpinionsBlock attaches the query block listing a judge's opinions.
func (e *Engine) judgeOpinionsBlock(ctx context.Context, judgeEntityID string) ([]graph.Op, error) {
	opinionTypeID, err := e.catalog.TypeID(ctx, "Opinion")
	if err != nil {
		return nil, err
	}
	authorsID, err := e.property(ctx, "opinion", "Authors")
	if err != nil {
		return nil, err
	}
	if opinionTypeID == "" || authorsID == "" {
		return nil, nil
	}

	var stream graph.PositionStream
	block := graph.MakeDataBlock(judgeEntityID, "Opinions", stream.Next())
	ops := block.Ops
	filter := graph.QueryFilter(e.spaceID, opinionTypeID, authorsID, judgeEntityID)
	ops = append(ops, graph.MakeText(block.BlockID, graph.FilterProperty, filter))
	ops = append(ops, graph.MakeRelation(block.RelationID, graph.TableView, graph.ViewProperty))

	colOps, err := e.shownColumns(ctx, block.RelationID, "opinion", "Opinion type", "Opinion group")
	if err != nil {
		return nil, err
	}
	return append(ops, colOps...), nil
}
