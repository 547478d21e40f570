package migrate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/store"
)

// positionByID materializes one position when addressed directly. The
// holder person is created first; holding a position without a person is
// meaningless.
func (e *Engine) positionByID(ctx context.Context, key int64) ([]graph.Op, string, error) {
	pos, err := e.source.Position(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if pos == nil {
		logger.Warn("[Position] Record not found", "id", key)
		return nil, "", nil
	}
	if pos.GeoID != "" {
		return nil, pos.GeoID, nil
	}
	return e.position(ctx, pos)
}

// position materializes one judicial position as a works-at or worked-at
// relation between the holder and the court. The relation's own id is the
// position's external id; every attribute of the position hangs off it.
func (e *Engine) position(ctx context.Context, stale *store.Position) ([]graph.Op, string, error) {
	// Re-read: recursive materialization may have assigned an id since
	// the caller loaded the row.
	pos, err := e.source.Position(ctx, stale.ID)
	if err != nil {
		return nil, "", err
	}
	if pos == nil {
		return nil, "", nil
	}
	recordKey := fmt.Sprintf("%d", pos.ID)
	if pos.GeoID != "" {
		return nil, pos.GeoID, nil
	}
	if id, ok := e.inProgress[progressKey(store.KindPosition, recordKey)]; ok {
		return nil, id, nil
	}

	if pos.PersonID == nil || pos.CourtID == "" {
		logger.Debug("[Position] Skipping, no person or court", "id", pos.ID)
		return nil, "", nil
	}

	roleLabel := positionTypes[pos.PositionType]
	if roleLabel == "" && isJudicialTitle(pos.JobTitle) {
		roleLabel = pos.JobTitle
	}
	if roleLabel == "" {
		logger.Warn("[Position] Skipping unmapped position type", "id", pos.ID, "type", pos.PositionType)
		return nil, "", nil
	}

	var ops []graph.Op

	personOps, personID, err := e.personEntity(ctx, *pos.PersonID)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, personOps...)
	courtOps, courtID, err := e.court(ctx, pos.CourtID)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, courtOps...)
	if personID == "" || courtID == "" {
		logger.Warn("[Position] Skipping, unresolved person or court", "id", pos.ID)
		return nil, "", nil
	}

	// Materializing the holder may already have walked this position.
	refreshed, err := e.source.Position(ctx, pos.ID)
	if err != nil {
		return nil, "", err
	}
	if refreshed != nil && refreshed.GeoID != "" {
		return ops, refreshed.GeoID, nil
	}

	id, done, err := e.begin(ctx, store.KindPosition, recordKey)
	if err != nil {
		return nil, "", err
	}
	defer done()

	logger.Debug("[Position] Materializing", "id", pos.ID, "role", roleLabel)

	// Terminated or retired positions become worked-at edges.
	employment := graph.WorksAtProperty
	if pos.DateTermination != nil || pos.DateRetirement != nil {
		employment = graph.WorkedAtProperty
	}
	ops = append(ops, graph.MakeRelationWithID(id, personID, courtID, employment))

	refs, err := e.positionSourceRefs(ctx, pos)
	if err != nil {
		return nil, "", err
	}

	_, roleChoiceID, err := e.choice(ctx, "position", "Role", roleLabel)
	if err != nil {
		return nil, "", err
	}
	if roleChoiceID != "" {
		rel := graph.MakeRelation(id, roleChoiceID, graph.RoleProperty)
		ops = append(ops, rel)
		provOps, err := e.sourceRelations(ctx, rel.Relation.ID, refs...)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, provOps...)
	}

	if pos.DateStart != nil {
		ops = append(ops, timeTriple(id, graph.StartTimeProperty, *pos.DateStart, pos.DateStartGran))
	}
	if pos.DateTermination != nil {
		ops = append(ops, timeTriple(id, graph.EndTimeProperty, *pos.DateTermination, pos.DateTerminationGran))
		if pos.TerminationReason != "" {
			choiceOps, relID, err := e.choiceRelation(ctx, id, "position", "Termination reason", pos.TerminationReason)
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
	}
	if pos.DateRetirement != nil {
		propertyID, err := e.property(ctx, "position", "Date retired")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, timeTriple(id, propertyID, *pos.DateRetirement, pos.DateStartGran))
		}
	}

	if pos.Sector != "" {
		choiceOps, _, err := e.choiceRelation(ctx, id, "position", "Sector", pos.Sector)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, choiceOps...)
	}

	personRefOps, err := e.positionPersonRefs(ctx, id, pos)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, personRefOps...)

	if pos.HowSelected != "" {
		choiceOps, relID, err := e.choiceRelation(ctx, id, "position", "Selection Method", pos.HowSelected)
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
	if pos.NominationProcess != "" {
		choiceOps, _, err := e.choiceRelation(ctx, id, "position", "Nomination process", pos.NominationProcess)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, choiceOps...)
	}
	if pos.CommitteeAction != "" {
		choiceOps, _, err := e.choiceRelation(ctx, id, "position", "Judicial Committee actions", pos.CommitteeAction)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, choiceOps...)
	}

	dateOps, err := e.positionDates(ctx, id, pos)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, dateOps...)

	if pos.VoteType != "" {
		choiceOps, relID, err := e.choiceRelation(ctx, id, "position", "Vote type", pos.VoteType)
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
	if pos.VoiceVote != nil {
		propertyID, err := e.property(ctx, "position", "Voice vote")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, checkboxTriple(id, propertyID, *pos.VoiceVote))
		}
	}

	voteOps, err := e.positionVotes(ctx, id, pos)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, voteOps...)

	provOps, err := e.sourceRelations(ctx, id, refs...)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, provOps...)

	return ops, id, nil
}

// personEntity resolves a person reference to its external id without
// re-walking the person's positions when the person already exists.
func (e *Engine) personEntity(ctx context.Context, personID int64) ([]graph.Op, string, error) {
	p, err := e.source.Person(ctx, personID)
	if err != nil {
		return nil, "", err
	}
	if p == nil {
		logger.Warn("[Person] Record not found", "id", personID)
		return nil, "", nil
	}
	if p.GeoID != "" {
		return nil, p.GeoID, nil
	}
	if id, ok := e.inProgress[progressKey(store.KindPerson, fmt.Sprintf("%d", p.ID))]; ok {
		return nil, id, nil
	}
	return e.person(ctx, p.ID)
}

func (e *Engine) positionSourceRefs(ctx context.Context, pos *store.Position) ([]sourceRef, error) {
	refs := []sourceRef{{
		Source:   courtListenerSource,
		RecordID: fmt.Sprintf("%d", pos.ID),
		Label:    "Position",
	}}
	if pos.PersonID == nil {
		return refs, nil
	}
	person, err := e.source.Person(ctx, *pos.PersonID)
	if err != nil {
		return nil, err
	}
	if person != nil && person.FJCID != nil {
		refs = append(refs, sourceRef{
			Source:   fjcSource,
			RecordID: fmt.Sprintf("%d", *person.FJCID),
			WebURL:   "https://www.fjc.gov/sites/default/files/history/judges.csv",
		})
	}
	return refs, nil
}

// positionPersonRefs links the appointer, supervisor and predecessor of a
// position, creating those people first when needed.
func (e *Engine) positionPersonRefs(ctx context.Context, id string, pos *store.Position) ([]graph.Op, error) {
	var ops []graph.Op
	for _, ref := range []struct {
		name     string
		personID *int64
	}{
		{"Appointed by", pos.AppointerID},
		{"Supervisor", pos.SupervisorID},
		{"Predecessor", pos.PredecessorID},
	} {
		if ref.personID == nil {
			continue
		}
		propertyID, err := e.property(ctx, "position", ref.name)
		if err != nil {
			return nil, err
		}
		depOps, targetID, err := e.personEntity(ctx, *ref.personID)
		if err != nil {
			return nil, err
		}
		ops = append(ops, depOps...)
		if propertyID == "" || targetID == "" {
			continue
		}
		ops = append(ops, graph.MakeRelation(id, targetID, propertyID))
	}
	return ops, nil
}

// positionDates emits the nomination and confirmation timeline of a
// position as dated triples on the relation id.
func (e *Engine) positionDates(ctx context.Context, id string, pos *store.Position) ([]graph.Op, error) {
	var ops []graph.Op
	for _, field := range []struct {
		name string
		when *time.Time
	}{
		{"Date nominated", pos.DateNominated},
		{"Date referred to judicial committee", pos.DateReferred},
		{"Date of judicial committee action", pos.DateCommitteeAction},
		{"Date elected", pos.DateElected},
		{"Date of recess appointment", pos.DateRecessAppointed},
		{"Date hearing", pos.DateHearing},
		{"Date confirmed", pos.DateConfirmed},
	} {
		if field.when == nil {
			continue
		}
		propertyID, err := e.property(ctx, "position", field.name)
		if err != nil {
			return nil, err
		}
		if propertyID == "" {
			continue
		}
		ops = append(ops, timeTriple(id, propertyID, *field.when, ""))
	}
	return ops, nil
}

// positionVotes emits the confirmation vote counts as numbers.
func (e *Engine) positionVotes(ctx context.Context, id string, pos *store.Position) ([]graph.Op, error) {
	var ops []graph.Op
	for _, field := range []struct {
		name  string
		value string
	}{
		{"Votes yes", int64String(pos.VotesYes)},
		{"Votes no", int64String(pos.VotesNo)},
		{"Votes yes (percent)", floatString(pos.VotesYesPercent)},
		{"Votes no (percent)", floatString(pos.VotesNoPercent)},
	} {
		if field.value == "" {
			continue
		}
		propertyID, err := e.property(ctx, "position", field.name)
		if err != nil {
			return nil, err
		}
		if propertyID == "" {
			continue
		}
		ops = append(ops, numberTriple(id, propertyID, field.value))
	}
	return ops, nil
}

func int64String(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func floatString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
