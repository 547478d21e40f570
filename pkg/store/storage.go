package store

import (
	"context"
	"time"
)

// RecordKind names one source table family in the relational dataset.
type RecordKind string

const (
	KindCourt             RecordKind = "court"
	KindPerson            RecordKind = "person"
	KindPosition          RecordKind = "position"
	KindDocket            RecordKind = "docket"
	KindOriginatingDocket RecordKind = "originating_docket"
	KindOpinion           RecordKind = "opinion"
	KindCluster           RecordKind = "cluster"
	KindCitation          RecordKind = "citation"
	KindArgument          RecordKind = "argument"
)

// AllKinds lists every record kind, in the order recovery walks them.
func AllKinds() []RecordKind {
	return []RecordKind{
		KindCluster,
		KindOpinion,
		KindOriginatingDocket,
		KindCitation,
		KindDocket,
		KindArgument,
		KindCourt,
		KindPerson,
		KindPosition,
	}
}

// Catalog resolves previously published external ids for schema-level
// entities. Lookups are case-insensitive, trimmed matches; a miss returns
// the empty id and is never an error by itself.
type Catalog interface {
	// TypeID resolves a type name to its published id.
	TypeID(ctx context.Context, name string) (string, error)
	// SourceID resolves a source-catalog name to its published id.
	SourceID(ctx context.Context, name string) (string, error)
	// Property resolves a property by owning type name and property name.
	Property(ctx context.Context, owner, name string) (string, error)
	// PropertyChoice resolves a property and one of its choices, matched
	// against either the choice key or its display value. When the
	// property itself is unresolved the choice lookup is never attempted
	// and both ids are empty.
	PropertyChoice(ctx context.Context, owner, name, choice string) (propertyID, choiceID string, err error)
}

// Ledger owns the per-record external-id and touched-this-run markers.
// It is the only component permitted to persist them.
type Ledger interface {
	// MarkAssigned durably records the external id for a record. Called
	// exactly once per record, immediately after id generation.
	MarkAssigned(ctx context.Context, kind RecordKind, key, externalID string) error
	// MarkTouched flags a record as modified by the current run.
	MarkTouched(ctx context.Context, kind RecordKind, key string) error
	// ClearTouched resets the touched flag across every kind, after a
	// successful publish.
	ClearTouched(ctx context.Context) error
	// ResetRun clears both the assigned ids and the touched flags for
	// every record touched in the current run, across every kind. It is
	// the system's only rollback mechanism.
	ResetRun(ctx context.Context) error
}

// SourceStore reads source records. A nil record with a nil error means
// the row does not exist.
type SourceStore interface {
	Court(ctx context.Context, id string) (*Court, error)
	CourtAppealsTo(ctx context.Context, id string) ([]string, error)
	CourtAppealsFrom(ctx context.Context, id string) ([]string, error)

	Person(ctx context.Context, id int64) (*Person, error)
	PersonPositions(ctx context.Context, personID int64) ([]Position, error)
	// JudgeByName finds a person holding a judicial position at the given
	// court on the given date, by last name. Returns 0 when no match.
	JudgeByName(ctx context.Context, lastName, courtID string, onDate *time.Time) (int64, error)

	Position(ctx context.Context, id int64) (*Position, error)

	Docket(ctx context.Context, id int64) (*Docket, error)
	OriginatingDocket(ctx context.Context, id int64) (*OriginatingDocket, error)
	DocketArguments(ctx context.Context, docketID int64) ([]Argument, error)

	Cluster(ctx context.Context, id int64) (*Cluster, error)
	Opinion(ctx context.Context, id int64) (*Opinion, error)
	ClusterOpinions(ctx context.Context, clusterID int64) ([]Opinion, error)
	ClusterPanel(ctx context.Context, clusterID int64) ([]int64, error)
	OpinionJoinedBy(ctx context.Context, opinionID int64) ([]int64, error)

	// NextCitation returns one unmaterialized citation whose citing
	// cluster already has an external id, or nil when none remain.
	NextCitation(ctx context.Context, citingClusterID int64) (*Citation, error)
	// ClustersWithIDs lists cluster keys that already carry external ids,
	// the candidate set for citation expansion.
	ClustersWithIDs(ctx context.Context) ([]int64, error)

	// PendingKeys lists up to limit primary keys of kind with no external
	// id yet, strictly after the given key. An empty start scans from the
	// beginning.
	PendingKeys(ctx context.Context, kind RecordKind, start string, limit int) ([]string, error)

	Argument(ctx context.Context, id int64) (*Argument, error)
}

// Court is a row of the court table. String fields use "" for absent.
type Court struct {
	ID             string
	GeoID          string
	FullName       string
	ShortName      string
	CitationString string
	URL            string
	Jurisdiction   string
	StartDate      *time.Time
	EndDate        *time.Time
}

// Person is an alias-resolved person row joined with race and political
// affiliation.
type Person struct {
	ID             int64
	GeoID          string
	Slug           string
	NameFirst      string
	NameMiddle     string
	NameLast       string
	NameSuffix     string
	DateBorn       *time.Time
	DateBornGran   string
	DateDied       *time.Time
	DateDiedGran   string
	BirthCity      string
	BirthState     string
	Gender         string
	Religion       string
	Race           string
	PoliticalParty string
	PartySource    string
	FJCID          *int64
	IsAliasOf      *int64
}

type Position struct {
	ID                  int64
	GeoID               string
	PersonID            *int64
	CourtID             string
	AppointerID         *int64
	SupervisorID        *int64
	PredecessorID       *int64
	PositionType        string
	JobTitle            string
	Sector              string
	HowSelected         string
	TerminationReason   string
	NominationProcess   string
	CommitteeAction     string
	VoteType            string
	VoiceVote           *bool
	VotesYes            *int64
	VotesNo             *int64
	VotesYesPercent     *float64
	VotesNoPercent      *float64
	DateNominated       *time.Time
	DateElected         *time.Time
	DateRecessAppointed *time.Time
	DateReferred        *time.Time
	DateCommitteeAction *time.Time
	DateHearing         *time.Time
	DateConfirmed       *time.Time
	DateStart           *time.Time
	DateStartGran       string
	DateTermination     *time.Time
	DateTerminationGran string
	DateRetirement      *time.Time
}

type Docket struct {
	ID             int64
	GeoID          string
	CourtID        string
	AppealFromID   string
	OriginatingID  *int64
	AssignedToID   *int64
	ReferredToID   *int64
	ParentDocketID *int64
	DocketNumber   string
	CaseName       string
	CaseNameFull   string
	CaseNameShort  string
	Slug           string
	PacerCaseID    string
	NatureOfSuit   string
	JuryDemand     string
	Cause          string
	DateFiled      *time.Time
	DateTerminated *time.Time
	DateArgued     *time.Time
}

type OriginatingDocket struct {
	ID              int64
	GeoID           string
	DocketNumber    string
	AssignedToID    *int64
	OrderingJudgeID *int64
	CourtReporter   string
	DateFiled       *time.Time
	DateJudgment    *time.Time
	DateDisposed    *time.Time
}

type Cluster struct {
	ID                 int64
	GeoID              string
	DocketID           *int64
	CourtID            string
	Slug               string
	CaseName           string
	CaseNameFull       string
	CaseNameShort      string
	SCDBID             string
	SCDBDirection      string
	SCDBVotesMajority  *int64
	SCDBVotesMinority  *int64
	Judges             string
	PrecedentialStatus string
	CitationCount      *int64
	Syllabus           string
	ProceduralHistory  string
	History            string
	Headnotes          string
	Headmatter         string
	Summary            string
	Attorneys          string
	Arguments          string
	Correction         string
	OtherDates         string
	Disposition        string
	Posture            string
	HarvardPDFPath     string
	DateFiled          *time.Time
}

type Opinion struct {
	ID                int64
	GeoID             string
	ClusterID         *int64
	Type              string
	AuthorID          *int64
	AuthorStr         string
	JoinedByStr       string
	PerCuriam         *bool
	DownloadURL       string
	SHA1              string
	PageCount         *int64
	PlainText         string
	HTML              string
	HTMLLawbox        string
	HTMLColumbia      string
	HTMLWithCitations string
	HTMLAnon2020      string
	XMLHarvard        string
}

// Citation is a citing→cited edge between opinions, joined up to the
// cluster level with any parenthetical describing the citation.
type Citation struct {
	ID                int64
	GeoID             string
	CitingOpinionID   int64
	CitedOpinionID    int64
	CitingClusterID   *int64
	CitedClusterID    *int64
	CitingClusterGeo  string
	CitingClusterSlug string
	Depth             *int64
	Parenthetical     string
}

// Argument is an oral-argument audio row.
type Argument struct {
	ID                int64
	GeoID             string
	DocketID          *int64
	CaseName          string
	Judges            string
	SHA1              string
	DownloadURL       string
	Duration          *int64
	LocalPathMP3      string
	LocalPathOriginal string
	ArchiveURL        string
	Transcript        string
	// TranscriptStatus follows the source coding: 1 transcribed, 4 too
	// large to transcribe, anything else still pending.
	TranscriptStatus *int64
}
