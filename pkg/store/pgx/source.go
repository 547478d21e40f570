package pgx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/openjurist/lawgraph/pkg/store"
)

func noRows(err error) bool {
	return errors.Is(err, pgxv5.ErrNoRows)
}

func (s *Store) Court(ctx context.Context, id string) (*store.Court, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, COALESCE(geo_id, ''), full_name, COALESCE(short_name, ''),
		       COALESCE(citation_string, ''), COALESCE(url, ''),
		       COALESCE(jurisdiction, ''), start_date, end_date
		  FROM search_court
		 WHERE id = $1`, id)

	var c store.Court
	err := row.Scan(&c.ID, &c.GeoID, &c.FullName, &c.ShortName, &c.CitationString,
		&c.URL, &c.Jurisdiction, &c.StartDate, &c.EndDate)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("court %s: %w", id, err)
	}
	return &c, nil
}

func (s *Store) courtEdges(ctx context.Context, query, id string) ([]string, error) {
	rows, err := s.conn.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var other string
		if err := rows.Scan(&other); err != nil {
			return nil, err
		}
		ids = append(ids, other)
	}
	return ids, rows.Err()
}

func (s *Store) CourtAppealsTo(ctx context.Context, id string) ([]string, error) {
	return s.courtEdges(ctx,
		`SELECT to_court_id FROM search_court_appeals_to WHERE from_court_id = $1 ORDER BY to_court_id`, id)
}

func (s *Store) CourtAppealsFrom(ctx context.Context, id string) ([]string, error) {
	return s.courtEdges(ctx,
		`SELECT from_court_id FROM search_court_appeals_to WHERE to_court_id = $1 ORDER BY from_court_id`, id)
}

func (s *Store) personRow(ctx context.Context, id int64) (*store.Person, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, COALESCE(geo_id, ''), COALESCE(slug, ''),
		       COALESCE(name_first, ''), COALESCE(name_middle, ''),
		       COALESCE(name_last, ''), COALESCE(name_suffix, ''),
		       date_dob, COALESCE(date_granularity_dob, ''),
		       date_dod, COALESCE(date_granularity_dod, ''),
		       COALESCE(dob_city, ''), COALESCE(dob_state, ''),
		       COALESCE(gender, ''), COALESCE(religion, ''),
		       fjc_id, is_alias_of_id
		  FROM people_db_person
		 WHERE id = $1`, id)

	var p store.Person
	err := row.Scan(&p.ID, &p.GeoID, &p.Slug, &p.NameFirst, &p.NameMiddle,
		&p.NameLast, &p.NameSuffix, &p.DateBorn, &p.DateBornGran,
		&p.DateDied, &p.DateDiedGran, &p.BirthCity, &p.BirthState,
		&p.Gender, &p.Religion, &p.FJCID, &p.IsAliasOf)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("person %d: %w", id, err)
	}
	return &p, nil
}

// Person loads a person row with aliases resolved to their target and the
// race and political-affiliation joins applied.
func (s *Store) Person(ctx context.Context, id int64) (*store.Person, error) {
	p, err := s.personRow(ctx, id)
	if err != nil || p == nil {
		return p, err
	}

	// Alias rows point at the canonical person. Bounded to avoid loops in
	// dirty data.
	for hops := 0; p.IsAliasOf != nil && hops < 4; hops++ {
		target, err := s.personRow(ctx, *p.IsAliasOf)
		if err != nil {
			return nil, err
		}
		if target == nil {
			break
		}
		p = target
	}

	err = s.conn.QueryRow(ctx, `
		SELECT COALESCE(r.race, '')
		  FROM people_db_person_race pr
		  JOIN people_db_race r ON r.id = pr.race_id
		 WHERE pr.person_id = $1
		 LIMIT 1`, p.ID).Scan(&p.Race)
	if err != nil && !noRows(err) {
		return nil, fmt.Errorf("person %d race: %w", p.ID, err)
	}

	err = s.conn.QueryRow(ctx, `
		SELECT COALESCE(political_party, ''), COALESCE(source, '')
		  FROM people_db_politicalaffiliation
		 WHERE person_id = $1
		 ORDER BY id
		 LIMIT 1`, p.ID).Scan(&p.PoliticalParty, &p.PartySource)
	if err != nil && !noRows(err) {
		return nil, fmt.Errorf("person %d affiliation: %w", p.ID, err)
	}

	return p, nil
}

const positionColumns = `
	id, COALESCE(geo_id, ''), person_id, COALESCE(court_id, ''),
	appointer_id, supervisor_id, predecessor_id,
	COALESCE(position_type, ''), COALESCE(job_title, ''), COALESCE(sector::text, ''),
	COALESCE(how_selected, ''), COALESCE(termination_reason, ''),
	COALESCE(nomination_process, ''), COALESCE(judicial_committee_action, ''),
	COALESCE(vote_type, ''), voice_vote, votes_yes, votes_no,
	votes_yes_percent, votes_no_percent,
	date_nominated, date_elected, date_recess_appointment,
	date_referred_to_judicial_committee, date_judicial_committee_action,
	date_hearing, date_confirmation,
	date_start, COALESCE(date_granularity_start, ''),
	date_termination, COALESCE(date_granularity_termination, ''),
	date_retirement`

func scanPosition(row pgxv5.Row) (*store.Position, error) {
	var p store.Position
	err := row.Scan(&p.ID, &p.GeoID, &p.PersonID, &p.CourtID,
		&p.AppointerID, &p.SupervisorID, &p.PredecessorID,
		&p.PositionType, &p.JobTitle, &p.Sector,
		&p.HowSelected, &p.TerminationReason,
		&p.NominationProcess, &p.CommitteeAction,
		&p.VoteType, &p.VoiceVote, &p.VotesYes, &p.VotesNo,
		&p.VotesYesPercent, &p.VotesNoPercent,
		&p.DateNominated, &p.DateElected, &p.DateRecessAppointed,
		&p.DateReferred, &p.DateCommitteeAction,
		&p.DateHearing, &p.DateConfirmed,
		&p.DateStart, &p.DateStartGran,
		&p.DateTermination, &p.DateTerminationGran,
		&p.DateRetirement)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Position(ctx context.Context, id int64) (*store.Position, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT `+positionColumns+` FROM people_db_position WHERE id = $1`, id)
	p, err := scanPosition(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("position %d: %w", id, err)
	}
	return p, nil
}

func (s *Store) PersonPositions(ctx context.Context, personID int64) ([]store.Position, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT `+positionColumns+` FROM people_db_position WHERE person_id = $1 ORDER BY id`, personID)
	if err != nil {
		return nil, fmt.Errorf("person %d positions: %w", personID, err)
	}
	defer rows.Close()

	var positions []store.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *p)
	}
	return positions, rows.Err()
}

// JudgeByName finds a person sitting at the given court on the given date
// by last name. Used to resolve author strings that carry no person id.
func (s *Store) JudgeByName(ctx context.Context, lastName, courtID string, onDate *time.Time) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx, `
		SELECT p.id
		  FROM people_db_person p
		  JOIN people_db_position pos ON pos.person_id = p.id
		 WHERE TRIM(p.name_last) ILIKE TRIM($1)
		   AND pos.court_id = $2
		   AND ($3::date IS NULL OR pos.date_start IS NULL OR pos.date_start <= $3)
		   AND ($3::date IS NULL OR pos.date_termination IS NULL OR pos.date_termination >= $3)
		 ORDER BY p.id
		 LIMIT 1`, lastName, courtID, onDate).Scan(&id)
	if noRows(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("judge by name %q at %s: %w", lastName, courtID, err)
	}
	return id, nil
}

func (s *Store) Docket(ctx context.Context, id int64) (*store.Docket, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, COALESCE(geo_id, ''), COALESCE(court_id, ''),
		       COALESCE(appeal_from_id, ''), originating_court_information_id,
		       assigned_to_id, referred_to_id, parent_docket_id,
		       COALESCE(docket_number, ''), COALESCE(case_name, ''),
		       COALESCE(case_name_full, ''), COALESCE(case_name_short, ''),
		       COALESCE(slug, ''), COALESCE(pacer_case_id, ''),
		       COALESCE(nature_of_suit, ''), COALESCE(jury_demand, ''),
		       COALESCE(cause, ''),
		       date_filed, date_terminated, date_argued
		  FROM search_docket
		 WHERE id = $1`, id)

	var d store.Docket
	err := row.Scan(&d.ID, &d.GeoID, &d.CourtID, &d.AppealFromID,
		&d.OriginatingID, &d.AssignedToID, &d.ReferredToID, &d.ParentDocketID,
		&d.DocketNumber, &d.CaseName, &d.CaseNameFull, &d.CaseNameShort,
		&d.Slug, &d.PacerCaseID, &d.NatureOfSuit, &d.JuryDemand, &d.Cause,
		&d.DateFiled, &d.DateTerminated, &d.DateArgued)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docket %d: %w", id, err)
	}
	return &d, nil
}

func (s *Store) OriginatingDocket(ctx context.Context, id int64) (*store.OriginatingDocket, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, COALESCE(geo_id, ''), COALESCE(docket_number, ''),
		       assigned_to_id, ordering_judge_id, COALESCE(court_reporter, ''),
		       date_filed, date_judgment, date_disposed
		  FROM search_originatingcourtinformation
		 WHERE id = $1`, id)

	var o store.OriginatingDocket
	err := row.Scan(&o.ID, &o.GeoID, &o.DocketNumber,
		&o.AssignedToID, &o.OrderingJudgeID, &o.CourtReporter,
		&o.DateFiled, &o.DateJudgment, &o.DateDisposed)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("originating docket %d: %w", id, err)
	}
	return &o, nil
}

func (s *Store) Cluster(ctx context.Context, id int64) (*store.Cluster, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT oc.id, COALESCE(oc.geo_id, ''), oc.docket_id,
		       COALESCE(d.court_id, ''), COALESCE(oc.slug, ''),
		       COALESCE(oc.case_name, ''), COALESCE(oc.case_name_full, ''),
		       COALESCE(oc.case_name_short, ''), COALESCE(oc.scdb_id, ''),
		       COALESCE(oc.scdb_decision_direction::text, ''),
		       oc.scdb_votes_majority, oc.scdb_votes_minority,
		       COALESCE(oc.judges, ''), COALESCE(oc.precedential_status, ''),
		       oc.citation_count, COALESCE(oc.syllabus, ''),
		       COALESCE(oc.procedural_history, ''), COALESCE(oc.history, ''),
		       COALESCE(oc.headnotes, ''), COALESCE(oc.headmatter, ''),
		       COALESCE(oc.summary, ''), COALESCE(oc.attorneys, ''),
		       COALESCE(oc.arguments, ''), COALESCE(oc.correction, ''),
		       COALESCE(oc.other_dates, ''), COALESCE(oc.disposition, ''),
		       COALESCE(oc.posture, ''), COALESCE(oc.filepath_pdf_harvard, ''),
		       oc.date_filed
		  FROM search_opinioncluster oc
		  LEFT JOIN search_docket d ON d.id = oc.docket_id
		 WHERE oc.id = $1`, id)

	var c store.Cluster
	err := row.Scan(&c.ID, &c.GeoID, &c.DocketID, &c.CourtID, &c.Slug,
		&c.CaseName, &c.CaseNameFull, &c.CaseNameShort, &c.SCDBID,
		&c.SCDBDirection, &c.SCDBVotesMajority, &c.SCDBVotesMinority,
		&c.Judges, &c.PrecedentialStatus, &c.CitationCount, &c.Syllabus,
		&c.ProceduralHistory, &c.History, &c.Headnotes, &c.Headmatter,
		&c.Summary, &c.Attorneys, &c.Arguments, &c.Correction,
		&c.OtherDates, &c.Disposition, &c.Posture, &c.HarvardPDFPath,
		&c.DateFiled)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cluster %d: %w", id, err)
	}
	return &c, nil
}

const opinionColumns = `
	id, COALESCE(geo_id, ''), cluster_id, COALESCE(type, ''),
	author_id, COALESCE(author_str, ''), COALESCE(joined_by_str, ''),
	per_curiam, COALESCE(download_url, ''), COALESCE(sha1, ''), page_count,
	COALESCE(plain_text, ''), COALESCE(html, ''), COALESCE(html_lawbox, ''),
	COALESCE(html_columbia, ''), COALESCE(html_with_citations, ''),
	COALESCE(html_anon_2020, ''), COALESCE(xml_harvard, '')`

func scanOpinion(row pgxv5.Row) (*store.Opinion, error) {
	var o store.Opinion
	err := row.Scan(&o.ID, &o.GeoID, &o.ClusterID, &o.Type,
		&o.AuthorID, &o.AuthorStr, &o.JoinedByStr,
		&o.PerCuriam, &o.DownloadURL, &o.SHA1, &o.PageCount,
		&o.PlainText, &o.HTML, &o.HTMLLawbox,
		&o.HTMLColumbia, &o.HTMLWithCitations,
		&o.HTMLAnon2020, &o.XMLHarvard)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) Opinion(ctx context.Context, id int64) (*store.Opinion, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT `+opinionColumns+` FROM search_opinion WHERE id = $1`, id)

	o, err := scanOpinion(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opinion %d: %w", id, err)
	}
	return o, nil
}

func (s *Store) ClusterOpinions(ctx context.Context, clusterID int64) ([]store.Opinion, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT `+opinionColumns+` FROM search_opinion WHERE cluster_id = $1 ORDER BY id`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("cluster %d opinions: %w", clusterID, err)
	}
	defer rows.Close()

	var opinions []store.Opinion
	for rows.Next() {
		o, err := scanOpinion(rows)
		if err != nil {
			return nil, err
		}
		opinions = append(opinions, *o)
	}
	return opinions, rows.Err()
}

func (s *Store) personEdges(ctx context.Context, query string, id int64) ([]int64, error) {
	rows, err := s.conn.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var personID int64
		if err := rows.Scan(&personID); err != nil {
			return nil, err
		}
		ids = append(ids, personID)
	}
	return ids, rows.Err()
}

func (s *Store) ClusterPanel(ctx context.Context, clusterID int64) ([]int64, error) {
	return s.personEdges(ctx,
		`SELECT person_id FROM search_opinioncluster_panel WHERE opinioncluster_id = $1 ORDER BY person_id`,
		clusterID)
}

func (s *Store) OpinionJoinedBy(ctx context.Context, opinionID int64) ([]int64, error) {
	return s.personEdges(ctx,
		`SELECT person_id FROM search_opinion_joined_by WHERE opinion_id = $1 ORDER BY person_id`,
		opinionID)
}

// NextCitation returns one unmaterialized citation whose citing opinion
// belongs to the given cluster, joined up to both clusters.
func (s *Store) NextCitation(ctx context.Context, citingClusterID int64) (*store.Citation, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT sc.id, COALESCE(sc.geo_id, ''),
		       sc.citing_opinion_id, sc.cited_opinion_id,
		       citing.cluster_id, cited.cluster_id,
		       COALESCE(cc.geo_id, ''), COALESCE(cc.slug, ''),
		       sc.depth
		  FROM search_opinionscited sc
		  JOIN search_opinion citing ON citing.id = sc.citing_opinion_id
		  JOIN search_opinion cited ON cited.id = sc.cited_opinion_id
		  JOIN search_opinioncluster cc ON cc.id = citing.cluster_id
		 WHERE citing.cluster_id = $1 AND sc.geo_id IS NULL
		 ORDER BY sc.id
		 LIMIT 1`, citingClusterID)

	var c store.Citation
	err := row.Scan(&c.ID, &c.GeoID, &c.CitingOpinionID, &c.CitedOpinionID,
		&c.CitingClusterID, &c.CitedClusterID,
		&c.CitingClusterGeo, &c.CitingClusterSlug, &c.Depth)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next citation for cluster %d: %w", citingClusterID, err)
	}

	err = s.conn.QueryRow(ctx, `
		SELECT COALESCE(text, '')
		  FROM search_parenthetical
		 WHERE describing_opinion_id = $1 AND described_opinion_id = $2
		 ORDER BY score DESC
		 LIMIT 1`, c.CitingOpinionID, c.CitedOpinionID).Scan(&c.Parenthetical)
	if err != nil && !noRows(err) {
		return nil, fmt.Errorf("citation %d parenthetical: %w", c.ID, err)
	}

	return &c, nil
}

func (s *Store) ClustersWithIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id FROM search_opinioncluster WHERE geo_id IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("clusters with ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PendingKeys lists up to limit keys of kind that carry no external id
// yet, in key order, starting at start.
func (s *Store) PendingKeys(ctx context.Context, kind store.RecordKind, start string, limit int) ([]string, error) {
	table, err := kindTable(kind)
	if err != nil {
		return nil, err
	}

	var rows pgxv5.Rows
	switch {
	case start == "":
		rows, err = s.conn.Query(ctx, fmt.Sprintf(
			`SELECT id::text FROM %s WHERE geo_id IS NULL ORDER BY id LIMIT $1`, table), limit)
	case kind == store.KindCourt:
		// Strictly greater: skipped records must not stall the scan.
		rows, err = s.conn.Query(ctx, fmt.Sprintf(
			`SELECT id::text FROM %s WHERE geo_id IS NULL AND id > $1 ORDER BY id LIMIT $2`, table), start, limit)
	default:
		startID, convErr := strconv.ParseInt(start, 10, 64)
		if convErr != nil {
			return nil, fmt.Errorf("pending keys %s: bad start key %q: %w", kind, start, convErr)
		}
		rows, err = s.conn.Query(ctx, fmt.Sprintf(
			`SELECT id::text FROM %s WHERE geo_id IS NULL AND id > $1 ORDER BY id LIMIT $2`, table), startID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("pending keys %s: %w", kind, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

const argumentColumns = `
	id, COALESCE(geo_id, ''), docket_id, COALESCE(case_name, ''),
	COALESCE(judges, ''), COALESCE(sha1, ''), COALESCE(download_url, ''),
	duration, COALESCE(local_path_mp3, ''),
	COALESCE(local_path_original_file, ''), COALESCE(filepath_ia, ''),
	COALESCE(stt_transcript, ''), stt_status`

func scanArgument(row pgxv5.Row) (*store.Argument, error) {
	var a store.Argument
	err := row.Scan(&a.ID, &a.GeoID, &a.DocketID, &a.CaseName,
		&a.Judges, &a.SHA1, &a.DownloadURL, &a.Duration,
		&a.LocalPathMP3, &a.LocalPathOriginal, &a.ArchiveURL,
		&a.Transcript, &a.TranscriptStatus)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) DocketArguments(ctx context.Context, docketID int64) ([]store.Argument, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT `+argumentColumns+` FROM audio_audio WHERE docket_id = $1 ORDER BY id`, docketID)
	if err != nil {
		return nil, fmt.Errorf("docket %d arguments: %w", docketID, err)
	}
	defer rows.Close()

	var args []store.Argument
	for rows.Next() {
		a, err := scanArgument(rows)
		if err != nil {
			return nil, err
		}
		args = append(args, *a)
	}
	return args, rows.Err()
}

func (s *Store) Argument(ctx context.Context, id int64) (*store.Argument, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT `+argumentColumns+` FROM audio_audio WHERE id = $1`, id)

	a, err := scanArgument(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("argument %d: %w", id, err)
	}
	return a, nil
}
