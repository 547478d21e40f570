package migrate

import (
	"context"
	"fmt"

	"github.com/openjurist/lawgraph/pkg/graph"
	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/store"
)

const defaultArgumentCover = "PT56MeAMXSqY9BRN5h993c"

// Descriptions for each speech-to-text transcription state.
const (
	transcriptDone    = "Speech to text transcription completed using an OpenAI Whisper model."
	transcriptTooBig  = "Speech to text transcription was too large (over 25 MB)."
	transcriptPending = "Speech to text transcription has yet to be completed."
)

// argumentByID materializes one oral-argument recording.
func (e *Engine) argumentByID(ctx context.Context, key int64) ([]graph.Op, string, error) {
	arg, err := e.source.Argument(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if arg == nil {
		logger.Warn("[Argument] Record not found", "id", key)
		return nil, "", nil
	}

	recordKey := fmt.Sprintf("%d", arg.ID)
	if arg.GeoID != "" {
		return nil, arg.GeoID, nil
	}
	if id, ok := e.inProgress[progressKey(store.KindArgument, recordKey)]; ok {
		return nil, id, nil
	}

	id, done, err := e.begin(ctx, store.KindArgument, recordKey)
	if err != nil {
		return nil, "", err
	}
	defer done()

	logger.Debug("[Argument] Materializing", "id", arg.ID, "case", arg.CaseName)

	ops := []graph.Op{graph.MakeText(id, graph.NameProperty, "Argument - "+arg.CaseName)}

	if arg.CaseName != "" {
		propertyID, err := e.property(ctx, "argument", "Case name")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, graph.MakeText(id, propertyID, arg.CaseName))
		}
	}

	typeOps, err := e.typeRelation(ctx, id, "Argument")
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, typeOps...)
	ops = append(ops, graph.MakeRelation(id, defaultArgumentCover, graph.CoverProperty))

	ops = append(ops, e.argumentTranscript(id, arg)...)

	refs := argumentSourceRefs(arg)

	if arg.DocketID != nil {
		depOps, docketID, err := e.docket(ctx, *arg.DocketID)
		if err != nil {
			return nil, "", err
		}
		ops = append(ops, depOps...)
		if docketID != "" {
			for _, link := range []struct {
				owner, name  string
				from, target string
			}{
				{"argument", "Docket", id, docketID},
				{"docket", "Arguments", docketID, id},
			} {
				propertyID, err := e.property(ctx, link.owner, link.name)
				if err != nil {
					return nil, "", err
				}
				if propertyID == "" {
					continue
				}
				rel := graph.MakeRelation(link.from, link.target, propertyID)
				ops = append(ops, rel)
				provOps, err := e.sourceRelations(ctx, rel.Relation.ID, refs...)
				if err != nil {
					return nil, "", err
				}
				ops = append(ops, provOps...)
			}
		}
	}

	downloadURL := arg.DownloadURL
	if downloadURL == "" && arg.LocalPathMP3 != "" {
		downloadURL = "https://storage.courtlistener.com/" + arg.LocalPathMP3
	}
	if downloadURL != "" {
		propertyID, err := e.property(ctx, "argument", "Download URL")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, urlTriple(id, propertyID, downloadURL))
		}
	}
	if arg.ArchiveURL != "" {
		ops = append(ops, urlTriple(id, graph.MediaURLProperty, arg.ArchiveURL))
	}
	if arg.Duration != nil && *arg.Duration != 0 {
		propertyID, err := e.property(ctx, "argument", "Duration (seconds)")
		if err != nil {
			return nil, "", err
		}
		if propertyID != "" {
			ops = append(ops, numberTriple(id, propertyID, int64String(arg.Duration)))
		}
	}

	provOps, err := e.sourceRelations(ctx, id, refs...)
	if err != nil {
		return nil, "", err
	}
	ops = append(ops, provOps...)

	return ops, id, nil
}

// argumentTranscript emits the transcript content blocks and a
// description recording the transcription state.
func (e *Engine) argumentTranscript(id string, arg *store.Argument) []graph.Op {
	status := int64(0)
	if arg.TranscriptStatus != nil {
		status = *arg.TranscriptStatus
	}

	var ops []graph.Op
	switch status {
	case 1:
		if arg.Transcript == "" {
			return nil
		}
		ops = append(ops, contentBlocks(id, transcriptParagraphs(arg.Transcript))...)
		ops = append(ops, graph.MakeText(id, graph.DescriptionProperty, transcriptDone))
	case 4:
		if arg.Transcript != "" {
			ops = append(ops, contentBlocks(id, transcriptParagraphs(arg.Transcript))...)
		}
		ops = append(ops, graph.MakeText(id, graph.DescriptionProperty, transcriptTooBig))
	default:
		ops = append(ops, graph.MakeText(id, graph.DescriptionProperty, transcriptPending))
	}
	return ops
}

// argumentSourceRefs builds the provenance of an argument: the primary
// record with its hosted audio, plus the Internet Archive mirror.
func argumentSourceRefs(a *store.Argument) []sourceRef {
	ref := sourceRef{
		Source:   courtListenerSource,
		RecordID: fmt.Sprintf("%d", a.ID),
		Label:    "Oral argument",
	}
	switch {
	case a.LocalPathMP3 != "":
		ref.WebURL = "https://storage.courtlistener.com/" + a.LocalPathMP3
	case a.LocalPathOriginal != "":
		ref.WebURL = "https://storage.courtlistener.com/" + a.LocalPathOriginal
	}
	if a.DownloadURL != "" {
		ref.ExtraURLs = []string{a.DownloadURL}
	}

	refs := []sourceRef{ref}
	if a.ArchiveURL != "" {
		refs = append(refs, sourceRef{
			Source:   archiveSource,
			MediaURL: a.ArchiveURL,
		})
	}
	return refs
}
