package api

import (
	"time"

	"livecap/internal/session"
	"livecap/internal/srt"
	"livecap/internal/store"
)

// FromSnapshot converts a live session snapshot to its JSON view.
func FromSnapshot(snap session.Snapshot) SessionView {
	return SessionView{
		ID:         snap.ID,
		Source:     snap.Source,
		Status:     string(snap.Status),
		Error:      snap.Error,
		CueCount:   snap.CueCount,
		RecentCues: cueViews(snap.RecentCues),
		SinkKind:   snap.SinkKind,
		SinkPath:   snap.SinkPath,
		CreatedAt:  snap.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// FromRecord converts a persisted session record to its JSON view. Used
// for sessions that predate the current daemon process.
func FromRecord(rec *store.SessionRecord, cues []srt.Cue) SessionView {
	recent := cues
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	return SessionView{
		ID:         rec.ID,
		Source:     rec.Source,
		Status:     string(rec.Status),
		Error:      rec.ErrorMessage,
		CueCount:   len(cues),
		RecentCues: cueViews(recent),
		SinkKind:   rec.SinkKind,
		CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func cueViews(cues []srt.Cue) []CueView {
	if len(cues) == 0 {
		return nil
	}
	views := make([]CueView, len(cues))
	for i, cue := range cues {
		views[i] = CueView{
			Index:         cue.Index,
			Start:         cue.Start,
			End:           cue.End,
			StartTimecode: srt.FormatTimestamp(cue.Start),
			EndTimecode:   srt.FormatTimestamp(cue.End),
			Text:          cue.Text,
		}
	}
	return views
}
