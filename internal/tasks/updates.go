package tasks

import (
	"fmt"

	"github.com/kestrelworks/trackset/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveTracks Phase = iota
	CreatePlaylist
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case ResolveTracks:
		return "resolve_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

func resolveStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Resolving %d queries...", total),
	}
}

func resolvedUpdate(step, total int, result *models.ResolutionResult) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, result.Query, result.Reason)
	if result.Selected != nil {
		msg = fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, result.Query, result.Selected.Title)
	}
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    result,
	}
}

func creatingPlaylistUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist: %s...", title),
	}
}

func playlistCreatedUpdate(title, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", title, id),
	}
}

func addedTrackUpdate(step, total int, videoID string, added bool) ProgressUpdate {
	mark := "✓"
	if !added {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, videoID),
	}
}
