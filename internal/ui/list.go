package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/shared"
)

var (
	_ list.Item = queryItem{}
	_ list.Item = candidateItem{}
)

// queryItem wraps one [models.ResolutionResult] to implement [list.Item].
type queryItem struct {
	result  models.ResolutionResult
	dropped bool
}

func (i queryItem) FilterValue() string { return i.result.Query }
func (i queryItem) Title() string {
	if i.dropped {
		return fmt.Sprintf("✗ %s", i.result.Query)
	}
	return i.result.Query
}
func (i queryItem) Description() string {
	if i.dropped {
		return "dropped"
	}
	if i.result.Selected == nil {
		return fmt.Sprintf("unresolved: %s", i.result.Reason)
	}
	sel := i.result.Selected
	return fmt.Sprintf("%s • %s • %s", sel.Title, sel.Channel, shared.FormatDuration(sel.Duration))
}

// candidateItem wraps a [models.SearchCandidate] to implement [list.Item].
type candidateItem struct {
	candidate models.SearchCandidate
	current   bool
}

func (i candidateItem) FilterValue() string { return i.candidate.Title }
func (i candidateItem) Title() string {
	if i.current {
		return fmt.Sprintf("✓ %s", i.candidate.Title)
	}
	return i.candidate.Title
}
func (i candidateItem) Description() string {
	desc := fmt.Sprintf("%s • %s • %d views",
		i.candidate.Channel,
		shared.FormatDuration(i.candidate.Duration),
		i.candidate.ViewCount,
	)
	if i.candidate.IsRemix {
		desc = fmt.Sprintf("%s • remix", desc)
	}
	if i.candidate.IsRemaster {
		desc = fmt.Sprintf("%s • remaster", desc)
	}
	return desc
}
