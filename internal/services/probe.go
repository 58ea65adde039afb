package services

import (
	"context"
	"fmt"

	"github.com/kestrelworks/trackset/internal/auth"
	"github.com/kestrelworks/trackset/internal/shared"
)

// staticSource is a SessionSource pinned to one handle. It lets a client
// probe a credential that no manager has adopted yet.
type staticSource struct {
	handle *auth.SessionHandle
}

func (s staticSource) EnsureReady(context.Context) (*auth.SessionHandle, error) {
	return s.handle, nil
}

// ProbeSession validates a handle with a live call against whichever
// backend it belongs to. It satisfies [auth.ProbeFunc].
func ProbeSession(ctx context.Context, handle *auth.SessionHandle) error {
	switch handle.Backend() {
	case auth.BackendBrowser:
		return NewMusicWebClient(staticSource{handle}).Validate(ctx)
	case auth.BackendOAuth:
		return NewDataAPIClient(staticSource{handle}).Validate(ctx)
	default:
		return fmt.Errorf("%w: no backend on handle", shared.ErrNotAuthenticated)
	}
}
