package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kestrelworks/trackset/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireManager() error {
	if r.manager == nil {
		return fmt.Errorf("%w: session manager not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// AuthLogin starts the device authorization flow and, unless --wait=false,
// polls until the user approves the device in their browser.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireManager(); err != nil {
		return err
	}

	grant, err := r.manager.BeginDeviceFlow(ctx)
	if err != nil {
		return fmt.Errorf("failed to start device flow: %w", err)
	}

	r.writePlain("Visit: %s\n", grant.VerificationURL)
	r.writePlain("Enter code: %s\n", grant.UserCode)
	r.writePlain("The code expires in %s.\n", (time.Duration(grant.ExpiresIn) * time.Second).String())

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(grant.VerificationURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	if !cmd.Bool("wait") {
		return r.writePlainln("Run 'trackset auth complete' after approving the device.")
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(grant.ExpiresIn)*time.Second)
	defer cancel()

	r.logger.Info("waiting for device authorization", "interval", grant.Interval)
	if err := r.manager.WaitForAuthorization(waitCtx); err != nil {
		if errors.Is(err, shared.ErrTimeout) || errors.Is(err, shared.ErrTokenExpired) {
			return fmt.Errorf("device authorization expired - run 'trackset auth login' again: %w", err)
		}
		return fmt.Errorf("device authorization failed: %w", err)
	}

	return r.writePlain("✓ Authenticated\n")
}

// AuthComplete checks once whether the pending device grant was approved.
func (r *Runner) AuthComplete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireManager(); err != nil {
		return err
	}

	if err := r.manager.CompleteDeviceFlow(ctx); err != nil {
		if errors.Is(err, shared.ErrAuthPending) {
			return r.writePlain("Authorization still pending - approve the device and try again.\n")
		}
		return fmt.Errorf("device authorization failed: %w", err)
	}

	return r.writePlain("✓ Authenticated\n")
}

// AuthStatus shows the active backend and session state, optionally probing
// the live service.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireManager(); err != nil {
		return err
	}

	r.writePlain("Backend: %s\n", r.manager.ActiveBackend())
	r.writePlain("State: %s\n", r.manager.State())

	if !cmd.Bool("probe") {
		return nil
	}

	if err := r.manager.Validate(ctx); err != nil {
		r.writePlain("Probe: ✗ %v\n", err)
		return nil
	}
	return r.writePlain("Probe: ✓ session accepted\n")
}

// AuthLogout discards the persisted session bundle.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireManager(); err != nil {
		return err
	}

	if err := r.manager.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return r.writePlain("✓ Logged out\n")
}
