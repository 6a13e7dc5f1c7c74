package main

import (
	"context"
	"fmt"

	"github.com/spotterm/spotterm/internal/auth"
	"github.com/spotterm/spotterm/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the full browser authorization flow unconditionally and
// persists the resulting credential record.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	mgr, err := r.manager()
	if err != nil {
		return err
	}

	record, err := mgr.Authorize(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n", mgr.Store().Path())
	if record.RefreshToken == "" {
		r.writePlain("⚠ Provider returned no refresh token; the next run will reauthorize.\n")
	}

	return nil
}

// AuthStatus reports on the persisted credential record without touching
// the provider.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store := auth.NewStore(r.config.Tokens.Path)

	record, err := store.Load()
	if err != nil {
		return err
	}

	if record == nil {
		r.writePlain("✗ No credential record at %s\n", store.Path())
		r.writePlain("Run: spotterm auth login\n")
		return nil
	}

	r.writePlain("✓ Credential record at %s\n", store.Path())
	r.writePlain("Token type: %s\n", record.TokenType)
	r.writePlain("Expires in: %ds (from last write)\n", record.ExpiresIn)
	if record.RefreshToken != "" {
		r.writePlain("Refresh: ✓ refresh token present\n")
	} else {
		r.writePlain("Refresh: ✗ no refresh token\n")
	}

	return nil
}
