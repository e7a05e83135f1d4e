package commands

import (
	"context"

	"github.com/de-tools/tco-atlas/pkg/runtime/app"
)

// Loader builds the application for one command invocation.
type Loader func(ctx context.Context, opts app.Options) (*app.App, error)
