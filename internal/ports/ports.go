package ports

import (
	"context"

	"github.com/ebaad11/drp-jl-cut-api/internal/types"
)

// Archive unpacks a project archive into a work directory and repacks a
// work directory into a new archive next to the original.
type Archive interface {
	Unpack(ctx context.Context, archivePath, destDir string) error
	Repack(ctx context.Context, srcDir, archivePath string) error
}

// TimelineStore locates timeline documents inside an unpacked project and
// converts between them and the in-memory model. Save writes back only what
// the transform changed and must preserve everything else in the document.
type TimelineStore interface {
	FindSequences(ctx context.Context, dir string) ([]string, error)
	Load(ctx context.Context, path string) (*types.Timeline, error)
	Save(ctx context.Context, path string, tl *types.Timeline) error
}
