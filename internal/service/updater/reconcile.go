package updater

import (
	"context"

	domain "github.com/oshokin/altsource-updater/internal/domain/manifest"
	"github.com/oshokin/altsource-updater/internal/domain/source"
	"github.com/oshokin/altsource-updater/internal/logger"
)

// newVersionLabel stands in for the previous version of an entry that had none.
const newVersionLabel = "new"

// reconcile merges release into the entry named after src and reports whether it changed.
func reconcile(ctx context.Context, m *domain.Manifest, src source.Source, release source.Release) bool {
	entry, added := m.FindOrAdd(src.Name)
	if added {
		logger.Info(ctx, "App added to manifest")
	}

	if entry.IsCurrent(release.Version) {
		logger.InfoKV(ctx, "App already up to date", "version", release.Version)
		return false
	}

	previous := newVersionLabel
	if entry.HasVersion() {
		previous = entry.VersionText()
	}

	entry.Apply(release)

	logger.InfoKV(ctx, "App updated", "from", previous, "to", release.Version)

	return true
}
