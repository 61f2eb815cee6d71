package updater

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/altsource-updater/internal/api/github"
	"github.com/oshokin/altsource-updater/internal/domain/source"
)

// errNoMatchingAsset is returned when no asset of the release satisfies the rule.
var errNoMatchingAsset = errors.New("no asset matches")

// releaseFetcher is the part of the GitHub client the updater depends on.
type releaseFetcher interface {
	LatestRelease(ctx context.Context, repository string) (*github.Release, error)
}

// fetchRelease returns the latest release of src narrowed to its matching asset.
func fetchRelease(ctx context.Context, api releaseFetcher, src source.Source) (source.Release, error) {
	payload, err := api.LatestRelease(ctx, src.Repository)
	if err != nil {
		return source.Release{}, err
	}

	assets := make([]source.Asset, 0, len(payload.Assets))
	for _, a := range payload.Assets {
		assets = append(assets, source.Asset{
			Name:        a.Name,
			DownloadURL: a.BrowserDownloadURL,
			Size:        a.Size,
		})
	}

	asset, ok := src.Asset.Select(assets)
	if !ok {
		return source.Release{}, fmt.Errorf("%w %q in %s", errNoMatchingAsset, src.Asset, src.Repository)
	}

	return source.Release{
		Version:     source.NormalizeVersion(payload.TagName),
		DownloadURL: asset.DownloadURL,
		Size:        asset.Size,
		Date:        payload.PublishedAt,
		Description: payload.Body,
	}, nil
}

// failureReason classifies a fetch error for the diagnostic line.
func failureReason(err error) string {
	switch {
	case errors.Is(err, errNoMatchingAsset):
		return "no_matching_asset"
	case github.IsStatusError(err):
		return "http_status"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "request_failed"
	}
}
