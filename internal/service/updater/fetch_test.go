package updater

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/altsource-updater/internal/api/github"
	"github.com/oshokin/altsource-updater/internal/domain/source"
)

// fakeFetcher serves canned releases keyed by repository.
type fakeFetcher struct {
	releases map[string]*github.Release
	errs     map[string]error
	calls    []string
}

func (f *fakeFetcher) LatestRelease(_ context.Context, repository string) (*github.Release, error) {
	f.calls = append(f.calls, repository)

	if err, ok := f.errs[repository]; ok {
		return nil, err
	}

	release, ok := f.releases[repository]
	if !ok {
		return nil, fmt.Errorf("%s: %w", repository, errors.New("connection refused"))
	}

	return release, nil
}

func mustSource(t *testing.T, name, repo, rule string) source.Source {
	t.Helper()

	assetRule, err := source.ParseAssetRule(rule)
	require.NoError(t, err)

	return source.Source{Name: name, Repository: repo, Asset: assetRule}
}

// TestFetchRelease_SelectsAssetAndNormalizes checks version normalization and first-match selection.
func TestFetchRelease_SelectsAssetAndNormalizes(t *testing.T) {
	t.Parallel()

	api := &fakeFetcher{
		releases: map[string]*github.Release{
			"o/app": {
				TagName:     "v2.3.1",
				PublishedAt: "2025-02-03T04:05:06Z",
				Body:        "Notes",
				Assets: []github.Asset{
					{Name: "Foo.txt", BrowserDownloadURL: "https://x/Foo.txt", Size: 1},
					{Name: "App.ipa", BrowserDownloadURL: "https://x/App.ipa", Size: 2},
					{Name: "Later.ipa", BrowserDownloadURL: "https://x/Later.ipa", Size: 3},
				},
			},
		},
	}

	release, err := fetchRelease(context.Background(), api, mustSource(t, "App", "o/app", ".ipa"))
	require.NoError(t, err)
	require.Equal(t, source.Release{
		Version:     "2.3.1",
		DownloadURL: "https://x/App.ipa",
		Size:        2,
		Date:        "2025-02-03T04:05:06Z",
		Description: "Notes",
	}, release)
}

// TestFetchRelease_ExactRule ensures an exact rule ignores other IPA files.
func TestFetchRelease_ExactRule(t *testing.T) {
	t.Parallel()

	api := &fakeFetcher{
		releases: map[string]*github.Release{
			"o/discord": {
				TagName: "2.3.1",
				Assets: []github.Asset{
					{Name: "App.ipa", BrowserDownloadURL: "https://x/App.ipa"},
					{Name: "discord.ipa", BrowserDownloadURL: "https://x/discord.ipa", Size: 5},
				},
			},
		},
	}

	release, err := fetchRelease(context.Background(), api, mustSource(t, "Discord", "o/discord", "discord.ipa"))
	require.NoError(t, err)
	require.Equal(t, "2.3.1", release.Version)
	require.Equal(t, "https://x/discord.ipa", release.DownloadURL)
	require.Empty(t, release.Description)
}

// TestFetchRelease_Failures covers the absence cases and their classification.
func TestFetchRelease_Failures(t *testing.T) {
	t.Parallel()

	api := &fakeFetcher{
		releases: map[string]*github.Release{
			"o/noipa": {TagName: "v1", Assets: []github.Asset{{Name: "app.zip"}}},
		},
		errs: map[string]error{
			"o/slow": fmt.Errorf("get latest release: %w", context.DeadlineExceeded),
		},
	}

	_, err := fetchRelease(context.Background(), api, mustSource(t, "NoIPA", "o/noipa", ".ipa"))
	require.ErrorIs(t, err, errNoMatchingAsset)
	require.Equal(t, "no_matching_asset", failureReason(err))
	require.Contains(t, err.Error(), `".ipa"`)

	_, err = fetchRelease(context.Background(), api, mustSource(t, "Slow", "o/slow", ".ipa"))
	require.Equal(t, "timeout", failureReason(err))

	_, err = fetchRelease(context.Background(), api, mustSource(t, "Down", "o/down", ".ipa"))
	require.Equal(t, "request_failed", failureReason(err))

	require.Equal(t, "canceled", failureReason(context.Canceled))
}
