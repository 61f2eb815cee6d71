// Package updater synchronizes the apps.json manifest with upstream releases.
//
// For every configured source it fetches the latest GitHub release, picks the
// matching asset and reconciles the manifest entry. The manifest is written
// once at the end, and only when an entry actually changed.
package updater
