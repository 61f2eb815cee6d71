// Package github is a minimal client for the GitHub releases REST API.
//
// It only knows how to fetch the latest release of a repository; callers pick
// the asset they need from the returned payload.
package github
