// Package source contains the domain types describing where releases come from.
//
// A Source names an upstream repository and the AssetRule that picks the
// installable asset out of its latest release. A Release is the normalized
// result of such a lookup.
package source
