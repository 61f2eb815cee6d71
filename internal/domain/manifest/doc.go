// Package manifest models the AltStore-style apps.json document.
//
// The document is mostly owned by other tools, so every key this package does
// not understand is carried through untouched and in its original position.
// Only the release fields of an Entry are ever rewritten.
package manifest
