package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SuffixIPA is the rule string meaning "any asset whose name ends with .ipa".
const SuffixIPA = ".ipa"

// RuleKind tells how an AssetRule compares asset names.
type RuleKind int

const (
	// RuleSuffix accepts names ending with the rule value.
	RuleSuffix RuleKind = iota
	// RuleExact accepts only the name equal to the rule value.
	RuleExact
	// RuleGlob accepts names matching the rule value as a doublestar pattern.
	RuleGlob
)

var (
	errEmptyRule      = errors.New("asset rule must not be empty")
	errBadRepository  = errors.New("repository must look like owner/repo")
	errEmptySourceKey = errors.New("source name must not be empty")
)

// AssetRule selects one asset out of a release.
type AssetRule struct {
	// Kind is the comparison used against asset names.
	Kind RuleKind
	// Value is the suffix, exact name or pattern.
	Value string
}

// ParseAssetRule builds a rule from its string form.
// The literal ".ipa" means suffix matching, anything else an exact filename.
func ParseAssetRule(s string) (AssetRule, error) {
	if s == "" {
		return AssetRule{}, errEmptyRule
	}

	if s == SuffixIPA {
		return AssetRule{Kind: RuleSuffix, Value: s}, nil
	}

	return AssetRule{Kind: RuleExact, Value: s}, nil
}

// GlobRule builds a rule matching names against a doublestar pattern.
func GlobRule(pattern string) (AssetRule, error) {
	if pattern == "" {
		return AssetRule{}, errEmptyRule
	}

	if !doublestar.ValidatePattern(pattern) {
		return AssetRule{}, fmt.Errorf("invalid asset pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	return AssetRule{Kind: RuleGlob, Value: pattern}, nil
}

// Matches reports whether an asset name satisfies the rule.
func (r AssetRule) Matches(name string) bool {
	switch r.Kind {
	case RuleSuffix:
		return strings.HasSuffix(name, r.Value)
	case RuleExact:
		return name == r.Value
	case RuleGlob:
		ok, err := doublestar.Match(r.Value, name)
		return err == nil && ok
	default:
		return false
	}
}

// Select returns the first asset, in listed order, that satisfies the rule.
func (r AssetRule) Select(assets []Asset) (Asset, bool) {
	for _, asset := range assets {
		if r.Matches(asset.Name) {
			return asset, true
		}
	}

	return Asset{}, false
}

// String returns the rule in the form it was configured with.
func (r AssetRule) String() string {
	return r.Value
}

// Source describes one tracked application and its upstream repository.
type Source struct {
	// Name is the display name and the key of the manifest entry.
	Name string
	// Repository is the upstream "owner/repo" identifier.
	Repository string
	// Asset picks the installable file from a release.
	Asset AssetRule
}

// Validate checks that the source can be fetched.
func (s Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errEmptySourceKey
	}

	owner, repo, ok := strings.Cut(s.Repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("%s: %q: %w", s.Name, s.Repository, errBadRepository)
	}

	if s.Asset.Value == "" {
		return fmt.Errorf("%s: %w", s.Name, errEmptyRule)
	}

	return nil
}
