package hosting

import (
	"fmt"
	"regexp"
	"strings"
)

// namespace prefixes every provisioned repository so order repos are
// recognizable in the seller's account.
const namespace = "devforge"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// RepoName derives the deterministic repository name for an order. Retried
// provisioning for the same order must attempt the same name.
func RepoName(gigTitle string, orderID int64) string {
	slug := strings.ToLower(gigTitle)
	slug = nonAlnum.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "gig"
	}
	return fmt.Sprintf("%s-%s-%d", namespace, slug, orderID)
}

// ParseRepoURL splits a canonical repository URL into its owner and name path
// segments. ok is false on malformed input; callers skip commit fetching then.
func ParseRepoURL(url string) (owner, name string, ok bool) {
	trimmed := strings.TrimSuffix(url, "/")
	trimmed = strings.TrimPrefix(trimmed, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")

	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
