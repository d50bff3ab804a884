package domain

import "time"

// Commit is a normalized entry from a repository's commit log. Commits are
// fetched fresh on every details view and never persisted.
type Commit struct {
	SHA             string
	Message         string
	AuthorName      string
	AuthoredAt      time.Time
	HTMLURL         string
	AuthorAvatarURL string
}
