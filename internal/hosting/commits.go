package hosting

import (
	"context"
	"fmt"

	"github.com/cfblade77/Devforge-sub000/internal/domain"
	"github.com/google/go-github/v68/github"
)

const commitPageSize = 30

// ReadHistory fetches the first page of the repository's commit log and
// normalizes it. Commit history is decoration: callers must treat a returned
// error as "omit the commits", never as a failure of their own operation.
func (s *Service) ReadHistory(ctx context.Context, token, owner, repo string) ([]domain.Commit, error) {
	client := s.newClient(token)

	raw, _, err := client.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: commitPageSize},
	})
	if err != nil {
		return nil, fmt.Errorf("list commits %s/%s: %w", owner, repo, err)
	}

	commits := make([]domain.Commit, 0, len(raw))
	for _, rc := range raw {
		commits = append(commits, domain.Commit{
			SHA:             rc.GetSHA(),
			Message:         rc.GetCommit().GetMessage(),
			AuthorName:      rc.GetCommit().GetAuthor().GetName(),
			AuthoredAt:      rc.GetCommit().GetAuthor().GetDate().Time,
			HTMLURL:         rc.GetHTMLURL(),
			AuthorAvatarURL: rc.GetAuthor().GetAvatarURL(),
		})
	}
	return commits, nil
}
