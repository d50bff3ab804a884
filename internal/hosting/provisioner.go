package hosting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
)

// ProvisionInput carries the order context used for naming and README
// seeding.
type ProvisionInput struct {
	OrderID      int64
	GigTitle     string
	Category     string
	Description  string
	DeliveryDays int
	Features     []string
	BuyerName    string
}

// Result reports a usable repository. Warning is set when the repository
// exists but a best-effort step (README seeding) did not complete.
type Result struct {
	Name    string
	URL     string
	Warning string
}

// Service provisions per-order repositories and reads commit history on a
// code-hosting provider.
type Service struct {
	newClient func(token string) *github.Client
	initDelay time.Duration
	logger    *log.Logger
}

// NewService returns a provisioner that talks to github.com with the given
// per-seller tokens.
func NewService(logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		newClient: func(token string) *github.Client {
			return github.NewClient(nil).WithAuthToken(token)
		},
		// Auto-init needs a moment before the default branch and README exist.
		initDelay: 2 * time.Second,
		logger:    logger,
	}
}

// Provision creates the order's repository. A name conflict is not a failure:
// the existing repository is fetched under the authenticated account and its
// real URL returned. An error is returned only when no usable URL could be
// obtained.
func (s *Service) Provision(ctx context.Context, token string, in ProvisionInput) (Result, error) {
	client := s.newClient(token)
	name := RepoName(in.GigTitle, in.OrderID)

	repo, _, err := client.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.Ptr(name),
		Description: github.Ptr(fmt.Sprintf("DevForge order #%d", in.OrderID)),
		Private:     github.Ptr(true),
		HasIssues:   github.Ptr(true),
		HasWiki:     github.Ptr(true),
		HasProjects: github.Ptr(true),
		AutoInit:    github.Ptr(true),
	})
	if err != nil {
		if !isNameConflict(err) {
			return Result{}, fmt.Errorf("create repository %s: %w", name, err)
		}
		existing, err := s.lookupExisting(ctx, client, name)
		if err != nil {
			return Result{}, err
		}
		return Result{Name: name, URL: existing}, nil
	}

	result := Result{Name: name, URL: repo.GetHTMLURL()}
	if err := s.seedReadme(ctx, client, repo.GetOwner().GetLogin(), name, in); err != nil {
		s.logger.Printf("readme seeding skipped for %s: %v", name, err)
		result.Warning = fmt.Sprintf("readme seeding failed: %v", err)
	}
	return result, nil
}

// lookupExisting resolves a name conflict by fetching the repository that
// already holds the name under the authenticated account. The URL comes from
// the provider, never from string concatenation.
func (s *Service) lookupExisting(ctx context.Context, client *github.Client, name string) (string, error) {
	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("resolve account for existing repository %s: %w", name, err)
	}
	repo, _, err := client.Repositories.Get(ctx, user.GetLogin(), name)
	if err != nil {
		return "", fmt.Errorf("fetch existing repository %s/%s: %w", user.GetLogin(), name, err)
	}
	return repo.GetHTMLURL(), nil
}

// seedReadme overwrites the auto-initialized README with the order brief.
func (s *Service) seedReadme(ctx context.Context, client *github.Client, owner, name string, in ProvisionInput) error {
	if owner == "" {
		user, _, err := client.Users.Get(ctx, "")
		if err != nil {
			return fmt.Errorf("resolve owner: %w", err)
		}
		owner = user.GetLogin()
	}

	if s.initDelay > 0 {
		select {
		case <-time.After(s.initDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	current, _, _, err := client.Repositories.GetContents(ctx, owner, name, "README.md", nil)
	if err != nil {
		return fmt.Errorf("fetch current readme: %w", err)
	}

	_, _, err = client.Repositories.UpdateFile(ctx, owner, name, "README.md", &github.RepositoryContentFileOptions{
		Message: github.Ptr("Add order brief"),
		Content: []byte(readmeContent(in)),
		SHA:     github.Ptr(current.GetSHA()),
	})
	if err != nil {
		return fmt.Errorf("write readme: %w", err)
	}
	return nil
}

func readmeContent(in ProvisionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", in.GigTitle)
	fmt.Fprintf(&b, "Source repository for DevForge order #%d.\n\n", in.OrderID)
	if in.Category != "" {
		fmt.Fprintf(&b, "- Category: %s\n", in.Category)
	}
	if in.DeliveryDays > 0 {
		fmt.Fprintf(&b, "- Delivery time: %d days\n", in.DeliveryDays)
	}
	if in.BuyerName != "" {
		fmt.Fprintf(&b, "- Client: %s\n", in.BuyerName)
	}
	if in.Description != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", in.Description)
	}
	if len(in.Features) > 0 {
		b.WriteString("\n## Features\n\n")
		for _, f := range in.Features {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

func isNameConflict(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) {
		return false
	}
	if ghErr.Response == nil || ghErr.Response.StatusCode != 422 {
		return false
	}
	for _, e := range ghErr.Errors {
		if strings.Contains(e.Message, "already exists") {
			return true
		}
	}
	return false
}
