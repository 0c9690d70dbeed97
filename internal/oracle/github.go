package oracle

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v27/github"
	"golang.org/x/oauth2"
	"golang.org/x/xerrors"
)

// GitHubOracle answers from the hosted GitHub API, grounded directly on
// cmd/autobuilder/autobuilder.go's client construction
// (oauth2.StaticTokenSource wrapping an access token, fed into
// github.NewClient).
type GitHubOracle struct {
	Client      *github.Client
	Owner, Repo string
}

var _ Oracle = (*GitHubOracle)(nil)

// NewGitHubOracle builds a client authenticated with token (may be empty,
// which works but is subject to GitHub's low unauthenticated rate limit).
func NewGitHubOracle(ctx context.Context, owner, repo, token string) *GitHubOracle {
	hc := http.DefaultClient
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	}
	return &GitHubOracle{
		Client: github.NewClient(hc),
		Owner:  owner,
		Repo:   repo,
	}
}

func (o *GitHubOracle) RangeFirstParent(ctx context.Context, lo, hi string) ([]Commit, error) {
	cmp, _, err := o.Client.Repositories.CompareCommits(ctx, o.Owner, o.Repo, lo, hi)
	if err != nil {
		return nil, xerrors.Errorf("oracle(github): CompareCommits(%s...%s): %w", lo, hi, err)
	}
	commits := make([]Commit, 0, len(cmp.Commits))
	for _, rc := range cmp.Commits {
		c, err := toCommit(&rc)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func toCommit(rc *github.RepositoryCommit) (Commit, error) {
	if rc.Commit == nil || rc.Commit.Author == nil || rc.Commit.Author.Date == nil {
		return Commit{}, xerrors.Errorf("oracle(github): commit %s missing author date", rc.GetSHA())
	}
	message := rc.Commit.GetMessage()
	subject, body := splitMessage(message)
	return Commit{
		SHA:        rc.GetSHA(),
		AuthorDate: *rc.Commit.Author.Date,
		Subject:    subject,
		Body:       body,
	}, nil
}

func splitMessage(message string) (subject, body string) {
	parts := strings.SplitN(message, "\n", 2)
	subject = parts[0]
	if len(parts) == 2 {
		body = parts[1]
	}
	return subject, body
}

func (o *GitHubOracle) SubjectLineOf(ctx context.Context, sha string) (string, error) {
	rc, _, err := o.Client.Repositories.GetCommit(ctx, o.Owner, o.Repo, sha)
	if err != nil {
		return "", xerrors.Errorf("oracle(github): GetCommit(%s): %w", sha, err)
	}
	subject, _ := splitMessage(rc.Commit.GetMessage())
	return subject, nil
}

// CommitForNightly lists master commits up to the end of date's UTC day
// and returns the most recent one (go-github's ListCommits is already
// newest-first).
func (o *GitHubOracle) CommitForNightly(ctx context.Context, date time.Time) (string, error) {
	opts := &github.CommitsListOptions{
		SHA:   "master",
		Until: date.AddDate(0, 0, 1),
		ListOptions: github.ListOptions{
			PerPage: 1,
		},
	}
	commits, _, err := o.Client.Repositories.ListCommits(ctx, o.Owner, o.Repo, opts)
	if err != nil {
		return "", xerrors.Errorf("oracle(github): ListCommits before %s: %w", date.Format("2006-01-02"), err)
	}
	if len(commits) == 0 {
		return "", xerrors.Errorf("oracle(github): no master commit before %s", date.Format("2006-01-02"))
	}
	return commits[0].GetSHA(), nil
}

func (o *GitHubOracle) IsOnMaster(ctx context.Context, sha string) (bool, time.Time, error) {
	rc, _, err := o.Client.Repositories.GetCommit(ctx, o.Owner, o.Repo, sha)
	if err != nil {
		return false, time.Time{}, xerrors.Errorf("oracle(github): GetCommit(%s): %w", sha, err)
	}
	if rc.Commit == nil || rc.Commit.Author == nil || rc.Commit.Author.Date == nil {
		return false, time.Time{}, xerrors.Errorf("oracle(github): commit %s missing author date", sha)
	}
	date := *rc.Commit.Author.Date

	cmp, _, err := o.Client.Repositories.CompareCommits(ctx, o.Owner, o.Repo, "master", sha)
	if err != nil {
		return false, time.Time{}, xerrors.Errorf("oracle(github): CompareCommits(master...%s): %w", sha, err)
	}
	onMaster := cmp.GetStatus() == "identical" || cmp.GetStatus() == "behind"
	return onMaster, date, nil
}
