// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// github.go - GitHub REST actions via the go-github client. GitHub errors
// are mapped onto the shared API error type so the server layer reports
// them the same way as Graph failures.

package actions

import (
	"context"
	"errors"

	"github.com/google/go-github/v80/github"

	"github.com/garridom/m365-gateway/internal/envelope"
	"github.com/garridom/m365-gateway/internal/msapi"
)

// errGitHubUnconfigured reports a GitHub action invoked without a token.
var errGitHubUnconfigured = errors.New("github client not configured; set GITHUB_TOKEN")

func registerGitHubActions(r *Registry) {
	r.Register("github_get_repo", githubGetRepo)
	r.Register("github_list_issues", githubListIssues)
	r.Register("github_create_issue", githubCreateIssue)
	r.Register("github_list_workflow_runs", githubListWorkflowRuns)
}

// mapGitHubError converts a go-github error response into an APIError so
// the downstream status code survives into the envelope.
func mapGitHubError(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &msapi.APIError{
			StatusCode: ghErr.Response.StatusCode,
			Code:       "GitHubError",
			Message:    ghErr.Message,
		}
	}
	return err
}

func (inv *Invocation) githubRepo() (owner, repo string, err error) {
	owner, err = inv.Params.RequiredString("owner")
	if err != nil {
		return "", "", err
	}
	repo, err = inv.Params.RequiredString("repo")
	if err != nil {
		return "", "", err
	}
	return owner, repo, nil
}

func githubGetRepo(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	if inv.Clients.GitHub == nil {
		return nil, errGitHubUnconfigured
	}
	owner, repo, err := inv.githubRepo()
	if err != nil {
		return nil, err
	}

	repository, _, err := inv.Clients.GitHub.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, mapGitHubError(err)
	}
	return envelope.Success(repository), nil
}

func githubListIssues(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	if inv.Clients.GitHub == nil {
		return nil, errGitHubUnconfigured
	}
	owner, repo, err := inv.githubRepo()
	if err != nil {
		return nil, err
	}

	opts := &github.IssueListByRepoOptions{
		State: inv.Params.StringOr("state", "open"),
		ListOptions: github.ListOptions{
			PerPage: inv.Params.IntOr("per_page", inv.Config.DefaultPageSize),
		},
	}
	if labels := inv.Params.StringSlice("labels"); len(labels) > 0 {
		opts.Labels = labels
	}

	maxPages := inv.Params.IntOr("max_pages", inv.Config.MaxPages)
	var issues []*github.Issue
	pages := 0
	truncated := false
	for {
		page, resp, err := inv.Clients.GitHub.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, mapGitHubError(err)
		}
		issues = append(issues, page...)
		pages++
		if resp.NextPage == 0 {
			break
		}
		if pages >= maxPages {
			truncated = true
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return envelope.Paged(issues, len(issues), pages, truncated), nil
}

func githubCreateIssue(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	if inv.Clients.GitHub == nil {
		return nil, errGitHubUnconfigured
	}
	owner, repo, err := inv.githubRepo()
	if err != nil {
		return nil, err
	}
	title, err := inv.Params.RequiredString("title")
	if err != nil {
		return nil, err
	}

	req := &github.IssueRequest{Title: github.Ptr(title)}
	if body := inv.Params.StringOr("body", ""); body != "" {
		req.Body = github.Ptr(body)
	}
	if labels := inv.Params.StringSlice("labels"); len(labels) > 0 {
		req.Labels = &labels
	}

	issue, _, err := inv.Clients.GitHub.Issues.Create(ctx, owner, repo, req)
	if err != nil {
		return nil, mapGitHubError(err)
	}
	return envelope.SuccessStatus("success_issue_created", issue), nil
}

func githubListWorkflowRuns(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	if inv.Clients.GitHub == nil {
		return nil, errGitHubUnconfigured
	}
	owner, repo, err := inv.githubRepo()
	if err != nil {
		return nil, err
	}

	opts := &github.ListWorkflowRunsOptions{
		Status: inv.Params.StringOr("status", ""),
		Branch: inv.Params.StringOr("branch", ""),
		ListOptions: github.ListOptions{
			PerPage: inv.Params.IntOr("per_page", inv.Config.DefaultPageSize),
		},
	}

	runs, _, err := inv.Clients.GitHub.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
	if err != nil {
		return nil, mapGitHubError(err)
	}
	return envelope.Paged(runs.WorkflowRuns, len(runs.WorkflowRuns), 1, false), nil
}
