package assign

import (
	"fmt"
	"strings"

	"github.com/agusespa/prchunker/internal/types"
)

// Policy decides which reviewer receives each chunk.
type Policy string

const (
	// PolicyRoundRobin hands chunk i to reviewer i mod R.
	PolicyRoundRobin Policy = "round_robin"
	// PolicyBucketed hands out contiguous blocks of ceil(N/R) chunks in reviewer order.
	PolicyBucketed Policy = "bucketed"
)

func ParsePolicy(s string) (Policy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch Policy(normalized) {
	case "", PolicyRoundRobin:
		return PolicyRoundRobin, nil
	case PolicyBucketed:
		return PolicyBucketed, nil
	}
	return "", &types.ConfigError{Field: "policy", Reason: fmt.Sprintf("unknown policy %q (want round_robin or bucketed)", s)}
}

// Distribute partitions chunks among reviewers. Every reviewer gets an entry,
// in list order, and keeps the relative order of the chunks it receives.
// Each placed chunk is tagged with its reviewer.
func Distribute(chunks []types.Chunk, reviewers []string, policy Policy) (types.Assignment, error) {
	if err := ValidateReviewers(reviewers); err != nil {
		return nil, err
	}

	var pick func(i int) int
	switch policy {
	case PolicyRoundRobin, "":
		pick = func(i int) int { return i % len(reviewers) }
	case PolicyBucketed:
		size := bucketSize(len(chunks), len(reviewers))
		pick = func(i int) int { return i / size }
	default:
		return nil, &types.ConfigError{Field: "policy", Reason: fmt.Sprintf("unknown policy %q", policy)}
	}

	assignment := make(types.Assignment, len(reviewers))
	for r, reviewer := range reviewers {
		assignment[r] = types.ReviewerChunks{Reviewer: reviewer, Chunks: []types.Chunk{}}
	}

	for i, chunk := range chunks {
		r := pick(i)
		chunk.Reviewer = reviewers[r]
		assignment[r].Chunks = append(assignment[r].Chunks, chunk)
	}

	return assignment, nil
}

// ValidateReviewers rejects an empty list and blank or repeated identifiers.
func ValidateReviewers(reviewers []string) error {
	if len(reviewers) == 0 {
		return &types.ConfigError{Field: "reviewers", Reason: "at least one reviewer is required"}
	}

	seen := make(map[string]bool, len(reviewers))
	for _, reviewer := range reviewers {
		if strings.TrimSpace(reviewer) == "" {
			return &types.ConfigError{Field: "reviewers", Reason: "reviewer identifiers must not be blank"}
		}
		if seen[reviewer] {
			return &types.ConfigError{Field: "reviewers", Reason: fmt.Sprintf("duplicate reviewer %q", reviewer)}
		}
		seen[reviewer] = true
	}
	return nil
}

func bucketSize(n, r int) int {
	size := (n + r - 1) / r
	if size == 0 {
		return 1
	}
	return size
}
