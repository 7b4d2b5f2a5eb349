package services

import (
	"sort"

	"github.com/creatorlens/creatorlens/internal/app/domain"
)

// SelectWithinBudget picks at most total comments across all posts. Each post
// first contributes up to perPostMin of its highest-scored comments, so no
// post with comments is starved; the remaining capacity fills by global score
// order. Ties break by original fetch order, making selection stable and
// deterministic.
func SelectWithinBudget(comments []domain.ResolvedComment, total, perPostMin int) []domain.ResolvedComment {
	if total <= 0 || len(comments) == 0 {
		return nil
	}

	ranked := make([]int, len(comments))
	for i := range ranked {
		ranked[i] = i
	}
	sortByScore(ranked, comments)

	selected := make(map[int]struct{}, total)

	// Guaranteed per-post share, posts visited in fetch order.
	if perPostMin > 0 {
		byPost := groupByPost(comments)
		for _, indices := range byPost {
			sortByScore(indices, comments)
			take := perPostMin
			if take > len(indices) {
				take = len(indices)
			}
			for _, idx := range indices[:take] {
				if len(selected) >= total {
					break
				}
				selected[idx] = struct{}{}
			}
			if len(selected) >= total {
				break
			}
		}
	}

	// Fill remaining capacity by global score order.
	for _, idx := range ranked {
		if len(selected) >= total {
			break
		}
		selected[idx] = struct{}{}
	}

	out := make([]domain.ResolvedComment, 0, len(selected))
	for _, idx := range ranked {
		if _, ok := selected[idx]; ok {
			out = append(out, comments[idx])
		}
	}
	return out
}

// groupByPost buckets comment indices per post, posts in first-seen order.
func groupByPost(comments []domain.ResolvedComment) [][]int {
	order := make(map[string]int)
	var groups [][]int
	for i, comment := range comments {
		pos, ok := order[comment.PostExternalID]
		if !ok {
			pos = len(groups)
			order[comment.PostExternalID] = pos
			groups = append(groups, nil)
		}
		groups[pos] = append(groups[pos], i)
	}
	return groups
}

// sortByScore orders indices by descending score, breaking ties by post
// fetch position then comment fetch position.
func sortByScore(indices []int, comments []domain.ResolvedComment) {
	sort.SliceStable(indices, func(i, j int) bool {
		a, b := comments[indices[i]], comments[indices[j]]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.PostIndex != b.PostIndex {
			return a.PostIndex < b.PostIndex
		}
		return a.FetchIndex < b.FetchIndex
	})
}
