package services

import (
	"fmt"
	"testing"

	"github.com/creatorlens/creatorlens/internal/app/domain"
)

func resolved(postID string, postIndex, fetchIndex, score int) domain.ResolvedComment {
	return domain.ResolvedComment{
		Comment:        domain.CommentPayload{ExternalID: fmt.Sprintf("%s-c%d", postID, fetchIndex)},
		PostExternalID: postID,
		PostIndex:      postIndex,
		FetchIndex:     fetchIndex,
		Score:          score,
	}
}

func ids(comments []domain.ResolvedComment) []string {
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.Comment.ExternalID
	}
	return out
}

func TestSelectWithinBudgetGlobalCap(t *testing.T) {
	t.Parallel()
	var input []domain.ResolvedComment
	for i := 0; i < 10; i++ {
		input = append(input, resolved("p1", 0, i, 100-i))
	}

	got := SelectWithinBudget(input, 4, 0)
	if len(got) != 4 {
		t.Fatalf("selected %d comments, want 4", len(got))
	}
	for i, c := range got {
		if c.FetchIndex != i {
			t.Errorf("position %d holds fetch index %d, want highest scores first", i, c.FetchIndex)
		}
	}
}

func TestSelectWithinBudgetPerPostGuarantee(t *testing.T) {
	t.Parallel()
	input := []domain.ResolvedComment{
		resolved("p1", 0, 0, 90),
		resolved("p1", 0, 1, 80),
		resolved("p1", 0, 2, 70),
		resolved("p1", 0, 3, 60),
		resolved("p2", 1, 0, 5),
		resolved("p2", 1, 1, 3),
	}

	got := SelectWithinBudget(input, 4, 1)
	var fromP2 int
	for _, c := range got {
		if c.PostExternalID == "p2" {
			fromP2++
			if c.FetchIndex != 0 {
				t.Errorf("p2 contributed fetch index %d, want its best comment", c.FetchIndex)
			}
		}
	}
	if fromP2 != 1 {
		t.Fatalf("p2 contributed %d comments, want exactly its guaranteed 1", fromP2)
	}
	if len(got) != 4 {
		t.Fatalf("selected %d comments, want 4", len(got))
	}
}

func TestSelectWithinBudgetMinNotPadded(t *testing.T) {
	t.Parallel()
	input := []domain.ResolvedComment{
		resolved("p1", 0, 0, 50),
		resolved("p2", 1, 0, 40),
		resolved("p2", 1, 1, 30),
	}

	// p1 has a single comment; a guarantee of 3 must not invent entries.
	got := SelectWithinBudget(input, 10, 3)
	if len(got) != 3 {
		t.Fatalf("selected %d comments, want all 3 available", len(got))
	}
}

func TestSelectWithinBudgetStableTies(t *testing.T) {
	t.Parallel()
	input := []domain.ResolvedComment{
		resolved("p2", 1, 0, 10),
		resolved("p1", 0, 1, 10),
		resolved("p1", 0, 0, 10),
	}

	got := SelectWithinBudget(input, 2, 0)
	want := []string{"p1-c0", "p1-c1"}
	gotIDs := ids(got)
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("tie order = %v, want %v", gotIDs, want)
		}
	}
}

func TestSelectWithinBudgetEdgeCases(t *testing.T) {
	t.Parallel()
	if got := SelectWithinBudget(nil, 10, 2); got != nil {
		t.Fatalf("empty input selected %v, want nil", got)
	}
	input := []domain.ResolvedComment{resolved("p1", 0, 0, 1)}
	if got := SelectWithinBudget(input, 0, 0); got != nil {
		t.Fatalf("zero budget selected %v, want nil", got)
	}
	if got := SelectWithinBudget(input, 5, 0); len(got) != 1 {
		t.Fatalf("under-capacity input selected %d, want 1", len(got))
	}
}
