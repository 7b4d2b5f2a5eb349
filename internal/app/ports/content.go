package ports

import (
	"context"

	"github.com/creatorlens/creatorlens/internal/app/domain"
)

// ContentClient is the upstream content API surface the engine depends on.
// Implementations own retry and rate-limit handling; all methods are safe to
// call concurrently for different resources.
type ContentClient interface {
	FetchProfile(ctx context.Context, credential string) (domain.Profile, error)
	FetchPosts(ctx context.Context, credential string, limit int) ([]domain.PostPayload, error)
	// FetchCommentReplies may legitimately return an empty list even when
	// replies exist upstream; callers fall back to the flat post listing.
	FetchCommentReplies(ctx context.Context, commentID, credential string) ([]domain.ReplyPayload, error)
	FetchAllCommentsForPost(ctx context.Context, postID, credential string) ([]domain.CommentPayload, error)
}
