package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/creatorlens/creatorlens/internal/app/domain"
	"github.com/creatorlens/creatorlens/internal/app/ports"
)

// Resolution layer names, in evaluation order.
const (
	LayerNestedReplies  = "nested_replies"
	LayerRepliesLookup  = "replies_endpoint"
	LayerFlatComments   = "flat_comments"
	LayerTemporalWindow = "temporal_window"
	LayerNone           = "none"
)

// ReplyResolution is the outcome of one comment's reply lookup. Text is
// empty exactly when no owner reply could be resolved.
type ReplyResolution struct {
	Text  string
	Layer string
}

// replyResolver finds the owner's reply to top-level comments on one post.
// The upstream omits or relocates owner replies depending on endpoint and
// account type, so it tries structural matches first and a bounded temporal
// heuristic last. The flat comment listing is fetched at most once per post.
type replyResolver struct {
	client      ports.ContentClient
	credential  string
	postID      string
	ownerID     string
	ownerHandle string
	window      time.Duration
	log         *slog.Logger

	flat       []domain.CommentPayload
	flatLoaded bool
	flatFailed bool
}

// seedFlat primes the flat-listing cache with comments already fetched by
// the caller, so later strategies reuse them instead of refetching.
func (r *replyResolver) seedFlat(flat []domain.CommentPayload) {
	r.flat = flat
	r.flatLoaded = true
}

type replyStrategy struct {
	name string
	fn   func(ctx context.Context, comment domain.CommentPayload) string
}

func newReplyResolver(client ports.ContentClient, credential, postID, ownerID, ownerHandle string, window time.Duration, log *slog.Logger) *replyResolver {
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &replyResolver{
		client:      client,
		credential:  credential,
		postID:      postID,
		ownerID:     ownerID,
		ownerHandle: ownerHandle,
		window:      window,
		log:         log,
	}
}

// Resolve runs the strategy chain in order and returns the first match.
// A strategy's network failure counts as a miss for that layer only.
func (r *replyResolver) Resolve(ctx context.Context, comment domain.CommentPayload) ReplyResolution {
	strategies := []replyStrategy{
		{LayerNestedReplies, r.fromNestedReplies},
		{LayerRepliesLookup, r.fromRepliesEndpoint},
		{LayerFlatComments, r.fromFlatComments},
		{LayerTemporalWindow, r.fromTemporalWindow},
	}
	for _, strategy := range strategies {
		if text := strategy.fn(ctx, comment); text != "" {
			return ReplyResolution{Text: text, Layer: strategy.name}
		}
	}
	return ReplyResolution{Layer: LayerNone}
}

func (r *replyResolver) fromNestedReplies(_ context.Context, comment domain.CommentPayload) string {
	for _, reply := range comment.Replies {
		if r.ownsReply(reply.AuthorID, reply.AuthorHandle) {
			return reply.Text
		}
	}
	return ""
}

func (r *replyResolver) fromRepliesEndpoint(ctx context.Context, comment domain.CommentPayload) string {
	replies, err := r.client.FetchCommentReplies(ctx, comment.ExternalID, r.credential)
	if err != nil {
		r.log.Warn("replies endpoint lookup failed, falling through",
			"comment_id", comment.ExternalID, "error", err)
		return ""
	}
	for _, reply := range replies {
		if r.ownsReply(reply.AuthorID, reply.AuthorHandle) {
			return reply.Text
		}
	}
	return ""
}

func (r *replyResolver) fromFlatComments(ctx context.Context, comment domain.CommentPayload) string {
	for _, entry := range r.flatComments(ctx) {
		if entry.ParentID == comment.ExternalID && r.ownsReply(entry.AuthorID, entry.AuthorHandle) {
			return entry.Text
		}
	}
	return ""
}

// fromTemporalWindow searches owner comments without structural parent
// linkage, posted strictly after the comment and inside the window. A reply
// that mentions the commenter wins over a chronologically nearer one.
func (r *replyResolver) fromTemporalWindow(ctx context.Context, comment domain.CommentPayload) string {
	if comment.Timestamp.IsZero() {
		return ""
	}
	deadline := comment.Timestamp.Add(r.window)
	mention := ""
	if comment.AuthorHandle != "" {
		mention = "@" + strings.ToLower(comment.AuthorHandle)
	}

	flat := r.flatComments(ctx)
	var nearest *domain.CommentPayload
	for i, entry := range flat {
		if !r.ownsReply(entry.AuthorID, entry.AuthorHandle) {
			continue
		}
		// A structural parent pointing elsewhere disqualifies the entry.
		if entry.ParentID != "" && entry.ParentID != comment.ExternalID {
			continue
		}
		if !entry.Timestamp.After(comment.Timestamp) || entry.Timestamp.After(deadline) {
			continue
		}
		if mention != "" && strings.Contains(strings.ToLower(entry.Text), mention) {
			return entry.Text
		}
		if nearest == nil || entry.Timestamp.Before(nearest.Timestamp) {
			nearest = &flat[i]
		}
	}
	if nearest != nil {
		return nearest.Text
	}
	return ""
}

// flatComments lazily fetches the flat post listing once; a failed fetch is
// remembered so the run does not hammer a failing endpoint per comment.
func (r *replyResolver) flatComments(ctx context.Context) []domain.CommentPayload {
	if r.flatLoaded || r.flatFailed {
		return r.flat
	}
	flat, err := r.client.FetchAllCommentsForPost(ctx, r.postID, r.credential)
	if err != nil {
		r.log.Warn("flat comment listing failed, temporal fallback disabled for post",
			"post_id", r.postID, "error", err)
		r.flatFailed = true
		return nil
	}
	r.flat = flat
	r.flatLoaded = true
	return r.flat
}

func (r *replyResolver) ownsReply(authorID, authorHandle string) bool {
	if r.ownerID != "" && authorID == r.ownerID {
		return true
	}
	return r.ownerHandle != "" && strings.EqualFold(authorHandle, r.ownerHandle)
}
