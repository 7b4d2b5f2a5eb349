package domain

import "time"

// Profile is the owner identity resolved from the content API.
type Profile struct {
	ExternalAccountID string
	Handle            string
	Bio               string
}

// PostPayload is one published post as returned by the content API,
// possibly carrying nested comment data up to the server-side depth limit.
type PostPayload struct {
	ExternalID   string
	Caption      string
	MediaType    string
	MediaURL     string
	ThumbnailURL string
	PostedAt     time.Time
	Comments     []CommentPayload
}

// CommentPayload is one comment. On flat post-comment listings ParentID is
// set when the entry is a reply to another comment; on nested listings the
// reply sub-list is populated instead.
type CommentPayload struct {
	ExternalID   string
	ParentID     string
	Text         string
	AuthorID     string
	AuthorHandle string
	AuthorName   string
	LikeCount    int
	Timestamp    time.Time
	Replies      []ReplyPayload
}

// ReplyPayload is one entry from a comment-scoped replies listing.
type ReplyPayload struct {
	ExternalID   string
	Text         string
	AuthorID     string
	AuthorHandle string
	Timestamp    time.Time
}

// ResolvedComment is a top-level comment after owner-reply resolution and
// scoring, positioned by its post and fetch order for stable selection.
type ResolvedComment struct {
	Comment        CommentPayload
	PostExternalID string
	PostIndex      int
	FetchIndex     int
	OwnerReply     string
	ReplyLayer     string
	Score          int
}

// HasOwnerReply reports whether resolution found a reply authored by the owner.
func (c ResolvedComment) HasOwnerReply() bool {
	return c.OwnerReply != ""
}

// SyncResult summarizes a completed run.
type SyncResult struct {
	PostCount        int `json:"postCount"`
	InteractionCount int `json:"interactionCount"`
	FailureCount     int `json:"failureCount"`
}

// Sync run statuses.
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusError     = "error"
)

// SyncProgress is the ephemeral per-account run state read by pollers.
type SyncProgress struct {
	Stage   string      `json:"stage"`
	Percent int         `json:"percent"`
	Status  string      `json:"status"`
	Error   string      `json:"error,omitempty"`
	Result  *SyncResult `json:"result,omitempty"`
}

// SyncFailure records one skipped resource during a run.
type SyncFailure struct {
	ResourceID string
	Kind       string
}

// Failure kinds aggregated into the run result.
const (
	FailureKindPostPersist     = "post_persist"
	FailureKindCommentFetch    = "comment_fetch"
	FailureKindInteractionSave = "interaction_save"
)
