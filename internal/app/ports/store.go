package ports

import (
	"context"
	"time"
)

// SyncStore is the reconciliation persistence contract. All writes are
// idempotent upserts keyed on account-scoped external identifiers; a post's
// interactions are always written after the post row they reference.
type SyncStore interface {
	UpsertAccount(ctx context.Context, account AccountRecord) (int64, error)
	UpsertPost(ctx context.Context, post PostRecord) (int64, error)
	// UpsertInteractions writes one post's interactions in a single
	// transaction scope.
	UpsertInteractions(ctx context.Context, interactions []InteractionRecord) error
	ResetAccount(ctx context.Context, accountID int64) error
}

// ContentReadStore serves the persisted rows to downstream consumers.
type ContentReadStore interface {
	GetAccountByExternalID(ctx context.Context, externalAccountID string) (AccountRecord, error)
	ListPosts(ctx context.Context, accountID int64, limit, offset int) ([]PostRecord, error)
	ListInteractions(ctx context.Context, accountID int64, limit, offset int) ([]InteractionRecord, error)
}

// AccountRecord is the persisted account row.
type AccountRecord struct {
	ID                int64
	ExternalAccountID string
	Handle            string
	Bio               string
}

// PostRecord is the persisted post row.
type PostRecord struct {
	ID             int64
	AccountID      int64
	ExternalPostID string
	Caption        string
	Annotations    string
	MediaType      string
	MediaURL       string
	ThumbnailURL   string
	PostedAt       time.Time
}

// InteractionRecord is the persisted interaction row. OwnerReply is nil
// exactly when no owner reply was resolved.
type InteractionRecord struct {
	ID                int64
	AccountID         int64
	PostID            int64
	ExternalCommentID string
	ParentCommentID   *string
	SenderName        string
	SenderHandle      string
	Message           string
	OwnerReply        *string
	HasOwnerReply     bool
	RelevanceScore    int
	CommentedAt       time.Time
}
