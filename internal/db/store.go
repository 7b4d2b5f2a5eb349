package db

import (
	"context"
	"database/sql"
	"time"
)

// Queries is the hand-written query set. Every statement carries a
// "-- name:" header line consumed by the latency tracker and DB spans.
type Queries struct {
	db DBTX
}

// Account is the persisted account row.
type Account struct {
	ID                int64
	ExternalAccountID string
	Handle            string
	Bio               string
}

// Post is the persisted post row.
type Post struct {
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

// Interaction is the persisted interaction row. OwnerReply and
// ParentCommentID are nullable.
type Interaction struct {
	ID                int64
	AccountID         int64
	PostID            int64
	ExternalCommentID string
	ParentCommentID   sql.NullString
	SenderName        string
	SenderHandle      string
	Message           string
	OwnerReply        sql.NullString
	HasOwnerReply     bool
	RelevanceScore    int64
	CommentedAt       time.Time
}

const upsertAccount = `-- name: UpsertAccount :one
INSERT INTO accounts (external_account_id, handle, bio, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (external_account_id) DO UPDATE SET
    handle = excluded.handle,
    bio = excluded.bio,
    updated_at = CURRENT_TIMESTAMP
RETURNING id`

// UpsertAccount inserts or refreshes the account row, returning its id.
func (q *Queries) UpsertAccount(ctx context.Context, externalAccountID, handle, bio string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, upsertAccount, externalAccountID, handle, bio).Scan(&id)
	return id, err
}

const getAccountByExternalID = `-- name: GetAccountByExternalID :one
SELECT id, external_account_id, handle, bio
FROM accounts
WHERE external_account_id = ?`

// GetAccountByExternalID fetches an account by its upstream identifier.
func (q *Queries) GetAccountByExternalID(ctx context.Context, externalAccountID string) (Account, error) {
	var account Account
	err := q.db.QueryRowContext(ctx, getAccountByExternalID, externalAccountID).
		Scan(&account.ID, &account.ExternalAccountID, &account.Handle, &account.Bio)
	return account, err
}

const upsertPost = `-- name: UpsertPost :one
INSERT INTO posts (account_id, external_post_id, caption, annotations, media_type, media_url, thumbnail_url, posted_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (account_id, external_post_id) DO UPDATE SET
    caption = excluded.caption,
    annotations = excluded.annotations,
    media_type = excluded.media_type,
    media_url = excluded.media_url,
    thumbnail_url = excluded.thumbnail_url,
    posted_at = excluded.posted_at,
    updated_at = CURRENT_TIMESTAMP
RETURNING id`

// UpsertPost inserts or refreshes a post row, returning its id.
func (q *Queries) UpsertPost(ctx context.Context, post Post) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, upsertPost,
		post.AccountID, post.ExternalPostID, post.Caption, post.Annotations,
		post.MediaType, post.MediaURL, post.ThumbnailURL, post.PostedAt,
	).Scan(&id)
	return id, err
}

const upsertInteraction = `-- name: UpsertInteraction :exec
INSERT INTO interactions (account_id, post_id, external_comment_id, parent_comment_id, sender_name, sender_handle, message, owner_reply, has_owner_reply, relevance_score, commented_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (account_id, external_comment_id) DO UPDATE SET
    post_id = excluded.post_id,
    parent_comment_id = excluded.parent_comment_id,
    sender_name = excluded.sender_name,
    sender_handle = excluded.sender_handle,
    message = excluded.message,
    owner_reply = excluded.owner_reply,
    has_owner_reply = excluded.has_owner_reply,
    relevance_score = excluded.relevance_score,
    commented_at = excluded.commented_at,
    updated_at = CURRENT_TIMESTAMP`

// UpsertInteraction inserts or refreshes one interaction row.
func (q *Queries) UpsertInteraction(ctx context.Context, interaction Interaction) error {
	_, err := q.db.ExecContext(ctx, upsertInteraction,
		interaction.AccountID, interaction.PostID, interaction.ExternalCommentID,
		interaction.ParentCommentID, interaction.SenderName, interaction.SenderHandle,
		interaction.Message, interaction.OwnerReply, interaction.HasOwnerReply,
		interaction.RelevanceScore, interaction.CommentedAt,
	)
	return err
}

const deleteAccountInteractions = `-- name: DeleteAccountInteractions :exec
DELETE FROM interactions WHERE account_id = ?`

// DeleteAccountInteractions removes the account's interaction rows.
func (q *Queries) DeleteAccountInteractions(ctx context.Context, accountID int64) error {
	_, err := q.db.ExecContext(ctx, deleteAccountInteractions, accountID)
	return err
}

const deleteAccountPosts = `-- name: DeleteAccountPosts :exec
DELETE FROM posts WHERE account_id = ?`

// DeleteAccountPosts removes the account's post rows.
func (q *Queries) DeleteAccountPosts(ctx context.Context, accountID int64) error {
	_, err := q.db.ExecContext(ctx, deleteAccountPosts, accountID)
	return err
}

const listPosts = `-- name: ListPosts :many
SELECT id, account_id, external_post_id, caption, annotations, media_type, media_url, thumbnail_url, posted_at
FROM posts
WHERE account_id = ?
ORDER BY posted_at DESC, id DESC
LIMIT ? OFFSET ?`

// ListPosts returns the account's posts, newest first.
func (q *Queries) ListPosts(ctx context.Context, accountID int64, limit, offset int) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, listPosts, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		if err := rows.Scan(
			&post.ID, &post.AccountID, &post.ExternalPostID, &post.Caption,
			&post.Annotations, &post.MediaType, &post.MediaURL, &post.ThumbnailURL,
			&post.PostedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

const listInteractions = `-- name: ListInteractions :many
SELECT id, account_id, post_id, external_comment_id, parent_comment_id, sender_name, sender_handle, message, owner_reply, has_owner_reply, relevance_score, commented_at
FROM interactions
WHERE account_id = ?
ORDER BY relevance_score DESC, commented_at DESC, id DESC
LIMIT ? OFFSET ?`

// ListInteractions returns the account's interactions, most relevant first.
func (q *Queries) ListInteractions(ctx context.Context, accountID int64, limit, offset int) ([]Interaction, error) {
	rows, err := q.db.QueryContext(ctx, listInteractions, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		var interaction Interaction
		if err := rows.Scan(
			&interaction.ID, &interaction.AccountID, &interaction.PostID,
			&interaction.ExternalCommentID, &interaction.ParentCommentID,
			&interaction.SenderName, &interaction.SenderHandle, &interaction.Message,
			&interaction.OwnerReply, &interaction.HasOwnerReply,
			&interaction.RelevanceScore, &interaction.CommentedAt,
		); err != nil {
			return nil, err
		}
		interactions = append(interactions, interaction)
	}
	return interactions, rows.Err()
}
