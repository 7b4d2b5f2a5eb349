package sqlite

import (
	"context"
	"database/sql"

	"github.com/creatorlens/creatorlens/internal/app/ports"
	"github.com/creatorlens/creatorlens/internal/db"
)

type syncDatabase interface {
	UpsertAccount(ctx context.Context, externalAccountID, handle, bio string) (int64, error)
	GetAccountByExternalID(ctx context.Context, externalAccountID string) (db.Account, error)
	UpsertPost(ctx context.Context, post db.Post) (int64, error)
	ListPosts(ctx context.Context, accountID int64, limit, offset int) ([]db.Post, error)
	ListInteractions(ctx context.Context, accountID int64, limit, offset int) ([]db.Interaction, error)
	WithTx(ctx context.Context, fn func(*db.Queries) error) error
}

// SyncStore is the sqlite-backed reconciliation store.
type SyncStore struct {
	db      syncDatabase
	closeFn func() error
}

// NewSyncStore wraps a shared database handle. The handle's lifecycle stays
// with the caller.
func NewSyncStore(database *db.Database) *SyncStore {
	return &SyncStore{db: database}
}

// OpenSyncStore opens an owned database handle at the given path.
func OpenSyncStore(dbPath string) (*SyncStore, error) {
	database, err := db.New(dbPath)
	if err != nil {
		return nil, err
	}
	return &SyncStore{db: database, closeFn: database.Close}, nil
}

func (s *SyncStore) UpsertAccount(ctx context.Context, account ports.AccountRecord) (int64, error) {
	return s.db.UpsertAccount(ctx, account.ExternalAccountID, account.Handle, account.Bio)
}

func (s *SyncStore) UpsertPost(ctx context.Context, post ports.PostRecord) (int64, error) {
	return s.db.UpsertPost(ctx, db.Post{
		AccountID:      post.AccountID,
		ExternalPostID: post.ExternalPostID,
		Caption:        post.Caption,
		Annotations:    post.Annotations,
		MediaType:      post.MediaType,
		MediaURL:       post.MediaURL,
		ThumbnailURL:   post.ThumbnailURL,
		PostedAt:       post.PostedAt,
	})
}

// UpsertInteractions writes one post's interactions in a single transaction,
// so a partially-written post never becomes visible.
func (s *SyncStore) UpsertInteractions(ctx context.Context, interactions []ports.InteractionRecord) error {
	if len(interactions) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(q *db.Queries) error {
		for _, interaction := range interactions {
			if err := q.UpsertInteraction(ctx, toInteractionRow(interaction)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ResetAccount clears the account's synced content. The account row survives.
func (s *SyncStore) ResetAccount(ctx context.Context, accountID int64) error {
	return s.db.WithTx(ctx, func(q *db.Queries) error {
		if err := q.DeleteAccountInteractions(ctx, accountID); err != nil {
			return err
		}
		return q.DeleteAccountPosts(ctx, accountID)
	})
}

func (s *SyncStore) GetAccountByExternalID(ctx context.Context, externalAccountID string) (ports.AccountRecord, error) {
	account, err := s.db.GetAccountByExternalID(ctx, externalAccountID)
	if err != nil {
		return ports.AccountRecord{}, err
	}
	return ports.AccountRecord{
		ID:                account.ID,
		ExternalAccountID: account.ExternalAccountID,
		Handle:            account.Handle,
		Bio:               account.Bio,
	}, nil
}

func (s *SyncStore) ListPosts(ctx context.Context, accountID int64, limit, offset int) ([]ports.PostRecord, error) {
	rows, err := s.db.ListPosts(ctx, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	posts := make([]ports.PostRecord, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, ports.PostRecord{
			ID:             row.ID,
			AccountID:      row.AccountID,
			ExternalPostID: row.ExternalPostID,
			Caption:        row.Caption,
			Annotations:    row.Annotations,
			MediaType:      row.MediaType,
			MediaURL:       row.MediaURL,
			ThumbnailURL:   row.ThumbnailURL,
			PostedAt:       row.PostedAt,
		})
	}
	return posts, nil
}

func (s *SyncStore) ListInteractions(ctx context.Context, accountID int64, limit, offset int) ([]ports.InteractionRecord, error) {
	rows, err := s.db.ListInteractions(ctx, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	interactions := make([]ports.InteractionRecord, 0, len(rows))
	for _, row := range rows {
		interaction := ports.InteractionRecord{
			ID:                row.ID,
			AccountID:         row.AccountID,
			PostID:            row.PostID,
			ExternalCommentID: row.ExternalCommentID,
			SenderName:        row.SenderName,
			SenderHandle:      row.SenderHandle,
			Message:           row.Message,
			HasOwnerReply:     row.HasOwnerReply,
			RelevanceScore:    int(row.RelevanceScore),
			CommentedAt:       row.CommentedAt,
		}
		if row.ParentCommentID.Valid {
			parent := row.ParentCommentID.String
			interaction.ParentCommentID = &parent
		}
		if row.OwnerReply.Valid {
			reply := row.OwnerReply.String
			interaction.OwnerReply = &reply
		}
		interactions = append(interactions, interaction)
	}
	return interactions, nil
}

func (s *SyncStore) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

func toInteractionRow(interaction ports.InteractionRecord) db.Interaction {
	row := db.Interaction{
		AccountID:         interaction.AccountID,
		PostID:            interaction.PostID,
		ExternalCommentID: interaction.ExternalCommentID,
		SenderName:        interaction.SenderName,
		SenderHandle:      interaction.SenderHandle,
		Message:           interaction.Message,
		HasOwnerReply:     interaction.HasOwnerReply,
		RelevanceScore:    int64(interaction.RelevanceScore),
		CommentedAt:       interaction.CommentedAt,
	}
	if interaction.ParentCommentID != nil {
		row.ParentCommentID = sql.NullString{String: *interaction.ParentCommentID, Valid: true}
	}
	if interaction.OwnerReply != nil {
		row.OwnerReply = sql.NullString{String: *interaction.OwnerReply, Valid: true}
	}
	return row
}

var (
	_ ports.SyncStore        = (*SyncStore)(nil)
	_ ports.ContentReadStore = (*SyncStore)(nil)
)
