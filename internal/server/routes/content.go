package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/creatorlens/creatorlens/internal/app/ports"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ContentRoutes serves the persisted posts and interactions.
type ContentRoutes struct {
	store ports.ContentReadStore
}

// NewContentRoutes constructs the read route group.
func NewContentRoutes(store ports.ContentReadStore) *ContentRoutes {
	return &ContentRoutes{store: store}
}

// RegisterRoutes registers content read endpoints.
func (r *ContentRoutes) RegisterRoutes(s *echo.Echo) {
	api := s.Group("/api/v1")

	api.GET("/accounts/:account_id", r.handleGetAccount)
	api.GET("/accounts/:account_id/posts", r.handleListPosts)
	api.GET("/accounts/:account_id/interactions", r.handleListInteractions)
}

type accountResponse struct {
	ExternalAccountID string `json:"externalAccountId"`
	Handle            string `json:"handle"`
	Bio               string `json:"bio,omitempty"`
}

type postResponse struct {
	ExternalPostID string    `json:"externalPostId"`
	Caption        string    `json:"caption,omitempty"`
	Annotations    string    `json:"annotations,omitempty"`
	MediaType      string    `json:"mediaType,omitempty"`
	MediaURL       string    `json:"mediaUrl,omitempty"`
	ThumbnailURL   string    `json:"thumbnailUrl,omitempty"`
	PostedAt       time.Time `json:"postedAt"`
}

type interactionResponse struct {
	ExternalCommentID string    `json:"externalCommentId"`
	ParentCommentID   *string   `json:"parentCommentId,omitempty"`
	SenderName        string    `json:"senderName,omitempty"`
	SenderHandle      string    `json:"senderHandle,omitempty"`
	Message           string    `json:"message"`
	OwnerReply        *string   `json:"ownerReply,omitempty"`
	HasOwnerReply     bool      `json:"hasOwnerReply"`
	RelevanceScore    int       `json:"relevanceScore"`
	CommentedAt       time.Time `json:"commentedAt"`
}

func (r *ContentRoutes) handleGetAccount(c echo.Context) error {
	account, err := r.lookupAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{
		ExternalAccountID: account.ExternalAccountID,
		Handle:            account.Handle,
		Bio:               account.Bio,
	})
}

func (r *ContentRoutes) handleListPosts(c echo.Context) error {
	account, err := r.lookupAccount(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	posts, err := r.store.ListPosts(c.Request().Context(), account.ID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list posts")
	}
	out := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, postResponse{
			ExternalPostID: post.ExternalPostID,
			Caption:        post.Caption,
			Annotations:    post.Annotations,
			MediaType:      post.MediaType,
			MediaURL:       post.MediaURL,
			ThumbnailURL:   post.ThumbnailURL,
			PostedAt:       post.PostedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (r *ContentRoutes) handleListInteractions(c echo.Context) error {
	account, err := r.lookupAccount(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	interactions, err := r.store.ListInteractions(c.Request().Context(), account.ID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list interactions")
	}
	out := make([]interactionResponse, 0, len(interactions))
	for _, interaction := range interactions {
		out = append(out, interactionResponse{
			ExternalCommentID: interaction.ExternalCommentID,
			ParentCommentID:   interaction.ParentCommentID,
			SenderName:        interaction.SenderName,
			SenderHandle:      interaction.SenderHandle,
			Message:           interaction.Message,
			OwnerReply:        interaction.OwnerReply,
			HasOwnerReply:     interaction.HasOwnerReply,
			RelevanceScore:    interaction.RelevanceScore,
			CommentedAt:       interaction.CommentedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (r *ContentRoutes) lookupAccount(c echo.Context) (ports.AccountRecord, error) {
	externalAccountID := strings.TrimSpace(c.Param("account_id"))
	if externalAccountID == "" {
		return ports.AccountRecord{}, echo.NewHTTPError(http.StatusBadRequest, "account id is required")
	}
	account, err := r.store.GetAccountByExternalID(c.Request().Context(), externalAccountID)
	if err != nil {
		return ports.AccountRecord{}, echo.NewHTTPError(http.StatusNotFound, "account not found")
	}
	return account, nil
}

func pagination(c echo.Context) (int, int) {
	limit := defaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset := 0
	if raw := c.QueryParam("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	return limit, offset
}
