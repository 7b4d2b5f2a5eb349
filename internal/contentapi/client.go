package contentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/creatorlens/creatorlens/internal/app/domain"
	"github.com/creatorlens/creatorlens/internal/app/ports"
)

const (
	profileFields      = "id,username,biography"
	mediaFields        = "id,caption,media_type,media_url,thumbnail_url,timestamp,comments{id,text,username,from,like_count,timestamp,replies{id,text,username,from,timestamp}}"
	replyFields        = "id,text,username,from,timestamp"
	flatCommentFields  = "id,text,username,from,like_count,timestamp,parent_id"
	flatCommentLimit   = 100
	defaultHTTPTimeout = 15 * time.Second
)

// Client talks to the third-party content API. It owns retry/backoff and
// client-side request pacing; it holds no mutable state beyond the limiter
// and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retryPolicy
	log        *slog.Logger
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	RetryAttempts  int
	RetryBase      time.Duration
	RetryMax       time.Duration
	RequestsPerSec float64
	Logger         *slog.Logger
}

// New constructs a content API client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	perSec := opts.RequestsPerSec
	if perSec <= 0 {
		perSec = 4
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(perSec), 1),
		retry: retryPolicy{
			Attempts: opts.RetryAttempts,
			Base:     opts.RetryBase,
			Max:      opts.RetryMax,
		},
		log: log,
	}
}

var _ ports.ContentClient = (*Client)(nil)

type profilePayload struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Biography string `json:"biography"`
}

type authorPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type replyPayload struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Username  string         `json:"username"`
	From      *authorPayload `json:"from"`
	Timestamp string         `json:"timestamp"`
}

type commentPayload struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Username  string         `json:"username"`
	From      *authorPayload `json:"from"`
	LikeCount int            `json:"like_count"`
	Timestamp string         `json:"timestamp"`
	ParentID  string         `json:"parent_id"`
	Replies   *struct {
		Data []replyPayload `json:"data"`
	} `json:"replies"`
}

type mediaPayload struct {
	ID           string `json:"id"`
	Caption      string `json:"caption"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Timestamp    string `json:"timestamp"`
	Comments     *struct {
		Data []commentPayload `json:"data"`
	} `json:"comments"`
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// FetchProfile resolves the owner identity for the credential.
func (c *Client) FetchProfile(ctx context.Context, credential string) (domain.Profile, error) {
	query := url.Values{}
	query.Set("fields", profileFields)

	var payload profilePayload
	if err := c.getJSON(ctx, "/me", query, credential, &payload); err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		ExternalAccountID: payload.ID,
		Handle:            payload.Username,
		Bio:               payload.Biography,
	}, nil
}

// FetchPosts lists the account's published posts, newest first, each with
// nested comment data up to the server-side depth limit.
func (c *Client) FetchPosts(ctx context.Context, credential string, limit int) ([]domain.PostPayload, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{}
	query.Set("fields", mediaFields)
	query.Set("limit", strconv.Itoa(limit))

	var envelope listEnvelope[mediaPayload]
	if err := c.getJSON(ctx, "/me/media", query, credential, &envelope); err != nil {
		return nil, err
	}

	posts := make([]domain.PostPayload, 0, len(envelope.Data))
	for _, media := range envelope.Data {
		post := domain.PostPayload{
			ExternalID:   media.ID,
			Caption:      media.Caption,
			MediaType:    media.MediaType,
			MediaURL:     media.MediaURL,
			ThumbnailURL: media.ThumbnailURL,
			PostedAt:     parseTimestamp(media.Timestamp),
		}
		if media.Comments != nil {
			post.Comments = mapComments(media.Comments.Data)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// FetchCommentReplies queries the comment-scoped replies endpoint. The
// upstream is known to return an empty list for some account types even when
// replies exist; callers treat an empty result as inconclusive.
func (c *Client) FetchCommentReplies(ctx context.Context, commentID, credential string) ([]domain.ReplyPayload, error) {
	query := url.Values{}
	query.Set("fields", replyFields)

	var envelope listEnvelope[replyPayload]
	if err := c.getJSON(ctx, "/"+url.PathEscape(commentID)+"/replies", query, credential, &envelope); err != nil {
		return nil, err
	}
	return mapReplies(envelope.Data), nil
}

// FetchAllCommentsForPost lists all comments on a post as one flat,
// higher-limit listing; reply entries carry parent_id.
func (c *Client) FetchAllCommentsForPost(ctx context.Context, postID, credential string) ([]domain.CommentPayload, error) {
	query := url.Values{}
	query.Set("fields", flatCommentFields)
	query.Set("limit", strconv.Itoa(flatCommentLimit))

	var envelope listEnvelope[commentPayload]
	if err := c.getJSON(ctx, "/"+url.PathEscape(postID)+"/comments", query, credential, &envelope); err != nil {
		return nil, err
	}
	return mapComments(envelope.Data), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, credential string, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", credential)
	requestURL := c.baseURL + endpoint + "?" + query.Encode()

	var lastStatus int
	var lastErr error

	attempts := c.retry.attempts()
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		status, err := c.doOnce(ctx, requestURL, out)
		switch {
		case err == nil && status == 0:
			return nil
		case err != nil && status == 0:
			// Transport failure, retryable.
			lastErr = err
			lastStatus = 0
		case terminalAuth(status):
			return fmt.Errorf("%s: %w", endpoint, ErrAuth)
		case !retryable(status):
			return &UpstreamError{Endpoint: endpoint, StatusCode: status}
		default:
			lastStatus = status
			lastErr = nil
		}

		if attempt < attempts-1 {
			wait := c.retry.delay(attempt)
			logRetry(c.log, endpoint, attempt, lastStatus, wait)
			if err := c.retry.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	return &UpstreamError{Endpoint: endpoint, StatusCode: lastStatus, Err: lastErr}
}

// doOnce performs a single request. It returns (0, nil) on success,
// (0, err) on transport failure, and (status, nil) on a non-2xx response.
func (c *Client) doOnce(ctx context.Context, requestURL string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return 0, nil
}

func mapComments(payloads []commentPayload) []domain.CommentPayload {
	comments := make([]domain.CommentPayload, 0, len(payloads))
	for _, p := range payloads {
		comment := domain.CommentPayload{
			ExternalID: p.ID,
			ParentID:   p.ParentID,
			Text:       p.Text,
			LikeCount:  p.LikeCount,
			Timestamp:  parseTimestamp(p.Timestamp),
		}
		comment.AuthorHandle = p.Username
		if p.From != nil {
			comment.AuthorID = p.From.ID
			comment.AuthorName = p.From.Name
			if comment.AuthorHandle == "" {
				comment.AuthorHandle = p.From.Username
			}
		}
		if comment.AuthorName == "" {
			comment.AuthorName = comment.AuthorHandle
		}
		if p.Replies != nil {
			comment.Replies = mapReplies(p.Replies.Data)
		}
		comments = append(comments, comment)
	}
	return comments
}

func mapReplies(payloads []replyPayload) []domain.ReplyPayload {
	replies := make([]domain.ReplyPayload, 0, len(payloads))
	for _, p := range payloads {
		reply := domain.ReplyPayload{
			ExternalID:   p.ID,
			Text:         p.Text,
			AuthorHandle: p.Username,
			Timestamp:    parseTimestamp(p.Timestamp),
		}
		if p.From != nil {
			reply.AuthorID = p.From.ID
			if reply.AuthorHandle == "" {
				reply.AuthorHandle = p.From.Username
			}
		}
		replies = append(replies, reply)
	}
	return replies
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
