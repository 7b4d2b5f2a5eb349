package contentapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Options{
		BaseURL:        server.URL,
		RetryAttempts:  3,
		RetryBase:      time.Millisecond,
		RetryMax:       5 * time.Millisecond,
		RequestsPerSec: 1000,
	})
	return client, server
}

func TestFetchProfileParsesPayload(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("access_token") != "secret" {
			t.Errorf("missing access token query param")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"17841400000000000","username":"creator","biography":"makes things"}`))
	}))

	profile, err := client.FetchProfile(context.Background(), "secret")
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if profile.ExternalAccountID != "17841400000000000" {
		t.Fatalf("unexpected account id %q", profile.ExternalAccountID)
	}
	if profile.Handle != "creator" {
		t.Fatalf("unexpected handle %q", profile.Handle)
	}
}

func TestFetchPostsParsesNestedComments(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{
			"id":"post-1",
			"caption":"hello #world",
			"media_type":"IMAGE",
			"media_url":"https://cdn.example/p1.jpg",
			"timestamp":"2026-05-01T12:00:00+0000",
			"comments":{"data":[{
				"id":"c-1",
				"text":"nice!",
				"username":"fan",
				"from":{"id":"900","username":"fan","name":"A Fan"},
				"like_count":3,
				"timestamp":"2026-05-01T13:00:00+0000",
				"replies":{"data":[{
					"id":"r-1","text":"thanks!","username":"creator",
					"from":{"id":"100","username":"creator"},
					"timestamp":"2026-05-01T14:00:00+0000"
				}]}
			}]}
		}]}`))
	}))

	posts, err := client.FetchPosts(context.Background(), "secret", 10)
	if err != nil {
		t.Fatalf("fetch posts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	post := posts[0]
	if post.ExternalID != "post-1" || post.MediaType != "IMAGE" {
		t.Fatalf("unexpected post %+v", post)
	}
	if len(post.Comments) != 1 {
		t.Fatalf("expected 1 nested comment, got %d", len(post.Comments))
	}
	comment := post.Comments[0]
	if comment.AuthorID != "900" || comment.AuthorHandle != "fan" || comment.LikeCount != 3 {
		t.Fatalf("unexpected comment %+v", comment)
	}
	if len(comment.Replies) != 1 || comment.Replies[0].AuthorID != "100" {
		t.Fatalf("expected nested owner reply, got %+v", comment.Replies)
	}
}

func TestRetryOn429ThenSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","username":"creator"}`))
	}))

	profile, err := client.FetchProfile(context.Background(), "secret")
	if err != nil {
		t.Fatalf("expected success after two 429s, got %v", err)
	}
	if profile.Handle != "creator" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestAuthFailureIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.FetchProfile(context.Background(), "expired")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt for 401, got %d", got)
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := client.FetchPosts(context.Background(), "secret", 5)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", upstream.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt for 400, got %d", got)
	}
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.FetchCommentReplies(context.Background(), "c-1", "secret")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected last status 502, got %d", upstream.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestFlatCommentsCarryParentID(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/post-9/comments" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"c-1","text":"question?","username":"fan","timestamp":"2026-05-01T10:00:00+0000"},
			{"id":"c-2","text":"answer","username":"creator","parent_id":"c-1","timestamp":"2026-05-01T11:00:00+0000"}
		]}`))
	}))

	comments, err := client.FetchAllCommentsForPost(context.Background(), "post-9", "secret")
	if err != nil {
		t.Fatalf("fetch flat comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].ParentID != "" {
		t.Fatalf("expected top-level comment without parent, got %q", comments[0].ParentID)
	}
	if comments[1].ParentID != "c-1" {
		t.Fatalf("expected reply parent c-1, got %q", comments[1].ParentID)
	}
}
