package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/creatorlens/creatorlens/internal/app/ports"
)

type fakeReadStore struct {
	account      ports.AccountRecord
	accountErr   error
	posts        []ports.PostRecord
	interactions []ports.InteractionRecord

	lastLimit  int
	lastOffset int
}

func (f *fakeReadStore) GetAccountByExternalID(context.Context, string) (ports.AccountRecord, error) {
	if f.accountErr != nil {
		return ports.AccountRecord{}, f.accountErr
	}
	return f.account, nil
}

func (f *fakeReadStore) ListPosts(_ context.Context, _ int64, limit, offset int) ([]ports.PostRecord, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return f.posts, nil
}

func (f *fakeReadStore) ListInteractions(_ context.Context, _ int64, limit, offset int) ([]ports.InteractionRecord, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return f.interactions, nil
}

func newContentApp(store ports.ContentReadStore) *echo.Echo {
	e := echo.New()
	NewContentRoutes(store).RegisterRoutes(e)
	return e
}

func TestGetAccount(t *testing.T) {
	t.Parallel()
	store := &fakeReadStore{account: ports.AccountRecord{
		ID: 1, ExternalAccountID: "acct-1", Handle: "maya.creates", Bio: "daily fits",
	}}
	app := newContentApp(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-1", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body accountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body.Handle != "maya.creates" || body.ExternalAccountID != "acct-1" {
		t.Fatalf("body = %+v", body)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	t.Parallel()
	store := &fakeReadStore{accountErr: errors.New("no rows")}
	app := newContentApp(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-unknown", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListInteractionsResponseShape(t *testing.T) {
	t.Parallel()
	reply := "thank you!"
	store := &fakeReadStore{
		account: ports.AccountRecord{ID: 1, ExternalAccountID: "acct-1"},
		interactions: []ports.InteractionRecord{
			{
				ExternalCommentID: "c1",
				SenderHandle:      "fan.one",
				Message:           "love it",
				OwnerReply:        &reply,
				HasOwnerReply:     true,
				RelevanceScore:    105,
				CommentedAt:       time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
			},
			{ExternalCommentID: "c2", SenderHandle: "fan.two", Message: "clean"},
		},
	}
	app := newContentApp(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-1/interactions", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body []interactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("returned %d interactions, want 2", len(body))
	}
	if body[0].OwnerReply == nil || *body[0].OwnerReply != reply {
		t.Fatalf("owner reply dropped: %+v", body[0])
	}
	if body[1].OwnerReply != nil {
		t.Fatalf("unreplied row carries owner reply: %+v", body[1])
	}
}

func TestPaginationClamping(t *testing.T) {
	t.Parallel()
	store := &fakeReadStore{account: ports.AccountRecord{ID: 1}}
	app := newContentApp(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct-1/posts?limit=9999&offset=30", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.lastLimit != maxPageSize {
		t.Fatalf("limit = %d, want clamped to %d", store.lastLimit, maxPageSize)
	}
	if store.lastOffset != 30 {
		t.Fatalf("offset = %d, want 30", store.lastOffset)
	}
}
