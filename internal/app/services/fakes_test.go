package services

import (
	"context"
	"sync"

	"github.com/creatorlens/creatorlens/internal/app/domain"
	"github.com/creatorlens/creatorlens/internal/app/ports"
)

type fakeClient struct {
	mu sync.Mutex

	profile    domain.Profile
	profileErr error

	posts    []domain.PostPayload
	postsErr error

	replies    map[string][]domain.ReplyPayload
	repliesErr map[string]error

	flat    map[string][]domain.CommentPayload
	flatErr map[string]error

	repliesCalls map[string]int
	flatCalls    map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		replies:      make(map[string][]domain.ReplyPayload),
		repliesErr:   make(map[string]error),
		flat:         make(map[string][]domain.CommentPayload),
		flatErr:      make(map[string]error),
		repliesCalls: make(map[string]int),
		flatCalls:    make(map[string]int),
	}
}

func (f *fakeClient) FetchProfile(_ context.Context, _ string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return domain.Profile{}, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeClient) FetchPosts(_ context.Context, _ string, limit int) ([]domain.PostPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postsErr != nil {
		return nil, f.postsErr
	}
	if limit > 0 && limit < len(f.posts) {
		return f.posts[:limit], nil
	}
	return f.posts, nil
}

func (f *fakeClient) FetchCommentReplies(_ context.Context, commentID, _ string) ([]domain.ReplyPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repliesCalls[commentID]++
	if err := f.repliesErr[commentID]; err != nil {
		return nil, err
	}
	return f.replies[commentID], nil
}

func (f *fakeClient) FetchAllCommentsForPost(_ context.Context, postID, _ string) ([]domain.CommentPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flatCalls[postID]++
	if err := f.flatErr[postID]; err != nil {
		return nil, err
	}
	return f.flat[postID], nil
}

func (f *fakeClient) repliesCallCount(commentID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repliesCalls[commentID]
}

func (f *fakeClient) flatCallCount(postID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flatCalls[postID]
}

type fakeStore struct {
	mu sync.Mutex

	nextID       int64
	accounts     []ports.AccountRecord
	posts        []ports.PostRecord
	interactions []ports.InteractionRecord

	accountErr        error
	postErrFor        map[string]error
	interactionErrFor map[int64]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		postErrFor:        make(map[string]error),
		interactionErrFor: make(map[int64]error),
	}
}

func (f *fakeStore) UpsertAccount(_ context.Context, record ports.AccountRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accountErr != nil {
		return 0, f.accountErr
	}
	for _, existing := range f.accounts {
		if existing.ExternalAccountID == record.ExternalAccountID {
			return existing.ID, nil
		}
	}
	f.nextID++
	record.ID = f.nextID
	f.accounts = append(f.accounts, record)
	return record.ID, nil
}

func (f *fakeStore) UpsertPost(_ context.Context, record ports.PostRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.postErrFor[record.ExternalPostID]; err != nil {
		return 0, err
	}
	for _, existing := range f.posts {
		if existing.AccountID == record.AccountID && existing.ExternalPostID == record.ExternalPostID {
			return existing.ID, nil
		}
	}
	f.nextID++
	record.ID = f.nextID
	f.posts = append(f.posts, record)
	return record.ID, nil
}

func (f *fakeStore) UpsertInteractions(_ context.Context, records []ports.InteractionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range records {
		if err := f.interactionErrFor[record.PostID]; err != nil {
			return err
		}
	}
	f.interactions = append(f.interactions, records...)
	return nil
}

func (f *fakeStore) ResetAccount(_ context.Context, accountID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var posts []ports.PostRecord
	for _, post := range f.posts {
		if post.AccountID != accountID {
			posts = append(posts, post)
		}
	}
	f.posts = posts
	var interactions []ports.InteractionRecord
	for _, interaction := range f.interactions {
		if interaction.AccountID != accountID {
			interactions = append(interactions, interaction)
		}
	}
	f.interactions = interactions
	return nil
}

func (f *fakeStore) savedInteractions() []ports.InteractionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.InteractionRecord(nil), f.interactions...)
}

func (f *fakeStore) savedPosts() []ports.PostRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.PostRecord(nil), f.posts...)
}

type fakeProgress struct {
	mu    sync.Mutex
	state map[string]domain.SyncProgress
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{state: make(map[string]domain.SyncProgress)}
}

func (f *fakeProgress) Begin(accountKey string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if current, ok := f.state[accountKey]; ok && current.Status == domain.SyncStatusRunning {
		return false
	}
	f.state[accountKey] = domain.SyncProgress{Stage: "starting", Status: domain.SyncStatusRunning}
	return true
}

func (f *fakeProgress) Update(accountKey, stage string, percent int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := f.state[accountKey]
	current.Stage = stage
	if percent > current.Percent {
		current.Percent = percent
	}
	f.state[accountKey] = current
}

func (f *fakeProgress) Finish(accountKey string, result domain.SyncResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state[accountKey] = domain.SyncProgress{
		Stage:   "done",
		Percent: 100,
		Status:  domain.SyncStatusCompleted,
		Result:  &result,
	}
}

func (f *fakeProgress) Fail(accountKey, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := f.state[accountKey]
	current.Status = domain.SyncStatusError
	current.Error = message
	f.state[accountKey] = current
}

func (f *fakeProgress) Get(accountKey string) (domain.SyncProgress, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.state[accountKey]
	return current, ok
}

func (f *fakeProgress) Clear(accountKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state, accountKey)
}
