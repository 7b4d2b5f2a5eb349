package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/creatorlens/creatorlens/internal/app/domain"
	"github.com/creatorlens/creatorlens/internal/app/ports"
	"github.com/creatorlens/creatorlens/internal/contentapi"
)

// ErrAlreadySyncing indicates a run is active for the account.
var ErrAlreadySyncing = errors.New("a sync is already running for this account")

// SyncTunables bounds one run. Zero values fall back to defaults.
type SyncTunables struct {
	MaxPosts         int
	BatchSize        int
	BatchDelay       time.Duration
	BudgetTotal      int
	BudgetPerPostMin int
	ReplyWindow      time.Duration
}

func (t SyncTunables) withDefaults() SyncTunables {
	if t.MaxPosts <= 0 {
		t.MaxPosts = 50
	}
	if t.BatchSize <= 0 {
		t.BatchSize = 3
	}
	if t.BudgetTotal <= 0 {
		t.BudgetTotal = 150
	}
	if t.BudgetPerPostMin < 0 {
		t.BudgetPerPostMin = 0
	}
	if t.ReplyWindow <= 0 {
		t.ReplyWindow = 7 * 24 * time.Hour
	}
	return t
}

// SyncService drives the end-to-end content synchronization run: profile,
// post listing, per-post comment reconciliation in bounded-concurrency
// batches, budgeted selection, and idempotent persistence.
type SyncService struct {
	client   ports.ContentClient
	store    ports.SyncStore
	progress ports.ProgressRegistry
	tunables SyncTunables
	policy   ScorePolicy
	metrics  syncMetrics
	log      *slog.Logger
}

// NewSyncService constructs the orchestrator.
func NewSyncService(client ports.ContentClient, store ports.SyncStore, progress ports.ProgressRegistry, tunables SyncTunables, log *slog.Logger) *SyncService {
	if log == nil {
		log = slog.Default()
	}
	return &SyncService{
		client:   client,
		store:    store,
		progress: progress,
		tunables: tunables.withDefaults(),
		policy:   DefaultScorePolicy(),
		metrics:  newSyncMetrics(),
		log:      log,
	}
}

// StartSync admits and launches a run in the background. It returns
// ErrAlreadySyncing while a run is active for the account; the store is not
// transaction-isolated across concurrent runs for the same account, so
// concurrent requests are rejected rather than queued.
func (s *SyncService) StartSync(ctx context.Context, accountKey, credential string) error {
	if !s.progress.Begin(accountKey) {
		return ErrAlreadySyncing
	}
	go s.run(context.WithoutCancel(ctx), accountKey, credential)
	return nil
}

// IsRunning reports whether a run is currently active for the account.
func (s *SyncService) IsRunning(accountKey string) bool {
	state, ok := s.progress.Get(accountKey)
	return ok && state.Status == domain.SyncStatusRunning
}

// Progress returns the account's current run state.
func (s *SyncService) Progress(accountKey string) (domain.SyncProgress, bool) {
	return s.progress.Get(accountKey)
}

type postOutcome struct {
	postDBID  int64
	persisted bool
	comments  []domain.ResolvedComment
	failures  []domain.SyncFailure
}

func (s *SyncService) run(ctx context.Context, accountKey, credential string) {
	start := time.Now()
	log := s.log.With("account", accountKey)

	s.progress.Update(accountKey, "resolving profile", 2)
	profile, err := s.client.FetchProfile(ctx, credential)
	if err != nil {
		s.fatal(ctx, accountKey, log, "fetch profile", err, start)
		return
	}
	log = log.With("handle", profile.Handle)

	accountID, err := s.store.UpsertAccount(ctx, ports.AccountRecord{
		ExternalAccountID: profile.ExternalAccountID,
		Handle:            profile.Handle,
		Bio:               profile.Bio,
	})
	if err != nil {
		s.fatal(ctx, accountKey, log, "persist account", err, start)
		return
	}

	s.progress.Update(accountKey, "fetching posts", 8)
	posts, err := s.client.FetchPosts(ctx, credential, s.tunables.MaxPosts)
	if err != nil {
		s.fatal(ctx, accountKey, log, "fetch posts", err, start)
		return
	}
	log.Info("fetched post list", "posts", len(posts))

	var (
		mu        sync.Mutex
		collected []domain.ResolvedComment
		failures  []domain.SyncFailure
		postIDs   = make(map[string]int64, len(posts))
		postCount int
	)

	for batchStart := 0; batchStart < len(posts); batchStart += s.tunables.BatchSize {
		if batchStart > 0 && s.tunables.BatchDelay > 0 {
			if err := sleepCtx(ctx, s.tunables.BatchDelay); err != nil {
				s.fatal(ctx, accountKey, log, "inter-batch delay", err, start)
				return
			}
		}

		batchEnd := batchStart + s.tunables.BatchSize
		if batchEnd > len(posts) {
			batchEnd = len(posts)
		}

		var wg sync.WaitGroup
		for i := batchStart; i < batchEnd; i++ {
			wg.Add(1)
			go func(postIndex int, post domain.PostPayload) {
				defer wg.Done()
				outcome := s.processPost(ctx, profile, credential, accountID, postIndex, post)

				mu.Lock()
				defer mu.Unlock()
				if outcome.persisted {
					postCount++
					postIDs[post.ExternalID] = outcome.postDBID
				}
				collected = append(collected, outcome.comments...)
				failures = append(failures, outcome.failures...)
			}(i, posts[i])
		}
		wg.Wait()

		percent := 10
		if len(posts) > 0 {
			percent = 10 + 70*batchEnd/len(posts)
		}
		s.progress.Update(accountKey, fmt.Sprintf("processed %d/%d posts", batchEnd, len(posts)), percent)
	}

	s.progress.Update(accountKey, "selecting interactions", 84)
	selected := SelectWithinBudget(collected, s.tunables.BudgetTotal, s.tunables.BudgetPerPostMin)

	s.progress.Update(accountKey, "saving interactions", 90)
	interactionCount, saveFailures := s.persistSelection(ctx, profile, accountID, postIDs, selected)
	failures = append(failures, saveFailures...)

	for _, failure := range failures {
		s.metrics.recordFailure(ctx, failure.Kind)
		log.Warn("resource skipped during sync", "resource", failure.ResourceID, "kind", failure.Kind)
	}

	result := domain.SyncResult{
		PostCount:        postCount,
		InteractionCount: interactionCount,
		FailureCount:     len(failures),
	}
	s.metrics.recordInteractions(ctx, interactionCount)
	s.metrics.recordRun(ctx, domain.SyncStatusCompleted, time.Since(start))
	s.progress.Finish(accountKey, result)
	log.Info("sync completed",
		"posts", result.PostCount,
		"interactions", result.InteractionCount,
		"failures", result.FailureCount,
		"duration", time.Since(start),
	)
}

// processPost persists the post row, then resolves and scores its top-level
// comments. The post's metadata survives even when its comments cannot be
// fetched; a persist failure skips the post entirely.
func (s *SyncService) processPost(ctx context.Context, profile domain.Profile, credential string, accountID int64, postIndex int, post domain.PostPayload) postOutcome {
	var outcome postOutcome

	postDBID, err := s.store.UpsertPost(ctx, ports.PostRecord{
		AccountID:      accountID,
		ExternalPostID: post.ExternalID,
		Caption:        post.Caption,
		Annotations:    domain.AnnotateCaption(post.Caption, post.MediaType),
		MediaType:      post.MediaType,
		MediaURL:       post.MediaURL,
		ThumbnailURL:   post.ThumbnailURL,
		PostedAt:       post.PostedAt,
	})
	if err != nil {
		s.log.Warn("post persist failed", "post", post.ExternalID, "error", err)
		outcome.failures = append(outcome.failures, domain.SyncFailure{
			ResourceID: post.ExternalID,
			Kind:       domain.FailureKindPostPersist,
		})
		return outcome
	}
	outcome.postDBID = postDBID
	outcome.persisted = true
	s.metrics.recordPost(ctx)

	resolver := newReplyResolver(s.client, credential, post.ExternalID,
		profile.ExternalAccountID, profile.Handle, s.tunables.ReplyWindow, s.log)

	topLevel := post.Comments
	if len(topLevel) == 0 {
		// The post listing omitted comment data; the flat listing is the
		// comment source, so its failure fails the post's comment step.
		flat, err := s.client.FetchAllCommentsForPost(ctx, post.ExternalID, credential)
		if err != nil {
			s.log.Warn("comment fetch failed", "post", post.ExternalID, "error", err)
			outcome.failures = append(outcome.failures, domain.SyncFailure{
				ResourceID: post.ExternalID,
				Kind:       domain.FailureKindCommentFetch,
			})
			return outcome
		}
		resolver.seedFlat(flat)
		topLevel = topLevelOf(flat)
	}

	fetchIndex := 0
	for _, comment := range topLevel {
		// Owner comments are never stored as distinct interactions.
		if isOwner(comment, profile) {
			continue
		}
		resolution := resolver.Resolve(ctx, comment)
		s.metrics.recordResolution(ctx, resolution.Layer)

		outcome.comments = append(outcome.comments, domain.ResolvedComment{
			Comment:        comment,
			PostExternalID: post.ExternalID,
			PostIndex:      postIndex,
			FetchIndex:     fetchIndex,
			OwnerReply:     resolution.Text,
			ReplyLayer:     resolution.Layer,
			Score:          s.policy.Score(comment, resolution.Text != ""),
		})
		fetchIndex++
	}
	return outcome
}

// persistSelection writes the selected interactions grouped per post, each
// group in one transaction scope, strictly after its post row (written in
// processPost). Non-owner nested replies of a selected comment are kept as
// child rows for thread context.
func (s *SyncService) persistSelection(ctx context.Context, profile domain.Profile, accountID int64, postIDs map[string]int64, selected []domain.ResolvedComment) (int, []domain.SyncFailure) {
	byPost := make(map[string][]domain.ResolvedComment)
	var postOrder []string
	for _, comment := range selected {
		if _, ok := byPost[comment.PostExternalID]; !ok {
			postOrder = append(postOrder, comment.PostExternalID)
		}
		byPost[comment.PostExternalID] = append(byPost[comment.PostExternalID], comment)
	}

	saved := 0
	var failures []domain.SyncFailure
	for _, postExternalID := range postOrder {
		postDBID, ok := postIDs[postExternalID]
		if !ok {
			continue
		}
		group := byPost[postExternalID]
		records := make([]ports.InteractionRecord, 0, len(group))
		for _, resolved := range group {
			records = append(records, interactionRecord(accountID, postDBID, resolved))
			records = append(records, replyContextRecords(accountID, postDBID, resolved, profile)...)
		}
		if err := s.store.UpsertInteractions(ctx, records); err != nil {
			s.log.Warn("interaction persist failed", "post", postExternalID, "error", err)
			failures = append(failures, domain.SyncFailure{
				ResourceID: postExternalID,
				Kind:       domain.FailureKindInteractionSave,
			})
			continue
		}
		saved += len(group)
	}
	return saved, failures
}

func interactionRecord(accountID, postDBID int64, resolved domain.ResolvedComment) ports.InteractionRecord {
	record := ports.InteractionRecord{
		AccountID:         accountID,
		PostID:            postDBID,
		ExternalCommentID: resolved.Comment.ExternalID,
		SenderName:        resolved.Comment.AuthorName,
		SenderHandle:      resolved.Comment.AuthorHandle,
		Message:           resolved.Comment.Text,
		RelevanceScore:    resolved.Score,
		CommentedAt:       resolved.Comment.Timestamp,
	}
	if resolved.HasOwnerReply() {
		reply := resolved.OwnerReply
		record.OwnerReply = &reply
		record.HasOwnerReply = true
	}
	return record
}

// replyContextRecords maps a selected comment's non-owner nested replies to
// child rows referencing the parent comment. Owner-authored replies are
// never stored as rows of their own; the resolved one is embedded on the
// parent and the rest are skipped by authorship.
func replyContextRecords(accountID, postDBID int64, resolved domain.ResolvedComment, profile domain.Profile) []ports.InteractionRecord {
	var records []ports.InteractionRecord
	for _, reply := range resolved.Comment.Replies {
		if isOwnerReply(reply, profile) {
			continue
		}
		parentID := resolved.Comment.ExternalID
		records = append(records, ports.InteractionRecord{
			AccountID:         accountID,
			PostID:            postDBID,
			ExternalCommentID: reply.ExternalID,
			ParentCommentID:   &parentID,
			SenderHandle:      reply.AuthorHandle,
			SenderName:        reply.AuthorHandle,
			Message:           reply.Text,
			CommentedAt:       reply.Timestamp,
		})
	}
	return records
}

func (s *SyncService) fatal(ctx context.Context, accountKey string, log *slog.Logger, step string, err error, start time.Time) {
	message := fmt.Sprintf("%s: %v", step, err)
	if errors.Is(err, contentapi.ErrAuth) {
		message = "invalid or expired access credential"
	}
	log.Error("sync run failed", "step", step, "error", err)
	s.metrics.recordRun(ctx, domain.SyncStatusError, time.Since(start))
	s.progress.Fail(accountKey, message)
}

func topLevelOf(flat []domain.CommentPayload) []domain.CommentPayload {
	var topLevel []domain.CommentPayload
	for _, comment := range flat {
		if comment.ParentID == "" {
			topLevel = append(topLevel, comment)
		}
	}
	return topLevel
}

func isOwner(comment domain.CommentPayload, profile domain.Profile) bool {
	if profile.ExternalAccountID != "" && comment.AuthorID == profile.ExternalAccountID {
		return true
	}
	return profile.Handle != "" && strings.EqualFold(comment.AuthorHandle, profile.Handle)
}

func isOwnerReply(reply domain.ReplyPayload, profile domain.Profile) bool {
	if profile.ExternalAccountID != "" && reply.AuthorID == profile.ExternalAccountID {
		return true
	}
	return profile.Handle != "" && strings.EqualFold(reply.AuthorHandle, profile.Handle)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
