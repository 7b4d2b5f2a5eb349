package services

import (
	"math"
	"strings"

	"github.com/creatorlens/creatorlens/internal/app/domain"
)

// ScorePolicy holds the relevance bonus table. The magnitudes are tuned
// policy, not a contract; the one hard requirement is that OwnerReplyBonus
// exceeds the maximum achievable sum of every other term, so a replied
// comment always outranks an otherwise-identical one without a reply.
type ScorePolicy struct {
	OwnerReplyBonus int

	LikeUnit int
	LikeCap  int

	ReplyUnit int
	ReplyCap  int

	QuestionBonus int
	PositiveBonus int
	TopicBonus    int
	CriticalBonus int

	ShortLength      int
	ShortLengthBonus int
	LongLength       int
	LongLengthBonus  int

	PositiveKeywords []string
	TopicKeywords    []string
	CriticalKeywords []string
	QuestionKeywords []string
}

// DefaultScorePolicy returns the standard bonus table.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		OwnerReplyBonus: 100,

		LikeUnit: 5,
		LikeCap:  15,

		ReplyUnit: 2,
		ReplyCap:  6,

		QuestionBonus: 10,
		PositiveBonus: 5,
		TopicBonus:    8,
		CriticalBonus: 12,

		ShortLength:      40,
		ShortLengthBonus: 5,
		LongLength:       120,
		LongLengthBonus:  10,

		PositiveKeywords: []string{
			"love", "great", "amazing", "awesome", "beautiful", "perfect",
			"thank you", "thanks", "congrats", "inspiring",
		},
		TopicKeywords: []string{
			"tutorial", "recipe", "routine", "tips", "advice", "link",
			"where", "which", "product", "collab",
		},
		CriticalKeywords: []string{
			"disappointed", "problem", "issue", "broken", "refund",
			"scam", "bad", "worst", "unfollow",
		},
		QuestionKeywords: []string{
			"how do", "how did", "what is", "what's", "can you", "could you",
			"do you", "would you", "why",
		},
	}
}

// Score computes the relevance score of one comment. It is a pure function
// of the comment fields and the hasOwnerReply flag.
func (p ScorePolicy) Score(comment domain.CommentPayload, hasOwnerReply bool) int {
	score := 0

	if hasOwnerReply {
		score += p.OwnerReplyBonus
	}

	if comment.LikeCount > 0 {
		likeBonus := int(math.Log10(float64(comment.LikeCount)+1) * float64(p.LikeUnit))
		if likeBonus > p.LikeCap {
			likeBonus = p.LikeCap
		}
		score += likeBonus
	}

	if n := len(comment.Replies); n > 0 {
		replyBonus := n * p.ReplyUnit
		if replyBonus > p.ReplyCap {
			replyBonus = p.ReplyCap
		}
		score += replyBonus
	}

	text := strings.ToLower(comment.Text)

	if strings.Contains(text, "?") || containsAny(text, p.QuestionKeywords) {
		score += p.QuestionBonus
	}
	if containsAny(text, p.PositiveKeywords) {
		score += p.PositiveBonus
	}
	if containsAny(text, p.TopicKeywords) {
		score += p.TopicBonus
	}
	if containsAny(text, p.CriticalKeywords) {
		score += p.CriticalBonus
	}

	length := len([]rune(comment.Text))
	if length >= p.ShortLength {
		score += p.ShortLengthBonus
	}
	if length >= p.LongLength {
		score += p.LongLengthBonus
	}

	return score
}

// MaxAuxiliaryScore is the largest score reachable without an owner reply.
func (p ScorePolicy) MaxAuxiliaryScore() int {
	return p.LikeCap + p.ReplyCap + p.QuestionBonus + p.PositiveBonus +
		p.TopicBonus + p.CriticalBonus + p.ShortLengthBonus + p.LongLengthBonus
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
