// Package relation implements the toggle pattern shared by likes and
// subscriptions: a second request for the same (actor, target) pair undoes
// the first.
package relation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vidtube/db"
	"vidtube/metrics"

	"github.com/google/uuid"
)

// Kind identifies a toggleable relation.
type Kind int

const (
	VideoLike Kind = iota
	CommentLike
	TweetLike
	Subscription
)

func (k Kind) String() string {
	switch k {
	case VideoLike:
		return "video_like"
	case CommentLike:
		return "comment_like"
	case TweetLike:
		return "tweet_like"
	case Subscription:
		return "subscription"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrTargetNotFound is returned by CheckTarget when the target row is missing.
var ErrTargetNotFound = errors.New("relation target not found")

type statements struct {
	targetTable string
	remove      string
	insert      string
	insertArgs  func(actorID, targetID string) []interface{}
	removeArgs  func(actorID, targetID string) []interface{}
}

func likeStatements(targetType, table string) statements {
	return statements{
		targetTable: table,
		remove:      `DELETE FROM likes WHERE liked_by = ? AND target_type = ? AND target_id = ?`,
		insert: `INSERT INTO likes (id, target_type, target_id, liked_by) VALUES (?, ?, ?, ?)
			ON CONFLICT (liked_by, target_type, target_id) DO NOTHING`,
		removeArgs: func(actorID, targetID string) []interface{} {
			return []interface{}{actorID, targetType, targetID}
		},
		insertArgs: func(actorID, targetID string) []interface{} {
			return []interface{}{uuid.NewString(), targetType, targetID, actorID}
		},
	}
}

var kinds = map[Kind]statements{
	VideoLike:   likeStatements("video", "videos"),
	CommentLike: likeStatements("comment", "comments"),
	TweetLike:   likeStatements("tweet", "tweets"),
	Subscription: {
		targetTable: "users",
		remove:      `DELETE FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?`,
		insert: `INSERT INTO subscriptions (id, subscriber_id, channel_id) VALUES (?, ?, ?)
			ON CONFLICT (subscriber_id, channel_id) DO NOTHING`,
		removeArgs: func(actorID, targetID string) []interface{} {
			return []interface{}{actorID, targetID}
		},
		insertArgs: func(actorID, targetID string) []interface{} {
			return []interface{}{uuid.NewString(), actorID, targetID}
		},
	},
}

func lookup(kind Kind) (statements, error) {
	st, ok := kinds[kind]
	if !ok {
		return statements{}, fmt.Errorf("unknown relation kind %v", kind)
	}
	return st, nil
}

// CheckTarget returns ErrTargetNotFound when the row a relation of kind would
// point at does not exist.
func CheckTarget(ctx context.Context, q db.Querier, kind Kind, targetID string) error {
	st, err := lookup(kind)
	if err != nil {
		return err
	}
	var one int
	err = q.QueryRowContext(ctx, "SELECT 1 FROM "+st.targetTable+" WHERE id = ?", targetID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTargetNotFound
	}
	if err != nil {
		return fmt.Errorf("check %v target: %w", kind, err)
	}
	return nil
}

// Toggle removes the (actor, target) relation if present, otherwise creates
// it, and reports whether the relation exists afterwards. The insert relies on
// the table's UNIQUE constraint, so concurrent toggles never leave duplicates.
func Toggle(ctx context.Context, q db.Querier, kind Kind, actorID, targetID string) (bool, error) {
	st, err := lookup(kind)
	if err != nil {
		return false, err
	}

	res, err := q.ExecContext(ctx, st.remove, st.removeArgs(actorID, targetID)...)
	if err != nil {
		return false, fmt.Errorf("remove %v: %w", kind, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove %v: %w", kind, err)
	}
	if removed > 0 {
		metrics.ObserveToggle(kind.String(), false)
		return false, nil
	}

	if _, err := q.ExecContext(ctx, st.insert, st.insertArgs(actorID, targetID)...); err != nil {
		return false, fmt.Errorf("create %v: %w", kind, err)
	}
	metrics.ObserveToggle(kind.String(), true)
	return true, nil
}
