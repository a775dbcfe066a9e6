// Package likes records likes between users and promotes reciprocal likes
// into matches.
package likes

import (
	"context"

	"dating-match-server/internal/models"
	"dating-match-server/internal/notify"
	"dating-match-server/internal/repository"

	"github.com/sirupsen/logrus"
)

// State is the relationship of an ordered pair (a, b).
type State string

const (
	StateNone    State = "none"
	StateALikedB State = "a_liked_b"
	StateBLikedA State = "b_liked_a"
	StateMutual  State = "mutual"
)

// StateOf derives the pair state from the two user documents. A pair is
// mutual once either side lists the other as a match.
func StateOf(a, b *models.User) State {
	switch {
	case a.Matches.Contains(b.ID) || b.Matches.Contains(a.ID):
		return StateMutual
	case a.LikedUsers.Contains(b.ID) && b.LikedUsers.Contains(a.ID):
		return StateMutual
	case a.LikedUsers.Contains(b.ID):
		return StateALikedB
	case b.LikedUsers.Contains(a.ID):
		return StateBLikedA
	default:
		return StateNone
	}
}

type LikeOutcome struct {
	Matched bool `json:"matched"`
}

type AcceptOutcome struct {
	AlreadyMatched bool `json:"already_matched"`
}

type Graph struct {
	users     repository.UserStore
	publisher notify.Publisher
	log       *logrus.Entry
}

func NewGraph(users repository.UserStore, publisher notify.Publisher, log *logrus.Entry) *Graph {
	return &Graph{users: users, publisher: publisher, log: log}
}

// RecordLike adds the edge liker -> likee. When likee already liked liker
// both users are added to each other's matches in the same transaction.
// Notifications go out after commit: a match to both users, otherwise a like
// to the likee.
func (g *Graph) RecordLike(ctx context.Context, likerID, likeeID uint) (LikeOutcome, error) {
	if likerID == likeeID {
		return LikeOutcome{}, models.NewInvalidInputError("You cannot like yourself")
	}

	var outcome LikeOutcome
	err := g.users.Transaction(ctx, func(tx repository.UserStore) error {
		liker, likee, err := loadPair(ctx, tx, likerID, likeeID)
		if err != nil {
			return err
		}
		if liker.BlockedUsers.Contains(likee.ID) {
			return models.NewInvalidStateError("You cannot like a user you have blocked")
		}
		if liker.LikedUsers.Contains(likee.ID) {
			return models.NewDuplicateActionError("You have already liked this user")
		}

		liker.LikedUsers.Add(likee.ID)
		likee.ReceivedLikes.Add(liker.ID)
		if StateOf(liker, likee) == StateMutual {
			liker.Matches.Add(likee.ID)
			likee.Matches.Add(liker.ID)
			outcome.Matched = true
		}
		return savePair(ctx, tx, liker, likee)
	})
	if err != nil {
		return LikeOutcome{}, err
	}

	if outcome.Matched {
		g.publish(ctx, likerID, notify.MatchEvent(likeeID))
		g.publish(ctx, likeeID, notify.MatchEvent(likerID))
	} else {
		g.publish(ctx, likeeID, notify.LikeEvent(likerID))
	}
	return outcome, nil
}

// AcceptLike matches accepter with a user who already liked them, without
// requiring a like back. Retrying on a pair that is already matched succeeds
// without notifying again.
func (g *Graph) AcceptLike(ctx context.Context, accepterID, likerID uint) (AcceptOutcome, error) {
	if accepterID == likerID {
		return AcceptOutcome{}, models.NewInvalidInputError("You cannot accept your own like")
	}

	outcome := AcceptOutcome{AlreadyMatched: true}
	err := g.users.Transaction(ctx, func(tx repository.UserStore) error {
		accepter, liker, err := loadPair(ctx, tx, accepterID, likerID)
		if err != nil {
			return err
		}
		if !liker.LikedUsers.Contains(accepter.ID) {
			return models.NewInvalidStateError("No like to accept")
		}

		changed := accepter.Matches.Add(liker.ID)
		changed = liker.Matches.Add(accepter.ID) || changed
		if !changed {
			return nil
		}
		liker.AcceptedLikesFrom.Add(accepter.ID)
		outcome.AlreadyMatched = false
		return savePair(ctx, tx, accepter, liker)
	})
	if err != nil {
		return AcceptOutcome{}, err
	}

	if !outcome.AlreadyMatched {
		g.publish(ctx, likerID, notify.AcceptedLikeEvent(accepterID))
	}
	return outcome, nil
}

// ReceivedLikes lists the users who liked userID.
func (g *Graph) ReceivedLikes(ctx context.Context, userID uint) ([]models.PublicUser, error) {
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return g.publicUsers(ctx, user.ReceivedLikes)
}

// AcceptedLikes lists the users who accepted a like sent by userID.
func (g *Graph) AcceptedLikes(ctx context.Context, userID uint) ([]models.PublicUser, error) {
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return g.publicUsers(ctx, user.AcceptedLikesFrom)
}

// Matches lists the users matched with userID.
func (g *Graph) Matches(ctx context.Context, userID uint) ([]models.PublicUser, error) {
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return g.publicUsers(ctx, user.Matches)
}

func (g *Graph) publicUsers(ctx context.Context, ids models.IDSet) ([]models.PublicUser, error) {
	users, err := g.users.FindMany(ctx, repository.UserQuery{IDs: append([]uint{}, ids...), WithFilters: true})
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

func (g *Graph) publish(ctx context.Context, userID uint, ev notify.Event) {
	if err := g.publisher.Publish(ctx, userID, ev); err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    ev.Type,
		}).Warn("Notification not published")
	}
}

// loadPair reads both users, lower ID first so concurrent transactions on
// the same pair lock rows in the same order.
func loadPair(ctx context.Context, tx repository.UserStore, a, b uint) (*models.User, *models.User, error) {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	u1, err := tx.FindByID(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	u2, err := tx.FindByID(ctx, second)
	if err != nil {
		return nil, nil, err
	}
	if u1.ID == a {
		return u1, u2, nil
	}
	return u2, u1, nil
}

func savePair(ctx context.Context, tx repository.UserStore, a, b *models.User) error {
	if err := tx.Save(ctx, a); err != nil {
		return err
	}
	return tx.Save(ctx, b)
}
