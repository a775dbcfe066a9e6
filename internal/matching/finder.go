package matching

import (
	"context"
	"sort"

	"dating-match-server/internal/models"
	"dating-match-server/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Result pairs a candidate with its score for one search.
type Result struct {
	User       models.PublicUser `json:"user"`
	MatchScore int               `json:"matchScore"`
}

type Finder struct {
	users   repository.UserStore
	workers int
	log     *logrus.Entry
}

func NewFinder(users repository.UserStore, workers int, log *logrus.Entry) *Finder {
	if workers <= 0 {
		workers = 1
	}
	return &Finder{users: users, workers: workers, log: log}
}

// Find ranks every eligible candidate against the requester's filters.
// Candidates are all active users other than the requester and the users
// the requester has blocked. Zero scores are dropped; the rest are sorted by
// score, highest first, keeping store order among equal scores.
func (f *Finder) Find(ctx context.Context, requesterID uint, spec FieldSpec) ([]Result, error) {
	if spec.Len() == 0 {
		return nil, models.NewInvalidInputError("filters are required")
	}

	requester, err := f.users.FindByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester.Filters == nil {
		return nil, models.NewNotFoundError("Profile filters for user", requesterID)
	}

	exclude := make([]uint, 0, len(requester.BlockedUsers)+1)
	exclude = append(exclude, requester.ID)
	exclude = append(exclude, requester.BlockedUsers...)

	candidates, err := f.users.FindMany(ctx, repository.UserQuery{
		ExcludeIDs:  exclude,
		WithFilters: true,
		ActiveOnly:  true,
	})
	if err != nil {
		return nil, err
	}

	scores := make([]int, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = Score(requester.Filters, candidates[i].Filters, spec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, models.NewUnavailableError("Match search was cancelled", err)
	}

	results := make([]Result, 0, len(candidates))
	for i := range candidates {
		if scores[i] == 0 {
			continue
		}
		results = append(results, Result{User: candidates[i].Public(), MatchScore: scores[i]})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	f.log.WithFields(logrus.Fields{
		"user_id":    requesterID,
		"candidates": len(candidates),
		"matches":    len(results),
	}).Debug("match search complete")
	return results, nil
}
