// Package store provides read-only access to the four entity sets the
// analytical views are computed from.
//
// Snapshot is the in-memory implementation: built once, indexed by
// primary key and by business_id / user_id, immutable afterwards and
// safe for concurrent readers. DB reads the same entities from a
// relational database through gorm.
package store

import (
	"context"
	"errors"
	"slices"
)

// ErrNotFound is returned by Reader.Business for an unknown id.
var ErrNotFound = errors.New("store: not found")

// Reader is the entity access contract consumed by the views.
// Empty filters mean "all". Results are in source order.
type Reader interface {
	Businesses(ctx context.Context, city string) ([]Business, error)
	Business(ctx context.Context, id string) (Business, error)
	Reviews(ctx context.Context, filter ReviewFilter) ([]Review, error)
	Checkins(ctx context.Context, businessIDs ...string) ([]Checkin, error)
	Users(ctx context.Context, ids ...string) ([]User, error)
}

// Snapshot is an immutable, indexed set of entities.
type Snapshot struct {
	businesses []Business
	reviews    []Review
	checkins   []Checkin
	users      []User

	businessByID       map[string]int
	businessesByCity   map[string][]int
	reviewsByBusiness  map[string][]int
	reviewsByUser      map[string][]int
	checkinsByBusiness map[string][]int
	userByID           map[string]int
}

var _ Reader = (*Snapshot)(nil)

// NewSnapshot indexes the given entities and derives each user's
// AverageStars from their reviews. The slices are owned by the snapshot
// afterwards and must not be modified by the caller.
func NewSnapshot(businesses []Business, reviews []Review, checkins []Checkin, users []User) *Snapshot {
	s := &Snapshot{
		businesses:         businesses,
		reviews:            reviews,
		checkins:           checkins,
		users:              users,
		businessByID:       make(map[string]int, len(businesses)),
		businessesByCity:   make(map[string][]int),
		reviewsByBusiness:  make(map[string][]int),
		reviewsByUser:      make(map[string][]int),
		checkinsByBusiness: make(map[string][]int),
		userByID:           make(map[string]int, len(users)),
	}

	for i, b := range businesses {
		s.businessByID[b.ID] = i
		s.businessesByCity[b.City] = append(s.businessesByCity[b.City], i)
	}
	for i, r := range reviews {
		s.reviewsByBusiness[r.BusinessID] = append(s.reviewsByBusiness[r.BusinessID], i)
		s.reviewsByUser[r.UserID] = append(s.reviewsByUser[r.UserID], i)
	}
	for i, c := range checkins {
		s.checkinsByBusiness[c.BusinessID] = append(s.checkinsByBusiness[c.BusinessID], i)
	}
	for i := range users {
		s.userByID[users[i].ID] = i
		idx := s.reviewsByUser[users[i].ID]
		if len(idx) == 0 {
			continue
		}
		var total int
		for _, j := range idx {
			total += reviews[j].Stars
		}
		users[i].AverageStars = float64(total) / float64(len(idx))
	}
	return s
}

// Counts reports the number of entities per set.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		"businesses": len(s.businesses),
		"reviews":    len(s.reviews),
		"checkins":   len(s.checkins),
		"users":      len(s.users),
	}
}

// Businesses returns businesses in city, or all when city is empty.
func (s *Snapshot) Businesses(ctx context.Context, city string) ([]Business, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if city == "" {
		return slices.Clone(s.businesses), nil
	}
	return pick(s.businesses, s.businessesByCity[city]), nil
}

// Business returns one business by id.
func (s *Snapshot) Business(ctx context.Context, id string) (Business, error) {
	if err := ctx.Err(); err != nil {
		return Business{}, err
	}
	i, ok := s.businessByID[id]
	if !ok {
		return Business{}, ErrNotFound
	}
	return s.businesses[i], nil
}

// Reviews returns reviews matching filter in source order.
func (s *Snapshot) Reviews(ctx context.Context, filter ReviewFilter) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filter.empty() {
		return slices.Clone(s.reviews), nil
	}

	var idx []int
	if ids := filter.businessIDs(); len(ids) > 0 {
		idx = s.union(s.reviewsByBusiness, ids)
		if filter.UserID != "" {
			idx = slices.DeleteFunc(idx, func(i int) bool { return s.reviews[i].UserID != filter.UserID })
		}
	} else {
		idx = s.reviewsByUser[filter.UserID]
	}
	return pick(s.reviews, idx), nil
}

// Checkins returns checkin records of the given businesses, or all.
func (s *Snapshot) Checkins(ctx context.Context, businessIDs ...string) ([]Checkin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(businessIDs) == 0 {
		return slices.Clone(s.checkins), nil
	}
	return pick(s.checkins, s.union(s.checkinsByBusiness, businessIDs)), nil
}

// Users returns the users with the given ids, or all. Unknown ids are
// skipped.
func (s *Snapshot) Users(ctx context.Context, ids ...string) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return slices.Clone(s.users), nil
	}
	idx := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if i, ok := s.userByID[id]; ok && !seen[i] {
			seen[i] = true
			idx = append(idx, i)
		}
	}
	slices.Sort(idx)
	return pick(s.users, idx), nil
}

// union merges the index lists of keys, deduplicated, in source order.
func (s *Snapshot) union(index map[string][]int, keys []string) []int {
	if len(keys) == 1 {
		return slices.Clone(index[keys[0]])
	}
	seen := make(map[string]bool, len(keys))
	var out []int
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, index[k]...)
	}
	slices.Sort(out)
	return out
}

func pick[T any](items []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
