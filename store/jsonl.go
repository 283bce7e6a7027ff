package store

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/spektr-org/bizlens/logging"
)

// ============================================================================
// JSON-LINES LOADER — Yelp academic dataset layout
// ============================================================================
// One JSON object per line. Each entity set lives in its own file; the
// loader accepts both the short name (business.json) and the dataset's
// long name (yelp_academic_dataset_business.json). Malformed lines are
// skipped and counted, never fatal.
// ============================================================================

var datasetFiles = map[string][]string{
	"business": {"business.json", "yelp_academic_dataset_business.json"},
	"review":   {"review.json", "yelp_academic_dataset_review.json"},
	"checkin":  {"checkin.json", "yelp_academic_dataset_checkin.json"},
	"user":     {"user.json", "yelp_academic_dataset_user.json"},
}

type businessLine struct {
	BusinessID  string            `json:"business_id"`
	Name        string            `json:"name"`
	Address     string            `json:"address"`
	City        string            `json:"city"`
	State       string            `json:"state"`
	PostalCode  string            `json:"postal_code"`
	Stars       float64           `json:"stars"`
	ReviewCount int               `json:"review_count"`
	IsOpen      int               `json:"is_open"`
	Categories  *string           `json:"categories"`
	Hours       map[string]string `json:"hours"`
}

type reviewLine struct {
	ReviewID   string  `json:"review_id"`
	UserID     string  `json:"user_id"`
	BusinessID string  `json:"business_id"`
	Stars      float64 `json:"stars"`
	Useful     int     `json:"useful"`
	Funny      int     `json:"funny"`
	Cool       int     `json:"cool"`
	Text       string  `json:"text"`
	Date       string  `json:"date"`
}

type userLine struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	ReviewCount int    `json:"review_count"`
}

// LoadJSONLines reads the four dataset files from dir into a Snapshot.
// The checkin and user files are optional; business and review are not.
func LoadJSONLines(ctx context.Context, dir string) (*Snapshot, error) {
	log := logging.Component("store")
	start := time.Now()

	var (
		businesses []Business
		reviews    []Review
		checkins   []Checkin
		users      []User
	)

	err := readDataset(ctx, dir, "business", true, func(b businessLine) error {
		businesses = append(businesses, b.toBusiness())
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readDataset(ctx, dir, "review", true, func(r reviewLine) error {
		review, err := r.toReview()
		if err != nil {
			return err
		}
		reviews = append(reviews, review)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readDataset(ctx, dir, "checkin", false, func(c Checkin) error {
		checkins = append(checkins, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readDataset(ctx, dir, "user", false, func(u userLine) error {
		users = append(users, User{ID: u.UserID, Name: u.Name, ReviewCount: u.ReviewCount})
		return nil
	})
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot(businesses, reviews, checkins, users)
	log.Info().
		Str("dir", dir).
		Int("businesses", len(businesses)).
		Int("reviews", len(reviews)).
		Int("checkins", len(checkins)).
		Int("users", len(users)).
		Dur("took", time.Since(start)).
		Msg("snapshot loaded")
	return snap, nil
}

func (b businessLine) toBusiness() Business {
	out := Business{
		ID:          b.BusinessID,
		Name:        b.Name,
		City:        b.City,
		State:       b.State,
		Address:     b.Address,
		PostalCode:  b.PostalCode,
		Stars:       b.Stars,
		ReviewCount: b.ReviewCount,
		IsOpen:      b.IsOpen == 1,
		Hours:       b.Hours,
	}
	if b.Categories != nil {
		out.Categories = *b.Categories
	}
	return out
}

func (r reviewLine) toReview() (Review, error) {
	date, err := time.Parse(TimestampLayout, r.Date)
	if err != nil {
		return Review{}, fmt.Errorf("review %s: bad date %q: %w", r.ReviewID, r.Date, err)
	}
	return Review{
		ID:         r.ReviewID,
		BusinessID: r.BusinessID,
		UserID:     r.UserID,
		Stars:      int(math.Round(r.Stars)),
		Useful:     r.Useful,
		Funny:      r.Funny,
		Cool:       r.Cool,
		Text:       r.Text,
		Date:       date,
	}, nil
}

func readDataset[T any](ctx context.Context, dir, name string, required bool, fn func(T) error) error {
	path := ""
	for _, candidate := range datasetFiles[name] {
		p := filepath.Join(dir, candidate)
		if _, err := os.Stat(p); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		if required {
			return fmt.Errorf("store: no %s file in %s", name, dir)
		}
		log := logging.Component("store")
		log.Warn().Str("dataset", name).Str("dir", dir).Msg("optional dataset missing")
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", path, err)
	}
	defer f.Close()

	skipped, err := DecodeLines(ctx, f, fn)
	if err != nil {
		return fmt.Errorf("store: read %s: %w", path, err)
	}
	if skipped > 0 {
		log := logging.Component("store")
		log.Warn().Str("file", path).Int("skipped", skipped).Msg("malformed lines skipped")
	}
	return nil
}

// DecodeLines decodes one T per non-blank line of r and hands it to fn.
// Lines that fail to decode, or that fn rejects, are skipped; the count
// of skipped lines is returned. Only read errors and context
// cancellation abort.
func DecodeLines[T any](ctx context.Context, r io.Reader, fn func(T) error) (int, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	skipped := 0
	for n := 0; ; n++ {
		if n%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return skipped, err
			}
		}

		line, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var v T
			if derr := json.Unmarshal(line, &v); derr != nil || fn(v) != nil {
				skipped++
			}
		}
		if errors.Is(err, io.EOF) {
			return skipped, nil
		}
		if err != nil {
			return skipped, err
		}
	}
}
