package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/spektr-org/bizlens/logging"
)

// ============================================================================
// RELATIONAL READER — yelp_* tables through gorm
// ============================================================================
// Table and column names match the dataset import:
//   yelp_business(business_id, name, address, city, state, postal_code,
//                 stars, review_count, is_open, categories, hours)
//   yelp_review(review_id, user_id, business_id, stars, useful, funny,
//               cool, text, date)
//   yelp_checkin(business_id, date)
//   yelp_user(user_id, name, review_count)
// ============================================================================

// inChunk bounds the size of IN (...) lists; Postgres caps bind
// parameters at 65535.
const inChunk = 10000

type businessModel struct {
	BusinessID  string  `gorm:"column:business_id;primaryKey"`
	Name        string  `gorm:"column:name"`
	Address     string  `gorm:"column:address"`
	City        string  `gorm:"column:city;index"`
	State       string  `gorm:"column:state"`
	PostalCode  string  `gorm:"column:postal_code"`
	Stars       float64 `gorm:"column:stars"`
	ReviewCount int     `gorm:"column:review_count"`
	IsOpen      int     `gorm:"column:is_open"`
	Categories  *string `gorm:"column:categories"`
	Hours       *string `gorm:"column:hours"`
}

func (businessModel) TableName() string { return "yelp_business" }

type reviewModel struct {
	ReviewID   string    `gorm:"column:review_id;primaryKey"`
	UserID     string    `gorm:"column:user_id;index"`
	BusinessID string    `gorm:"column:business_id;index"`
	Stars      float64   `gorm:"column:stars"`
	Useful     int       `gorm:"column:useful"`
	Funny      int       `gorm:"column:funny"`
	Cool       int       `gorm:"column:cool"`
	Text       string    `gorm:"column:text"`
	Date       time.Time `gorm:"column:date"`
}

func (reviewModel) TableName() string { return "yelp_review" }

type checkinModel struct {
	BusinessID string `gorm:"column:business_id;index"`
	Date       string `gorm:"column:date"`
}

func (checkinModel) TableName() string { return "yelp_checkin" }

type userModel struct {
	UserID      string `gorm:"column:user_id;primaryKey"`
	Name        string `gorm:"column:name"`
	ReviewCount int    `gorm:"column:review_count"`
}

func (userModel) TableName() string { return "yelp_user" }

// DB implements Reader on top of a gorm connection.
type DB struct {
	db *gorm.DB
}

var _ Reader = (*DB)(nil)

// Open connects to a postgres or sqlite database.
func Open(driver, dsn string) (*DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	zl := logging.Component("gorm")
	gl := gormlogger.New(&zl, gormlogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	return &DB{db: db}, nil
}

// NewDB wraps an existing gorm connection.
func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates the yelp_* tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	return d.db.WithContext(ctx).AutoMigrate(&businessModel{}, &reviewModel{}, &checkinModel{}, &userModel{})
}

// Import writes every entity of snap into the database in batches.
func (d *DB) Import(ctx context.Context, snap *Snapshot) error {
	const batch = 500
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(snap.businesses) > 0 {
			rows := make([]businessModel, 0, len(snap.businesses))
			for _, b := range snap.businesses {
				m, err := fromBusiness(b)
				if err != nil {
					return err
				}
				rows = append(rows, m)
			}
			if err := tx.CreateInBatches(rows, batch).Error; err != nil {
				return fmt.Errorf("store: import businesses: %w", err)
			}
		}
		if len(snap.reviews) > 0 {
			rows := make([]reviewModel, 0, len(snap.reviews))
			for _, r := range snap.reviews {
				rows = append(rows, reviewModel{
					ReviewID: r.ID, UserID: r.UserID, BusinessID: r.BusinessID,
					Stars: float64(r.Stars), Useful: r.Useful, Funny: r.Funny, Cool: r.Cool,
					Text: r.Text, Date: r.Date,
				})
			}
			if err := tx.CreateInBatches(rows, batch).Error; err != nil {
				return fmt.Errorf("store: import reviews: %w", err)
			}
		}
		if len(snap.checkins) > 0 {
			rows := make([]checkinModel, 0, len(snap.checkins))
			for _, c := range snap.checkins {
				rows = append(rows, checkinModel{BusinessID: c.BusinessID, Date: c.Date})
			}
			if err := tx.CreateInBatches(rows, batch).Error; err != nil {
				return fmt.Errorf("store: import checkins: %w", err)
			}
		}
		if len(snap.users) > 0 {
			rows := make([]userModel, 0, len(snap.users))
			for _, u := range snap.users {
				rows = append(rows, userModel{UserID: u.ID, Name: u.Name, ReviewCount: u.ReviewCount})
			}
			if err := tx.CreateInBatches(rows, batch).Error; err != nil {
				return fmt.Errorf("store: import users: %w", err)
			}
		}
		return nil
	})
}

// Businesses implements Reader.
func (d *DB) Businesses(ctx context.Context, city string) ([]Business, error) {
	q := d.db.WithContext(ctx).Model(&businessModel{})
	if city != "" {
		q = q.Where("city = ?", city)
	}
	var rows []businessModel
	if err := q.Order("business_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: businesses: %w", err)
	}
	return toBusinesses(rows)
}

// Business implements Reader.
func (d *DB) Business(ctx context.Context, id string) (Business, error) {
	var row businessModel
	err := d.db.WithContext(ctx).Where("business_id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Business{}, ErrNotFound
	}
	if err != nil {
		return Business{}, fmt.Errorf("store: business %s: %w", id, err)
	}
	return row.toBusiness()
}

// Reviews implements Reader. Results are ordered by review_id.
func (d *DB) Reviews(ctx context.Context, filter ReviewFilter) ([]Review, error) {
	base := func() *gorm.DB {
		q := d.db.WithContext(ctx).Model(&reviewModel{})
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		return q
	}

	var rows []reviewModel
	ids := filter.businessIDs()
	if len(ids) == 0 {
		if err := base().Order("review_id").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("store: reviews: %w", err)
		}
	} else {
		for _, chunk := range chunks(dedupe(ids), inChunk) {
			var part []reviewModel
			if err := base().Where("business_id IN ?", chunk).Find(&part).Error; err != nil {
				return nil, fmt.Errorf("store: reviews: %w", err)
			}
			rows = append(rows, part...)
		}
		slices.SortFunc(rows, func(a, b reviewModel) int { return strings.Compare(a.ReviewID, b.ReviewID) })
	}

	out := make([]Review, len(rows))
	for i, r := range rows {
		out[i] = Review{
			ID: r.ReviewID, BusinessID: r.BusinessID, UserID: r.UserID,
			Stars: int(math.Round(r.Stars)), Useful: r.Useful, Funny: r.Funny, Cool: r.Cool,
			Text: r.Text, Date: r.Date,
		}
	}
	return out, nil
}

// Checkins implements Reader.
func (d *DB) Checkins(ctx context.Context, businessIDs ...string) ([]Checkin, error) {
	var rows []checkinModel
	if len(businessIDs) == 0 {
		if err := d.db.WithContext(ctx).Order("business_id").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("store: checkins: %w", err)
		}
	} else {
		for _, chunk := range chunks(dedupe(businessIDs), inChunk) {
			var part []checkinModel
			if err := d.db.WithContext(ctx).Where("business_id IN ?", chunk).Order("business_id").Find(&part).Error; err != nil {
				return nil, fmt.Errorf("store: checkins: %w", err)
			}
			rows = append(rows, part...)
		}
	}

	out := make([]Checkin, len(rows))
	for i, c := range rows {
		out[i] = Checkin{BusinessID: c.BusinessID, Date: c.Date}
	}
	return out, nil
}

type userStars struct {
	UserID       string
	AverageStars float64
}

// Users implements Reader. AverageStars is computed from yelp_review.
func (d *DB) Users(ctx context.Context, ids ...string) ([]User, error) {
	var rows []userModel
	var stars []userStars

	if len(ids) == 0 {
		if err := d.db.WithContext(ctx).Order("user_id").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("store: users: %w", err)
		}
		err := d.db.WithContext(ctx).Model(&reviewModel{}).
			Select("user_id, AVG(stars) AS average_stars").
			Group("user_id").Scan(&stars).Error
		if err != nil {
			return nil, fmt.Errorf("store: user stars: %w", err)
		}
	} else {
		for _, chunk := range chunks(dedupe(ids), inChunk) {
			var part []userModel
			if err := d.db.WithContext(ctx).Where("user_id IN ?", chunk).Find(&part).Error; err != nil {
				return nil, fmt.Errorf("store: users: %w", err)
			}
			rows = append(rows, part...)

			var partStars []userStars
			err := d.db.WithContext(ctx).Model(&reviewModel{}).
				Select("user_id, AVG(stars) AS average_stars").
				Where("user_id IN ?", chunk).
				Group("user_id").Scan(&partStars).Error
			if err != nil {
				return nil, fmt.Errorf("store: user stars: %w", err)
			}
			stars = append(stars, partStars...)
		}
		slices.SortFunc(rows, func(a, b userModel) int { return strings.Compare(a.UserID, b.UserID) })
	}

	avg := make(map[string]float64, len(stars))
	for _, s := range stars {
		avg[s.UserID] = s.AverageStars
	}
	out := make([]User, len(rows))
	for i, u := range rows {
		out[i] = User{ID: u.UserID, Name: u.Name, ReviewCount: u.ReviewCount, AverageStars: avg[u.UserID]}
	}
	return out, nil
}

// LoadSnapshot materializes every entity readable through r.
func LoadSnapshot(ctx context.Context, r Reader) (*Snapshot, error) {
	businesses, err := r.Businesses(ctx, "")
	if err != nil {
		return nil, err
	}
	reviews, err := r.Reviews(ctx, ReviewFilter{})
	if err != nil {
		return nil, err
	}
	checkins, err := r.Checkins(ctx)
	if err != nil {
		return nil, err
	}
	users, err := r.Users(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(businesses, reviews, checkins, users), nil
}

func (m businessModel) toBusiness() (Business, error) {
	b := Business{
		ID:          m.BusinessID,
		Name:        m.Name,
		City:        m.City,
		State:       m.State,
		Address:     m.Address,
		PostalCode:  m.PostalCode,
		Stars:       m.Stars,
		ReviewCount: m.ReviewCount,
		IsOpen:      m.IsOpen == 1,
	}
	if m.Categories != nil {
		b.Categories = *m.Categories
	}
	if m.Hours != nil && *m.Hours != "" && *m.Hours != "null" {
		// Non-object hours (e.g. a JSON string) mean "no structured hours".
		var hours map[string]string
		if err := json.Unmarshal([]byte(*m.Hours), &hours); err == nil {
			b.Hours = hours
		}
	}
	return b, nil
}

func toBusinesses(rows []businessModel) ([]Business, error) {
	out := make([]Business, 0, len(rows))
	for _, r := range rows {
		b, err := r.toBusiness()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func fromBusiness(b Business) (businessModel, error) {
	m := businessModel{
		BusinessID:  b.ID,
		Name:        b.Name,
		Address:     b.Address,
		City:        b.City,
		State:       b.State,
		PostalCode:  b.PostalCode,
		Stars:       b.Stars,
		ReviewCount: b.ReviewCount,
	}
	if b.IsOpen {
		m.IsOpen = 1
	}
	if b.Categories != "" {
		c := b.Categories
		m.Categories = &c
	}
	if b.Hours != nil {
		raw, err := json.Marshal(b.Hours)
		if err != nil {
			return businessModel{}, fmt.Errorf("store: encode hours of %s: %w", b.ID, err)
		}
		h := string(raw)
		m.Hours = &h
	}
	return m, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func chunks(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
