package export

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"clubscraper/internal/components/assert"
	"clubscraper/internal/components/chrono"
	"clubscraper/internal/scrapers/clubsma"
)

//go:embed schema.sql
var Schema string

var columns = []string{
	"run_id",
	"position",
	"name",
	"type",
	"address",
	"quarter",
	"city",
	"phone",
	"rating",
	"verified",
	"is_top_partner",
	"special_badge",
	"description",
	"image_url",
	"url",
	"activities",
	"has_contact_form",
	"offers_free_trial",
}

func insertQuery(dialect Dialect) string {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		switch dialect {
		case DialectPostgres:
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		default:
			placeholders[i] = "?"
		}
	}
	return fmt.Sprintf(
		"insert into clubs (%s) values (%s)",
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
}

// SQLStore appends every run to the clubs table, rows of a run share a
// run id and keep the order they were scraped in.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	time    chrono.API
}

func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, time chrono.API) (SQLStore, error) {
	assert.NotNil(db)
	assert.NotNil(time)

	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return SQLStore{}, fmt.Errorf("create schema: %w", err)
	}
	return SQLStore{
		db:      db,
		dialect: dialect,
		time:    time,
	}, nil
}

func (s SQLStore) Name() string {
	return "database"
}

func (s SQLStore) RunId() string {
	return s.time.Now().UTC().Format(time.RFC3339Nano)
}

func (s SQLStore) Write(ctx context.Context, listings []clubsma.Listing) (err error) {
	runId := s.RunId()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertQuery(s.dialect))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, l := range listings {
		activities := l.Activities
		if activities == nil {
			activities = []string{}
		}
		serialized, err := json.Marshal(activities)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(
			ctx,
			runId,
			i,
			l.Name,
			l.Type,
			l.Address,
			l.Quarter,
			l.City,
			l.Phone,
			l.Rating,
			l.Verified,
			l.IsTopPartner,
			l.SpecialBadge,
			l.Description,
			l.ImageUrl,
			l.Url,
			string(serialized),
			l.HasContactForm,
			l.OffersFreeTrial,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", l.Name, err)
		}
	}

	return tx.Commit()
}

// ReadRun returns the listings stored under a run id in scrape order.
func (s SQLStore) ReadRun(ctx context.Context, runId string) ([]clubsma.Listing, error) {
	query := "select name, type, address, quarter, city, phone, rating, verified, is_top_partner, special_badge, description, image_url, url, activities, has_contact_form, offers_free_trial from clubs where run_id = ? order by position"
	if s.dialect == DialectPostgres {
		query = strings.Replace(query, "?", "$1", 1)
	}

	rows, err := s.db.QueryContext(ctx, query, runId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []clubsma.Listing{}
	for rows.Next() {
		var l clubsma.Listing
		var activities string
		err := rows.Scan(
			&l.Name,
			&l.Type,
			&l.Address,
			&l.Quarter,
			&l.City,
			&l.Phone,
			&l.Rating,
			&l.Verified,
			&l.IsTopPartner,
			&l.SpecialBadge,
			&l.Description,
			&l.ImageUrl,
			&l.Url,
			&activities,
			&l.HasContactForm,
			&l.OffersFreeTrial,
		)
		if err != nil {
			return nil, err
		}
		err = json.Unmarshal([]byte(activities), &l.Activities)
		if err != nil {
			return nil, fmt.Errorf("parse activities of %s: %w", l.Name, err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
