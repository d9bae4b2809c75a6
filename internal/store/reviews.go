package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrInvalidRating is returned for ratings outside the 1-5 range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrCommentTooShort is returned for comments under the minimum length.
	ErrCommentTooShort = errors.New("comment is too short")
)

// anonymousAuthor is the label shown when a reviewer leaves the name blank.
const anonymousAuthor = "Anonym"

const minCommentLength = 5

// Review is a star rating with a comment left for an event.
type Review struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"eventId"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmitReview validates and stores a new review for an event.
func (s *Store) SubmitReview(ctx context.Context, eventID int64, author string, rating int, comment string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, ErrInvalidRating
	}

	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) < minCommentLength {
		return Review{}, ErrCommentTooShort
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = anonymousAuthor
	}

	var exists int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id
		FROM events
		WHERE id = $1
	`, eventID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, ErrEventNotFound
		}
		return Review{}, fmt.Errorf("lookup event: %w", err)
	}

	review := Review{
		EventID: eventID,
		Author:  author,
		Rating:  rating,
		Comment: comment,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO reviews (event_id, author, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, eventID, author, rating, comment).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return Review{}, fmt.Errorf("insert review: %w", err)
	}

	return review, nil
}

// ReviewsByEvent lists reviews for an event, newest first.
func (s *Store) ReviewsByEvent(ctx context.Context, eventID int64) ([]Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, author, rating, comment, created_at
		FROM reviews
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		if err := rows.Scan(&review.ID, &review.EventID, &review.Author, &review.Rating, &review.Comment, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

// AverageRating recomputes the mean rating for an event from the stored
// reviews, rounded to one decimal. It returns nil when no reviews exist.
func (s *Store) AverageRating(ctx context.Context, eventID int64) (*float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT AVG(rating)
		FROM reviews
		WHERE event_id = $1
	`, eventID).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("select average rating: %w", err)
	}

	if !avg.Valid {
		return nil, nil
	}

	rounded := math.Round(avg.Float64*10) / 10
	return &rounded, nil
}
