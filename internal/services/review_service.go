package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"campusmarket/internal/models"
)

var validReviewTargets = map[string]bool{
	"product":    true,
	"service":    true,
	"restaurant": true,
}

type ReviewService struct {
	db      *sql.DB
	catalog *CatalogService
	logger  zerolog.Logger
}

func NewReviewService(db *sql.DB, catalog *CatalogService, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		db:      db,
		catalog: catalog,
		logger:  logger,
	}
}

// CreateReview records a review and folds it into the target's aggregate
// rating.
func (s *ReviewService) CreateReview(user *models.User, req *models.ReviewCreateRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidRequest)
	}
	targetType := strings.ToLower(req.TargetType)
	if req.TargetID == "" || !validReviewTargets[targetType] {
		return nil, fmt.Errorf("%w: target_id and a valid target_type are required", ErrInvalidRequest)
	}

	review := &models.Review{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		UserName:   user.FullName,
		TargetID:   req.TargetID,
		TargetType: targetType,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	_, err := s.db.Exec(
		"INSERT INTO reviews (id, user_id, user_name, target_id, target_type, rating, comment) VALUES (?, ?, ?, ?, ?, ?, ?)",
		review.ID, review.UserID, review.UserName, review.TargetID, review.TargetType, review.Rating, review.Comment,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating review")
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	var avg float64
	var total int
	err = s.db.QueryRow(
		"SELECT AVG(rating), COUNT(*) FROM reviews WHERE target_id = ? AND target_type = ?",
		review.TargetID, review.TargetType,
	).Scan(&avg, &total)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error aggregating reviews")
	} else if err := s.catalog.UpdateRating(review.TargetID, review.TargetType, avg, total); err != nil {
		s.logger.Error().Err(err).Str("target_id", review.TargetID).Msg("Error updating target rating")
	}

	s.logger.Info().Str("review_id", review.ID).Str("target_id", review.TargetID).Msg("Review created")
	return review, nil
}

func (s *ReviewService) ListReviews(targetID, targetType string) ([]*models.Review, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, user_name, target_id, target_type, rating, comment, created_at FROM reviews WHERE target_id = ? AND target_type = ? ORDER BY created_at DESC LIMIT 100",
		targetID, strings.ToLower(targetType),
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		var r models.Review
		err := rows.Scan(&r.ID, &r.UserID, &r.UserName, &r.TargetID, &r.TargetType, &r.Rating, &r.Comment, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning review: %w", err)
		}
		reviews = append(reviews, &r)
	}

	return reviews, rows.Err()
}
