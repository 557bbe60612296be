package services

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"campusmarket/internal/models"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type UserService struct {
	db     *sql.DB
	wallet *WalletService
	logger zerolog.Logger
}

func NewUserService(db *sql.DB, wallet *WalletService, logger zerolog.Logger) *UserService {
	return &UserService{
		db:     db,
		wallet: wallet,
		logger: logger,
	}
}

// Register creates a user and bootstraps their wallet with the welcome
// bonus.
func (s *UserService) Register(req *models.RegisterRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return nil, fmt.Errorf("%w: email, password and full_name are required", ErrInvalidRequest)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidRequest)
	}

	var existingID string
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&existingID)
	if err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrInvalidRequest)
	} else if err != sql.ErrNoRows {
		s.logger.Error().Err(err).Msg("Error checking existing user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID := uuid.NewString()
	_, err = s.db.Exec(
		"INSERT INTO users (id, email, password_hash, full_name, phone, university_name) VALUES (?, ?, ?, ?, ?, ?)",
		userID, email, string(hashedPassword), req.FullName, req.Phone, req.UniversityName,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := s.wallet.CreateWallet(userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Error creating wallet for new user")
		return nil, err
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered successfully")
	return user, nil
}

func (s *UserService) Authenticate(req *models.LoginRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidRequest)
	}

	var user models.User
	var universityName sql.NullString

	err := s.db.QueryRow(
		"SELECT id, email, password_hash, full_name, phone, university_name, is_verified, created_at, updated_at FROM users WHERE email = ?",
		strings.ToLower(strings.TrimSpace(req.Email)),
	).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Phone,
		&universityName, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error querying user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		s.logger.Warn().Str("email", req.Email).Msg("Failed authentication attempt")
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	if universityName.Valid {
		user.UniversityName = universityName.String
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User authenticated successfully")
	return &user, nil
}

func (s *UserService) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	var universityName sql.NullString

	err := s.db.QueryRow(
		"SELECT id, email, password_hash, full_name, phone, university_name, is_verified, created_at, updated_at FROM users WHERE id = ?",
		userID,
	).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Phone,
		&universityName, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Error fetching user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	if universityName.Valid {
		user.UniversityName = universityName.String
	}

	return &user, nil
}
