package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"routineTrackerAPI/internal/apperr"
	"routineTrackerAPI/internal/user"
)

const tokenTTL = time.Hour

type AuthService struct {
	db        DB
	jwtSecret []byte
	saltRound int
}

func NewAuthService(db DB, jwtSecret string, saltRound int) *AuthService {
	if saltRound <= 0 {
		saltRound = bcrypt.DefaultCost
	}
	return &AuthService{db: db, jwtSecret: []byte(jwtSecret), saltRound: saltRound}
}

func (s *AuthService) Signup(ctx context.Context, req *user.SignupRequest) (*user.AuthResponse, error) {
	if req.Email == "" || req.Password == "" || req.Nickname == "" {
		return nil, fmt.Errorf("%w: email, password and nickname are required", apperr.ErrBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.saltRound)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{Email: req.Email, Nickname: req.Nickname}
	err = s.db.QueryRow(ctx, `
	INSERT INTO users (email, nickname, password)
	VALUES ($1, $2, $3)
	RETURNING id, created_at
	`, req.Email, req.Nickname, string(hashed)).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.createToken(u)
	if err != nil {
		return nil, err
	}

	return &user.AuthResponse{User: u, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperr.ErrBadRequest)
	}

	u := &user.User{}
	err := s.db.QueryRow(ctx, `
	SELECT id, email, nickname, password, created_at
	FROM users
	WHERE email = $1
	`, req.Email).Scan(&u.ID, &u.Email, &u.Nickname, &u.Password, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Same answer as a wrong password so emails cannot be probed.
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	token, err := s.createToken(u)
	if err != nil {
		return nil, err
	}

	u.Password = ""
	return &user.AuthResponse{User: u, Token: token}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID int64) (*user.User, error) {
	u := &user.User{}
	err := s.db.QueryRow(ctx, `
	SELECT id, email, nickname, created_at
	FROM users
	WHERE id = $1
	`, userID).Scan(&u.ID, &u.Email, &u.Nickname, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *AuthService) createToken(u *user.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
