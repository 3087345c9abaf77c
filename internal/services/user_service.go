package services

import (
	"context"
	"errors"
	"time"

	"chat-server/internal/db"
	"chat-server/internal/models"
	"chat-server/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists      = errors.New("username already exists")
	ErrInvalidUsername = errors.New("username may only contain letters, digits, dot and underscore (max 32)")
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if !models.ValidUsername(req.Username) {
		return nil, ErrInvalidUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user models.User
	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2) ON CONFLICT (username) DO NOTHING RETURNING username, avatar_url, created_at`
	err = db.Pool.QueryRow(ctx, query, req.Username, string(hash)).Scan(&user.Username, &user.AvatarURL, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// No row returned means the username was taken.
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var user models.User
	query := `SELECT username, password_hash FROM users WHERE username = $1`
	err := db.Pool.QueryRow(ctx, query, req.Username).Scan(&user.Username, &user.PasswordHash)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	token, err := GenerateJWT(user.Username)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: token, Username: user.Username}, nil
}

// EnsureUser creates the user row lazily if it does not exist yet and returns
// the current record. Identities registered over the event channel get a row
// even if they never went through /api/register.
func (s *UserService) EnsureUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := `INSERT INTO users (username) VALUES ($1) ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username RETURNING username, avatar_url`
	if err := db.Pool.QueryRow(ctx, query, username).Scan(&user.Username, &user.AvatarURL); err != nil {
		return nil, err
	}
	return &user, nil
}

// UsersByNames returns the user records for the given usernames. Unknown
// usernames are simply absent from the result.
func (s *UserService) UsersByNames(ctx context.Context, usernames []string) ([]models.User, error) {
	query := `SELECT username, avatar_url FROM users WHERE username = ANY($1) ORDER BY username ASC`
	rows, err := db.Pool.Query(ctx, query, usernames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Username, &u.AvatarURL); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserService) SetAvatar(ctx context.Context, username, avatarURL string) error {
	query := `INSERT INTO users (username, avatar_url) VALUES ($1, $2) ON CONFLICT (username) DO UPDATE SET avatar_url = EXCLUDED.avatar_url`
	_, err := db.Pool.Exec(ctx, query, username, avatarURL)
	return err
}

func GenerateJWT(username string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(utils.GetEnv("JWT_SECRET", "secret")))
}

func ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(utils.GetEnv("JWT_SECRET", "secret")), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
