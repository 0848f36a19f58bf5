package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"scribble/internal/models"
	"scribble/internal/observability"
	"scribble/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the backend account directory.
type UserRepository interface {
	Create(ctx context.Context, username, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

var errBadCredentials = models.NewUnauthenticatedError("invalid username or password")

func newUser(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewValidationError("username is required")
	}
	email = strings.TrimSpace(email)
	for _, err := range []error{
		validation.ValidateUsername(username),
		validation.ValidateEmail(email),
		validation.ValidatePassword(password),
	} {
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func checkPassword(user *models.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return errBadCredentials
	}
	return nil
}

func usernameTaken(username string) error {
	return models.NewValidationError(fmt.Sprintf("username %q is already taken", username))
}

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewMemoryUserRepository returns an empty in-process user directory.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: map[string]models.User{}}
}

func (r *memoryUserRepository) Create(_ context.Context, username, email, password string) (*models.User, error) {
	user, err := newUser(username, email, password)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, usernameTaken(user.Username)
	}
	r.users[user.Username] = *user
	return user, nil
}

func (r *memoryUserRepository) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	r.mu.RLock()
	user, ok := r.users[strings.TrimSpace(username)]
	r.mu.RUnlock()
	if !ok {
		return nil, errBadCredentials
	}
	if err := checkPassword(&user, password); err != nil {
		return nil, err
	}
	return &user, nil
}

const usersCollection = "users"

// mongoUserRepository keys users by username (_id).
type mongoUserRepository struct {
	coll   *mongo.Collection
	logger *observability.RepoLogger
}

// NewMongoUserRepository stores accounts in coll.
func NewMongoUserRepository(coll *mongo.Collection) UserRepository {
	return &mongoUserRepository{
		coll:   coll,
		logger: observability.NewRepoLogger(usersCollection),
	}
}

// UsersCollection returns the users collection of db.
func UsersCollection(db *mongo.Database) *mongo.Collection {
	return db.Collection(usersCollection)
}

func (r *mongoUserRepository) Create(ctx context.Context, username, email, password string) (_ *models.User, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, usersCollection, "Create")
	defer func() { observability.EndSpan(span, err) }()

	user, err := newUser(username, email, password)
	if err != nil {
		return nil, err
	}
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, usernameTaken(user.Username)
		}
		r.logger.LogError(ctx, err, "create")
		return nil, fmt.Errorf("insertion failed: %w", err)
	}
	r.logger.LogCreate(ctx, map[string]any{"username": user.Username})
	return user, nil
}

func (r *mongoUserRepository) Authenticate(ctx context.Context, username, password string) (_ *models.User, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, usersCollection, "Authenticate")
	defer func() { observability.EndSpan(span, err) }()

	var user models.User
	err = r.coll.FindOne(ctx, bson.M{"_id": strings.TrimSpace(username)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract user: %w", err)
	}
	if err := checkPassword(&user, password); err != nil {
		return nil, err
	}
	return &user, nil
}
