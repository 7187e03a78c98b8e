// Package services – UserService
//
// This file implements account management: registration, credential checks,
// password change, profile reads, and the subscriptions listing. Passwords
// are stored as bcrypt hashes; uniqueness of email and username is enforced
// by the store and mapped onto stable service errors.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

// usernameRE restricts usernames to letters, digits, and @ . + - _ .
var usernameRE = regexp.MustCompile(`^[\w.@+-]+$`)

// emailRE is a pragmatic email shape check; deliverability is not verified.
var emailRE = regexp.MustCompile(`(?i)^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

const (
	maxEmailLen    = 254
	maxUsernameLen = 150
	minPasswordLen = 8
	maxPasswordLen = 128
)

// RegisterInput carries the fields for account creation.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// UserService provides account-level operations.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func validatePassword(pw string) error {
	n := utf8.RuneCountInString(pw)
	if n < minPasswordLen {
		return NewValidationError("password", "must be at least 8 characters")
	}
	if n > maxPasswordLen {
		return NewValidationError("password", "must be at most 128 characters")
	}
	return nil
}

// Register creates an account with a bcrypt-hashed password and returns its
// public view.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*UserView, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if email == "" || len(email) > maxEmailLen || !emailRE.MatchString(email) {
		return nil, NewValidationError("email", "must be a valid email address")
	}
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLen || !usernameRE.MatchString(username) {
		return nil, NewValidationError("username", "may contain only letters, digits and @/./+/-/_")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := repo.CreateUser(ctx, s.DB, email, username, in.FirstName, in.LastName, string(hash))
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			// Disambiguate which unique column collided.
			if _, lookupErr := repo.GetUserByEmail(ctx, s.DB, email); lookupErr == nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	v := toUserView(u, false)
	return &v, nil
}

// Authenticate checks email/password credentials and returns the matching
// account. Both an unknown email and a wrong password yield
// ErrInvalidCredentials so callers cannot probe for registered emails.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ChangePassword replaces the caller's password after verifying the current
// one.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return NewValidationError("current_password", "does not match")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return repo.UpdatePassword(ctx, s.DB, userID, string(hash))
}

// Profile returns a user's public view annotated with the viewer's
// subscription state.
func (s *UserService) Profile(ctx context.Context, viewerID, userID string) (*UserView, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	subscribed := false
	if viewerID != "" && viewerID != userID {
		if subscribed, err = repo.SubscriptionExists(ctx, s.DB, viewerID, userID); err != nil {
			return nil, err
		}
	}
	v := toUserView(u, subscribed)
	return &v, nil
}

// ListPage returns a page of accounts plus the total count, each annotated
// with the viewer's subscription state in one batched query.
func (s *UserService) ListPage(ctx context.Context, viewerID string, page, pageSize int) ([]UserView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountUsers(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []UserView{}, 0, nil
	}

	users, err := repo.ListUsersPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(users))
	for i := range users {
		ids = append(ids, users[i].ID)
	}
	subs, err := repo.SubscribedAuthorIDs(ctx, s.DB, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, toUserView(&users[i], subs[users[i].ID]))
	}
	return views, total, nil
}

// UserListStamp summarizes what a cached account list depends on for one
// viewer: the accounts table plus the viewer's subscription state, since the
// list body embeds is_subscribed per account.
type UserListStamp struct {
	Count     int64
	Latest    int64
	SubCount  int64
	SubLatest int64
}

// ListStamp computes the change-detection stamp behind the user list ETag.
// The subscription fields stay zero for anonymous viewers.
func (s *UserService) ListStamp(ctx context.Context, viewerID string) (UserListStamp, error) {
	var st UserListStamp
	count, maxTS, err := repo.UsersStats(ctx, s.DB)
	if err != nil {
		return st, err
	}
	st.Count = count
	if maxTS != nil {
		st.Latest = maxTS.UnixNano()
	}
	if viewerID == "" {
		return st, nil
	}
	if st.SubCount, st.SubLatest, err = repo.SubscriptionsStats(ctx, s.DB, viewerID); err != nil {
		return st, err
	}
	return st, nil
}

// Subscriptions returns a page of the authors the user follows, each with
// their recipe cards (optionally capped by recipesLimit) and total recipe
// count.
func (s *UserService) Subscriptions(ctx context.Context, userID string, page, pageSize, recipesLimit int) ([]AuthorView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountSubscribedAuthors(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []AuthorView{}, 0, nil
	}

	authors, err := repo.ListSubscribedAuthorsPage(ctx, s.DB, userID, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}

	views := make([]AuthorView, 0, len(authors))
	for i := range authors {
		a := &authors[i]
		recipes, err := repo.ListRecipesByAuthor(ctx, s.DB, a.ID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		count, err := repo.CountRecipesByAuthor(ctx, s.DB, a.ID)
		if err != nil {
			return nil, 0, err
		}
		cards := make([]RecipeCard, 0, len(recipes))
		for j := range recipes {
			cards = append(cards, toRecipeCard(&recipes[j]))
		}
		views = append(views, AuthorView{
			UserView:     toUserView(a, true),
			Recipes:      cards,
			RecipesCount: count,
		})
	}
	return views, total, nil
}
