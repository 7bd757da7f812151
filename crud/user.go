package crud

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// UserService manages Users. It also owns credential verification: password
// hashing on the way in, bcrypt comparison on login. Session state itself
// lives in the session package. It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	pepper      string
	handleRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, pepper string) *UserService {
	return &UserService{
		userValidator{
			pepper:      pepper,
			handleRegex: regexp.MustCompile(`^[a-z0-9_]{3,30}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted handle and password for existence and
// correctness. An unknown handle and a wrong password answer with the exact
// same error, so the endpoint cannot be used to enumerate handles.
func (uv *userValidator) Authenticate(ctx context.Context, handle, password string) (*domain.User, error) {
	badCredentials := errs.Errorf(errs.EUNAUTHORIZED, "The handle or password is incorrect.")

	found, err := uv.userGorm.ByHandle(ctx, normalizeHandle(handle))
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, badCredentials
		}
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password+uv.pepper))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return nil, badCredentials
		}
		return nil, err
	}
	return found, nil
}

// Create runs validations needed for creating new User database records.
func (uv *userValidator) Create(ctx context.Context, user *domain.User) error {
	err := runUserValFns(ctx, user,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.handleNormalize,
		uv.handleRequired,
		uv.handleFormat,
		uv.handleIsAvail,
		uv.nicknameRequired)
	if err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, user)
}

// Update runs validations needed for updating a User record in the database.
// The password chain only acts when a new plaintext password is provided.
func (uv *userValidator) Update(ctx context.Context, user *domain.User) error {
	err := runUserValFns(ctx, user,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.handleNormalize,
		uv.handleRequired,
		uv.handleFormat,
		uv.handleIsAvail,
		uv.nicknameRequired)
	if err != nil {
		return err
	}
	return uv.userGorm.Update(ctx, user)
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(ctx context.Context, user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(ctx context.Context, user *domain.User) error

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// handleNormalize converts the handle to all lowercase and trims its whitespaces.
func (uv *userValidator) handleNormalize(_ context.Context, user *domain.User) error {
	user.Handle = normalizeHandle(user.Handle)
	return nil
}

// handleRequired makes sure that the handle is not the empty string.
func (uv *userValidator) handleRequired(_ context.Context, user *domain.User) error {
	if user.Handle == "" {
		return errs.Errorf(errs.EINVALID, "A handle is required.")
	}
	return nil
}

// handleFormat makes sure that a provided handle matches a predefined regex pattern.
func (uv *userValidator) handleFormat(_ context.Context, user *domain.User) error {
	if !uv.handleRegex.MatchString(user.Handle) {
		return errs.Errorf(errs.EINVALID, "The handle must be 3-30 characters: lowercase letters, digits, underscores.")
	}
	return nil
}

// handleIsAvail makes sure that a provided handle is not yet taken.
func (uv *userValidator) handleIsAvail(ctx context.Context, user *domain.User) error {
	existing, err := uv.userGorm.ByHandle(ctx, user.Handle)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		// Handle is not taken.
		return nil
	}
	if err != nil {
		return err
	}
	if user.ID != existing.ID {
		return errs.Errorf(errs.ECONFLICT, "This handle is already taken.")
	}
	return nil
}

// nicknameRequired makes sure that the nickname is not the empty string.
func (uv *userValidator) nicknameRequired(_ context.Context, user *domain.User) error {
	if strings.TrimSpace(user.Nickname) == "" {
		return errs.Errorf(errs.EINVALID, "A nickname is required.")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(_ context.Context, user *domain.User) error {
	if user.Password == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// passwordMinLength makes sure that the user's password is at least 8 characters long.
func (uv *userValidator) passwordMinLength(_ context.Context, user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < 8 {
		return errs.Errorf(errs.EINVALID, "The password must have at least 8 characters.")
	}
	return nil
}

// passwordBcrypt hashes a user's password with a predefined pepper.
// It then clears the plaintext on the user object in memory.
func (uv *userValidator) passwordBcrypt(_ context.Context, user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(user.Password+uv.pepper), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

// passwordHashRequired makes sure that the user's password hash is not the empty string.
func (uv *userValidator) passwordHashRequired(_ context.Context, user *domain.User) error {
	if user.PasswordHash == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// ByHandle retrieves a User database record by handle.
func (ug *userGorm) ByHandle(ctx context.Context, handle string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "handle = ?", handle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Create(user).Error
}

// Update saves changes to an existing user record in the database.
func (ug *userGorm) Update(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Save(user).Error
}

// CountPosts counts all posts authored by the user, retweets included.
func (ug *userGorm) CountPosts(ctx context.Context, userID int) (int, error) {
	var count int64
	err := ug.db.WithContext(ctx).Model(&domain.Post{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

// CountFollowings counts the users that the given user follows.
func (ug *userGorm) CountFollowings(ctx context.Context, userID int) (int, error) {
	var count int64
	err := ug.db.WithContext(ctx).Model(&domain.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return int(count), err
}

// CountFollowers counts the users that follow the given user.
func (ug *userGorm) CountFollowers(ctx context.Context, userID int) (int, error) {
	var count int64
	err := ug.db.WithContext(ctx).Model(&domain.Follow{}).Where("followed_id = ?", userID).Count(&count).Error
	return int(count), err
}
