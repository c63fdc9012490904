package service

import (
	"errors"
	"strconv"

	"github.com/noah-isme/scholarship-api/internal/auth"
)

var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrScholarNotFound indicates the referenced scholar profile does not exist.
	ErrScholarNotFound = errors.New("scholar not found")
	// ErrScholarConflict indicates the username or email is already registered.
	ErrScholarConflict = errors.New("username or email already exists")
	// ErrActivityNotFound indicates the referenced activity does not exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrActivityAlreadyReviewed indicates a second review was refused.
	ErrActivityAlreadyReviewed = errors.New("activity already reviewed")
	// ErrInvalidReviewDecision indicates a decision other than approved or rejected.
	ErrInvalidReviewDecision = errors.New("invalid review decision")
	// ErrReviewForbidden indicates the caller may not review activities.
	ErrReviewForbidden = errors.New("only administrators can review activities")
	// ErrCategoryNotFound indicates the referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryConflict indicates a category with the same name exists.
	ErrCategoryConflict = errors.New("category already exists")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken indicates the refresh token was rejected.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// FieldError reports one invalid request field that struct tags cannot express.
type FieldError struct {
	Field string
	Rule  string
}

func (e FieldError) Error() string {
	return e.Field + " failed " + e.Rule
}

// checkPasswordBytes enforces the bcrypt input limit, which validator's max
// tag cannot since it counts runes.
func checkPasswordBytes(field, password string) error {
	if len(password) > auth.MaxPasswordBytes {
		return FieldError{Field: field, Rule: "max_bytes=" + strconv.Itoa(auth.MaxPasswordBytes)}
	}
	return nil
}
