package store

import (
	"strings"
	"time"

	appErrors "github.com/unireg/registrar-api/pkg/errors"

	"github.com/unireg/registrar-api/internal/models"
)

// AddUser assigns the next user id and stores the account. Emails are
// unique, compared case-insensitively.
func (st *State) AddUser(user models.User) (*models.User, error) {
	key := strings.ToLower(user.Email)
	if _, exists := st.usersByEmail[key]; exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email "+user.Email+" is already registered")
	}
	user.ID = st.nextUserID
	st.nextUserID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	stored := user
	st.users[stored.ID] = &stored
	st.usersByEmail[key] = stored.ID
	st.userOrder = append(st.userOrder, stored.ID)
	return &stored, nil
}

// UserByEmail looks up a user by email, case-insensitively.
func (st *State) UserByEmail(email string) (*models.User, bool) {
	id, ok := st.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, false
	}
	return st.users[id], true
}

// UserByID looks up a user.
func (st *State) UserByID(id int64) (*models.User, bool) {
	user, ok := st.users[id]
	return user, ok
}

// Users returns accounts in creation order.
func (st *State) Users() []models.User {
	out := make([]models.User, 0, len(st.userOrder))
	for _, id := range st.userOrder {
		out = append(out, *st.users[id])
	}
	return out
}

// RemoveUser deletes an account.
func (st *State) RemoveUser(id int64) error {
	user, ok := st.users[id]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	delete(st.users, id)
	delete(st.usersByEmail, strings.ToLower(user.Email))
	for i, uid := range st.userOrder {
		if uid == id {
			st.userOrder = append(st.userOrder[:i], st.userOrder[i+1:]...)
			break
		}
	}
	return nil
}

// PutRefreshToken stores a refresh token.
func (st *State) PutRefreshToken(token models.RefreshToken) {
	stored := token
	st.refreshTokens[stored.Token] = &stored
}

// RefreshTokenByValue looks up a refresh token by its opaque value.
func (st *State) RefreshTokenByValue(value string) (*models.RefreshToken, bool) {
	token, ok := st.refreshTokens[value]
	return token, ok
}

// RevokeUserRefreshTokens revokes every token held by the user.
func (st *State) RevokeUserRefreshTokens(userID int64) {
	for _, token := range st.refreshTokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
}

// Policy returns the active registration policy.
func (st *State) Policy() models.RegistrationPolicy {
	return st.policy
}

// SetPolicy replaces the registration policy.
func (st *State) SetPolicy(policy models.RegistrationPolicy) {
	st.policy = policy
}

// SetTermOpen records whether registration is open for a semester label.
func (st *State) SetTermOpen(name string, open bool) {
	if term, ok := st.terms[name]; ok {
		term.RegistrationOpen = open
		return
	}
	st.terms[name] = &models.Term{Name: name, RegistrationOpen: open}
}

// TermOpen reports whether registration is open for the semester label.
// Terms an administrator has never touched default to open.
func (st *State) TermOpen(name string) bool {
	if term, ok := st.terms[name]; ok {
		return term.RegistrationOpen
	}
	return true
}

// Terms returns the explicitly configured terms.
func (st *State) Terms() []models.Term {
	out := make([]models.Term, 0, len(st.terms))
	for _, term := range st.terms {
		out = append(out, *term)
	}
	return out
}
