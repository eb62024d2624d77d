package service

import (
	"context"
	"sync"
	"time"

	"andromeda/internal/common"
	"andromeda/internal/domain/model"
)

// fakeUserRepo is an in-memory UserRepository. It clones on the way in and
// out so tests observe stored state, not shared pointers.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func clone(u *model.User) *model.User {
	c := *u
	return &c
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return common.ErrConflict
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = clone(user)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return clone(u), nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return clone(u), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByResetToken(_ context.Context, token string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token {
			return clone(u), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return common.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = clone(user)
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Approve(_ context.Context, id string, role model.Role, actorID string, notes *string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Role = role
	u.IsApproved = true
	u.IsActive = true
	u.ApprovedAt = &at
	u.ApprovedByID = &actorID
	u.ApprovalNotes = notes
	u.RegisteredDate = &at
	u.IsRejected = false
	u.RejectedAt = nil
	u.RejectedByID = nil
	u.RejectionReason = nil
	return nil
}

func (r *fakeUserRepo) Reject(_ context.Context, id string, actorID string, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.IsRejected = true
	u.IsActive = false
	u.IsApproved = false
	u.RejectedAt = &at
	u.RejectedByID = &actorID
	u.RejectionReason = &reason
	u.ApprovedAt = nil
	u.ApprovedByID = nil
	u.ApprovalNotes = nil
	return nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, id, token string, expires, requestedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordResetToken = &token
	u.PasswordResetExpires = &expires
	u.PasswordResetRequestedAt = &requestedAt
	return nil
}

func (r *fakeUserRepo) UpdatePasswordAndClearReset(_ context.Context, id, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.HashedPassword = hashedPassword
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	u.PasswordResetRequestedAt = nil
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.HashedPassword = hashedPassword
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) ListPending(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if !u.IsApproved && !u.IsRejected {
			out = append(out, *clone(u))
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListApprovedSince(_ context.Context, since time.Time) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if u.IsApproved && u.ApprovedAt != nil && u.ApprovedAt.After(since) {
			out = append(out, *clone(u))
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListApprovedByRoles(_ context.Context, roles ...model.Role) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if !u.IsApproved {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, *clone(u))
				break
			}
		}
	}
	return out, nil
}

// stored returns the raw stored record for assertions on persisted state.
func (r *fakeUserRepo) stored(id string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return clone(u)
	}
	return nil
}

type sentMail struct {
	kind        string
	recipient   string
	displayName string
	resetToken  string
}

// fakeMailer records outbound mail instead of queueing it.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, recipient, displayName, resetToken string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: MailTypePasswordReset, recipient: recipient, displayName: displayName, resetToken: resetToken})
	return nil
}

func (m *fakeMailer) SendWelcome(_ context.Context, recipient, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: MailTypeWelcome, recipient: recipient, displayName: displayName})
	return nil
}

func (m *fakeMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}
