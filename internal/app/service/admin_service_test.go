package service

import (
	"context"
	"testing"
	"time"

	"andromeda/internal/common"
	"andromeda/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdminService(repo *fakeUserRepo, mailer *fakeMailer) *AdminService {
	return NewAdminService(repo, mailer)
}

func seedPendingUser(t *testing.T, repo *fakeUserRepo, email, username string) *model.User {
	t.Helper()
	user := &model.User{
		ID:             "pending-" + username,
		Email:          email,
		Username:       username,
		HashedPassword: "hash",
		Role:           model.RolePending,
		IsActive:       true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestApproveAssignsRoleAndSendsWelcome(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newTestAdminService(repo, mailer)
	user := seedPendingUser(t, repo, "dana@example.org", "dana")

	resp, err := svc.Approve(context.Background(), ApproveUserRequest{
		UserID: user.ID,
		Role:   "teacher",
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, resp.Role)
	assert.True(t, resp.IsApproved)

	stored := repo.stored(user.ID)
	assert.Equal(t, model.RoleTeacher, stored.Role)
	assert.True(t, stored.IsApproved)
	assert.True(t, stored.IsActive)
	require.NotNil(t, stored.ApprovedByID)
	assert.Equal(t, "admin-1", *stored.ApprovedByID)
	require.NotNil(t, stored.RegisteredDate)

	sent := mailer.all()
	require.Len(t, sent, 1)
	assert.Equal(t, MailTypeWelcome, sent[0].kind)
	assert.Equal(t, "dana@example.org", sent[0].recipient)
}

func TestApproveRejectsInvalidRoles(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo, &fakeMailer{})
	user := seedPendingUser(t, repo, "dana@example.org", "dana")

	for _, role := range []string{"pending", "superuser", "principal", ""} {
		_, err := svc.Approve(context.Background(), ApproveUserRequest{UserID: user.ID, Role: role}, "admin-1")
		assert.ErrorIs(t, err, common.ErrBadRequest, "role %q must not be assignable", role)
	}
}

func TestApproveUnknownUser(t *testing.T) {
	t.Parallel()
	svc := newTestAdminService(newFakeUserRepo(), &fakeMailer{})

	_, err := svc.Approve(context.Background(), ApproveUserRequest{UserID: "missing", Role: "teacher"}, "admin-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestApproveClearsPriorRejection(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo, &fakeMailer{})
	user := seedPendingUser(t, repo, "dana@example.org", "dana")

	_, err := svc.Reject(context.Background(), RejectUserRequest{UserID: user.ID, RejectionReason: "unverified"}, "admin-1")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), ApproveUserRequest{UserID: user.ID, Role: "paraeducator"}, "admin-2")
	require.NoError(t, err)

	stored := repo.stored(user.ID)
	assert.True(t, stored.IsApproved)
	assert.False(t, stored.IsRejected)
	assert.Nil(t, stored.RejectedAt)
	assert.Nil(t, stored.RejectionReason)
}

func TestRejectDeactivatesAccount(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newTestAdminService(repo, mailer)
	user := seedPendingUser(t, repo, "dana@example.org", "dana")

	resp, err := svc.Reject(context.Background(), RejectUserRequest{
		UserID:          user.ID,
		RejectionReason: "could not verify employment",
	}, "admin-1")
	require.NoError(t, err)
	assert.True(t, resp.IsRejected)

	stored := repo.stored(user.ID)
	assert.True(t, stored.IsRejected)
	assert.False(t, stored.IsActive)
	assert.False(t, stored.IsApproved)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "could not verify employment", *stored.RejectionReason)

	// Rejection sends nothing.
	assert.Empty(t, mailer.all())
}

func TestPendingUsersExcludesDecidedAccounts(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo, &fakeMailer{})

	pending := seedPendingUser(t, repo, "a@example.org", "a")
	approved := seedPendingUser(t, repo, "b@example.org", "b")
	rejected := seedPendingUser(t, repo, "c@example.org", "c")

	_, err := svc.Approve(context.Background(), ApproveUserRequest{UserID: approved.ID, Role: "teacher"}, "admin-1")
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), RejectUserRequest{UserID: rejected.ID, RejectionReason: "no"}, "admin-1")
	require.NoError(t, err)

	users, err := svc.PendingUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, pending.ID, users[0].ID)
	assert.Empty(t, users[0].HashedPassword)
}

func TestRecentlyApprovedWindow(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo, &fakeMailer{})

	recent := seedPendingUser(t, repo, "recent@example.org", "recent")
	old := seedPendingUser(t, repo, "old@example.org", "old")

	require.NoError(t, repo.Approve(context.Background(), recent.ID, model.RoleTeacher, "admin-1", nil, time.Now().UTC().AddDate(0, 0, -1)))
	require.NoError(t, repo.Approve(context.Background(), old.ID, model.RoleTeacher, "admin-1", nil, time.Now().UTC().AddDate(0, 0, -30)))

	users, err := svc.RecentlyApproved(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, recent.ID, users[0].ID)
}

func TestCreateEducatorIsPreApproved(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo, &fakeMailer{})

	user, err := svc.CreateEducator(context.Background(), CreateEducatorRequest{
		Email:    "para@example.org",
		Username: "para",
		Password: testPassword,
		Role:     "paraeducator",
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, model.RoleParaeducator, user.Role)
	assert.True(t, user.IsApproved)
	require.NotNil(t, user.ApprovedByID)
	assert.Equal(t, "admin-1", *user.ApprovedByID)
	require.NotNil(t, user.RegisteredDate)
	assert.Empty(t, user.HashedPassword)
}

func TestCreateEducatorValidation(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo, &fakeMailer{})
	seedPendingUser(t, repo, "taken@example.org", "taken")

	tests := []struct {
		name    string
		req     CreateEducatorRequest
		wantErr error
	}{
		{
			name:    "pending role not allowed",
			req:     CreateEducatorRequest{Email: "x@example.org", Username: "x", Password: testPassword, Role: "pending"},
			wantErr: common.ErrBadRequest,
		},
		{
			name:    "superuser role not allowed",
			req:     CreateEducatorRequest{Email: "x@example.org", Username: "x", Password: testPassword, Role: "superuser"},
			wantErr: common.ErrBadRequest,
		},
		{
			name:    "weak password",
			req:     CreateEducatorRequest{Email: "x@example.org", Username: "x", Password: "weak", Role: "teacher"},
			wantErr: common.ErrValidation,
		},
		{
			name:    "duplicate email",
			req:     CreateEducatorRequest{Email: "taken@example.org", Username: "x", Password: testPassword, Role: "teacher"},
			wantErr: common.ErrConflict,
		},
		{
			name:    "duplicate username",
			req:     CreateEducatorRequest{Email: "x@example.org", Username: "taken", Password: testPassword, Role: "teacher"},
			wantErr: common.ErrConflict,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateEducator(context.Background(), tt.req, "admin-1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateEducator(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo, &fakeMailer{})

	user, err := svc.CreateEducator(context.Background(), CreateEducatorRequest{
		Email:    "teach@example.org",
		Username: "teach",
		Password: testPassword,
		Role:     "teacher",
	}, "admin-1")
	require.NoError(t, err)

	newEmail := "teach2@example.org"
	newRole := "admin"
	desired := "Mr. T"
	updated, err := svc.UpdateEducator(context.Background(), user.ID, UpdateEducatorRequest{
		Email:       &newEmail,
		Role:        &newRole,
		DesiredName: &desired,
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, newEmail, updated.Email)
	assert.Equal(t, model.RoleAdmin, updated.Role)
	require.NotNil(t, updated.DesiredName)
	assert.Equal(t, "Mr. T", *updated.DesiredName)
	// Untouched fields survive.
	assert.Equal(t, "teach", updated.Username)
}

func TestUpdateEducatorDuplicateEmail(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo, &fakeMailer{})
	seedPendingUser(t, repo, "taken@example.org", "taken")

	user, err := svc.CreateEducator(context.Background(), CreateEducatorRequest{
		Email:    "teach@example.org",
		Username: "teach",
		Password: testPassword,
		Role:     "teacher",
	}, "admin-1")
	require.NoError(t, err)

	taken := "taken@example.org"
	_, err = svc.UpdateEducator(context.Background(), user.ID, UpdateEducatorRequest{Email: &taken}, "admin-1")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestDeleteEducator(t *testing.T) {
	t.Parallel()
	repo := newFakeUserRepo()
	svc := newTestAdminService(repo, &fakeMailer{})
	user := seedPendingUser(t, repo, "dana@example.org", "dana")

	require.NoError(t, svc.DeleteEducator(context.Background(), user.ID, "admin-1"))
	assert.Nil(t, repo.stored(user.ID))

	err := svc.DeleteEducator(context.Background(), user.ID, "admin-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
