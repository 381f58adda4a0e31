// internal/app/system/membership/membership.go
//
// The membership synchronizer keeps the denormalized members list embedded in
// a project document in lockstep with the per-user membership fields on user
// documents. Every operation is two sequential single-document writes with no
// transaction between them; a failure after the first write leaves the pair
// inconsistent, which is logged distinctly and surfaced to the caller rather
// than compensated.
package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskhubhq/deskhub/internal/app/system/metrics"
	"github.com/deskhubhq/deskhub/internal/app/system/normalize"
	"github.com/deskhubhq/deskhub/internal/app/system/status"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

var (
	ErrMemberNotFound   = errors.New("member not found in project")
	ErrPasswordRequired = errors.New("a temporary password is required for a new member")
)

// UserStore is the slice of the users store the synchronizer needs.
type UserStore interface {
	FindAllByEmail(ctx context.Context, email string) ([]models.User, error)
	Insert(ctx context.Context, u models.User) error
	Delete(ctx context.Context, id string) error

	// UpdateMembership sets role/user_type/project on the record and, when
	// addProjectID is non-empty, adds it to the record's project-id set
	// (set union, so repeated calls are idempotent).
	UpdateMembership(ctx context.Context, id, role, userType string, project *string, addProjectID string) error

	// RemoveProjectLink pulls projectID from the record's project-id set and
	// clears its project field. A missing record is a no-op.
	RemoveProjectLink(ctx context.Context, id, projectID string) error
}

// ProjectStore is the slice of the projects store the synchronizer needs.
// The members list is read and written wholesale, so concurrent editors of
// the same project can lose each other's changes (last writer wins).
type ProjectStore interface {
	Get(ctx context.Context, id string) (models.Project, error)
	SetMembers(ctx context.Context, projectID string, members []models.Member) error
}

type Synchronizer struct {
	Users    UserStore
	Projects ProjectStore
	Log      *zap.Logger
}

func NewSynchronizer(users UserStore, projects ProjectStore, log *zap.Logger) *Synchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{Users: users, Projects: projects, Log: log}
}

// AddOrUpdateMember links email to the project. An existing user record is
// updated in place (role, type, project scope, project-id set union); a new
// one is created pending with the temporary password and a locally generated
// key, to be migrated to the auth-id key on first sign-in. Either way a
// member entry is appended to the project's members list.
//
// The append does not check whether the email already appears in the list, so
// re-adding a member produces a second entry. Known long-standing behavior;
// the admin console is where such duplicates get cleaned up.
func (s *Synchronizer) AddOrUpdateMember(ctx context.Context, projectID, email, role, userType, tempPassword string) (models.Member, error) {
	email = normalize.Email(email)
	role = normalize.Role(role)
	userType = normalize.UserType(userType)

	proj, err := s.Projects.Get(ctx, projectID)
	if err != nil {
		metrics.MembershipOpsTotal.WithLabelValues("add", "error").Inc()
		return models.Member{}, fmt.Errorf("load project: %w", err)
	}

	users, err := s.Users.FindAllByEmail(ctx, email)
	if err != nil {
		metrics.MembershipOpsTotal.WithLabelValues("add", "error").Inc()
		return models.Member{}, fmt.Errorf("user lookup: %w", err)
	}

	// Clients are scoped to a single named project; employees are not.
	var projectField *string
	if userType == "client" {
		name := proj.Name
		projectField = &name
	}

	var memberID, memberStatus string
	if len(users) > 0 {
		u := users[0]
		memberID = u.ID
		memberStatus = u.Status
		if err := s.Users.UpdateMembership(ctx, u.ID, role, userType, projectField, proj.ID); err != nil {
			metrics.MembershipOpsTotal.WithLabelValues("add", "error").Inc()
			return models.Member{}, fmt.Errorf("update user: %w", err)
		}
	} else {
		if tempPassword == "" {
			metrics.MembershipOpsTotal.WithLabelValues("add", "error").Inc()
			return models.Member{}, ErrPasswordRequired
		}
		memberID = uuid.NewString()
		memberStatus = status.Pending
		now := time.Now().UTC()
		if err := s.Users.Insert(ctx, models.User{
			ID:           memberID,
			Email:        email,
			Role:         role,
			UserType:     userType,
			Status:       status.Pending,
			TempPassword: tempPassword,
			Project:      projectField,
			ProjectIDs:   []string{proj.ID},
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			metrics.MembershipOpsTotal.WithLabelValues("add", "error").Inc()
			return models.Member{}, fmt.Errorf("create user: %w", err)
		}
	}

	entry := models.Member{
		Email:    email,
		Role:     role,
		MemberID: memberID,
		UserType: userType,
		Status:   memberStatus,
	}
	if err := s.Projects.SetMembers(ctx, proj.ID, append(proj.Members, entry)); err != nil {
		s.logPartial("add", proj.ID, memberID, err)
		metrics.MembershipOpsTotal.WithLabelValues("add", "error").Inc()
		return models.Member{}, fmt.Errorf("update project members: %w", err)
	}

	metrics.MembershipOpsTotal.WithLabelValues("add", "ok").Inc()
	return entry, nil
}

// UpdateMemberRole rewrites the member entry identified by memberID in the
// project's members list and separately updates the user record's role, type,
// and project scope. The user's project-id set is left unchanged.
func (s *Synchronizer) UpdateMemberRole(ctx context.Context, projectID, memberID, newRole, newUserType string) (models.Member, error) {
	newRole = normalize.Role(newRole)
	newUserType = normalize.UserType(newUserType)

	proj, err := s.Projects.Get(ctx, projectID)
	if err != nil {
		metrics.MembershipOpsTotal.WithLabelValues("update_role", "error").Inc()
		return models.Member{}, fmt.Errorf("load project: %w", err)
	}

	idx := -1
	for i, m := range proj.Members {
		if m.MemberID == memberID {
			idx = i
			break
		}
	}
	if idx < 0 {
		metrics.MembershipOpsTotal.WithLabelValues("update_role", "error").Inc()
		return models.Member{}, ErrMemberNotFound
	}

	members := make([]models.Member, len(proj.Members))
	copy(members, proj.Members)
	members[idx].Role = newRole
	members[idx].UserType = newUserType

	if err := s.Projects.SetMembers(ctx, proj.ID, members); err != nil {
		metrics.MembershipOpsTotal.WithLabelValues("update_role", "error").Inc()
		return models.Member{}, fmt.Errorf("update project members: %w", err)
	}

	var projectField *string
	if newUserType == "client" {
		name := proj.Name
		projectField = &name
	}
	if err := s.Users.UpdateMembership(ctx, memberID, newRole, newUserType, projectField, ""); err != nil {
		s.logPartial("update_role", proj.ID, memberID, err)
		metrics.MembershipOpsTotal.WithLabelValues("update_role", "error").Inc()
		return models.Member{}, fmt.Errorf("update user: %w", err)
	}

	metrics.MembershipOpsTotal.WithLabelValues("update_role", "ok").Inc()
	return members[idx], nil
}

// RemoveMember drops the entry from the project's members list and deletes
// the user record outright. Removal is full revocation, not unscoping: the
// person loses system access entirely, not just this project.
func (s *Synchronizer) RemoveMember(ctx context.Context, projectID, memberID string) error {
	proj, err := s.Projects.Get(ctx, projectID)
	if err != nil {
		metrics.MembershipOpsTotal.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("load project: %w", err)
	}

	found := false
	members := make([]models.Member, 0, len(proj.Members))
	for _, m := range proj.Members {
		if m.MemberID == memberID {
			found = true
			continue
		}
		members = append(members, m)
	}
	if !found {
		metrics.MembershipOpsTotal.WithLabelValues("remove", "error").Inc()
		return ErrMemberNotFound
	}

	if err := s.Projects.SetMembers(ctx, proj.ID, members); err != nil {
		metrics.MembershipOpsTotal.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("update project members: %w", err)
	}

	if err := s.Users.Delete(ctx, memberID); err != nil {
		s.logPartial("remove", proj.ID, memberID, err)
		metrics.MembershipOpsTotal.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("delete user: %w", err)
	}

	// Best-effort unlink; the record is normally gone already, in which
	// case this is a no-op.
	if err := s.Users.RemoveProjectLink(ctx, memberID, proj.ID); err != nil {
		s.Log.Debug("project unlink after delete",
			zap.String("project_id", proj.ID),
			zap.String("member_id", memberID),
			zap.Error(err))
	}

	metrics.MembershipOpsTotal.WithLabelValues("remove", "ok").Inc()
	return nil
}

func (s *Synchronizer) logPartial(op, projectID, memberID string, err error) {
	s.Log.Error("partial consistency: user and project writes diverged",
		zap.String("op", op),
		zap.String("project_id", projectID),
		zap.String("member_id", memberID),
		zap.Error(err))
	metrics.PartialConsistencyTotal.Inc()
}
