// internal/app/system/membership/membership_test.go
package membership

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/deskhubhq/deskhub/internal/app/system/status"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

/* -------------------------------------------------------------------------- */
/* In-memory fakes                                                            */
/* -------------------------------------------------------------------------- */

type fakeUsers struct {
	records map[string]models.User

	insertErr error
	deleteErr error
	updateErr error
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{records: map[string]models.User{}}
	for _, u := range users {
		f.records[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindAllByEmail(_ context.Context, email string) ([]models.User, error) {
	var out []models.User
	for _, u := range f.records {
		if u.Email == email {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Insert(_ context.Context, u models.User) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.records[u.ID]; ok {
		return errors.New("duplicate key")
	}
	f.records[u.ID] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.records, id)
	return nil
}

func (f *fakeUsers) UpdateMembership(_ context.Context, id, role, userType string, project *string, addProjectID string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.records[id]
	if !ok {
		return errors.New("not found")
	}
	u.Role = role
	u.UserType = userType
	u.Project = project
	if addProjectID != "" {
		present := false
		for _, pid := range u.ProjectIDs {
			if pid == addProjectID {
				present = true
				break
			}
		}
		if !present {
			u.ProjectIDs = append(u.ProjectIDs, addProjectID)
		}
	}
	f.records[id] = u
	return nil
}

func (f *fakeUsers) RemoveProjectLink(_ context.Context, id, projectID string) error {
	u, ok := f.records[id]
	if !ok {
		return nil // already deleted, no-op
	}
	kept := u.ProjectIDs[:0]
	for _, pid := range u.ProjectIDs {
		if pid != projectID {
			kept = append(kept, pid)
		}
	}
	u.ProjectIDs = kept
	u.Project = nil
	f.records[id] = u
	return nil
}

type fakeProjects struct {
	projects map[string]models.Project

	setErr error
}

func newFakeProjects(ps ...models.Project) *fakeProjects {
	f := &fakeProjects{projects: map[string]models.Project{}}
	for _, p := range ps {
		f.projects[p.ID] = p
	}
	return f
}

func (f *fakeProjects) Get(_ context.Context, id string) (models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return models.Project{}, errors.New("project not found")
	}
	return p, nil
}

func (f *fakeProjects) SetMembers(_ context.Context, projectID string, members []models.Member) error {
	if f.setErr != nil {
		return f.setErr
	}
	p := f.projects[projectID]
	p.Members = members
	f.projects[projectID] = p
	return nil
}

func acmeProject() models.Project {
	return models.Project{ID: "proj-1", Name: "Acme"}
}

/* -------------------------------------------------------------------------- */
/* Tests                                                                      */
/* -------------------------------------------------------------------------- */

func TestAddOrUpdateMember_NewClient(t *testing.T) {
	users := newFakeUsers()
	projects := newFakeProjects(acmeProject())
	sync := NewSynchronizer(users, projects, zap.NewNop())

	entry, err := sync.AddOrUpdateMember(context.Background(), "proj-1", "a@x.com", "client", "client", "Temp123")
	if err != nil {
		t.Fatalf("AddOrUpdateMember: %v", err)
	}

	got, _ := users.FindAllByEmail(context.Background(), "a@x.com")
	if len(got) != 1 {
		t.Fatalf("expected one user record, got %d", len(got))
	}
	u := got[0]
	if u.Status != status.Pending {
		t.Errorf("status = %q, want pending", u.Status)
	}
	if u.TempPassword != "Temp123" {
		t.Errorf("temp password = %q", u.TempPassword)
	}
	if u.Project == nil || *u.Project != "Acme" {
		t.Errorf("project = %v, want Acme", u.Project)
	}
	if len(u.ProjectIDs) != 1 || u.ProjectIDs[0] != "proj-1" {
		t.Errorf("project ids = %v, want [proj-1]", u.ProjectIDs)
	}

	p, _ := projects.Get(context.Background(), "proj-1")
	if len(p.Members) != 1 {
		t.Fatalf("expected one member entry, got %d", len(p.Members))
	}
	m := p.Members[0]
	if m.Email != "a@x.com" || m.Role != "client" || m.Status != status.Pending {
		t.Errorf("unexpected member entry: %+v", m)
	}
	if m.MemberID != entry.MemberID || m.MemberID != u.ID {
		t.Error("member entry id should match the user record key")
	}
}

func TestAddOrUpdateMember_EmployeeHasNoProjectScope(t *testing.T) {
	users := newFakeUsers()
	projects := newFakeProjects(acmeProject())
	sync := NewSynchronizer(users, projects, zap.NewNop())

	if _, err := sync.AddOrUpdateMember(context.Background(), "proj-1", "e@x.com", "employee", "employee", "Temp123"); err != nil {
		t.Fatalf("AddOrUpdateMember: %v", err)
	}
	got, _ := users.FindAllByEmail(context.Background(), "e@x.com")
	if got[0].Project != nil {
		t.Errorf("employee project = %v, want nil", got[0].Project)
	}
	if len(got[0].ProjectIDs) != 1 || got[0].ProjectIDs[0] != "proj-1" {
		t.Errorf("project ids = %v, want [proj-1]", got[0].ProjectIDs)
	}
}

// Re-adding a member is idempotent on the user record's project-id set but
// appends a second entry to the project's members list. The duplicate entry
// is existing behavior this test pins down, not a desired outcome.
func TestAddOrUpdateMember_RepeatDuplicatesListEntryOnly(t *testing.T) {
	users := newFakeUsers()
	projects := newFakeProjects(acmeProject())
	sync := NewSynchronizer(users, projects, zap.NewNop())

	ctx := context.Background()
	if _, err := sync.AddOrUpdateMember(ctx, "proj-1", "a@x.com", "client", "client", "Temp123"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := sync.AddOrUpdateMember(ctx, "proj-1", "a@x.com", "client", "client", "Temp123"); err != nil {
		t.Fatalf("second add: %v", err)
	}

	got, _ := users.FindAllByEmail(ctx, "a@x.com")
	if len(got) != 1 {
		t.Fatalf("expected one user record, got %d", len(got))
	}
	if len(got[0].ProjectIDs) != 1 {
		t.Errorf("project-id set should still be {proj-1}, got %v", got[0].ProjectIDs)
	}

	p, _ := projects.Get(ctx, "proj-1")
	if len(p.Members) != 2 {
		t.Errorf("members list duplicates on re-add (known behavior); got %d entries", len(p.Members))
	}
}

func TestAddOrUpdateMember_NewMemberNeedsPassword(t *testing.T) {
	sync := NewSynchronizer(newFakeUsers(), newFakeProjects(acmeProject()), zap.NewNop())

	_, err := sync.AddOrUpdateMember(context.Background(), "proj-1", "a@x.com", "client", "client", "")
	if !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
}

func TestAddOrUpdateMember_ProjectWriteFailureAfterUserWrite(t *testing.T) {
	users := newFakeUsers()
	projects := newFakeProjects(acmeProject())
	projects.setErr = errors.New("write refused")
	sync := NewSynchronizer(users, projects, zap.NewNop())

	_, err := sync.AddOrUpdateMember(context.Background(), "proj-1", "a@x.com", "client", "client", "Temp123")
	if err == nil {
		t.Fatal("expected error when project write fails")
	}
	// The user record was already written: the accepted partial state.
	got, _ := users.FindAllByEmail(context.Background(), "a@x.com")
	if len(got) != 1 {
		t.Errorf("user record should exist despite project write failure, got %d", len(got))
	}
}

func TestUpdateMemberRole_ClientToEmployee(t *testing.T) {
	name := "Acme"
	u := models.User{
		ID: "u-1", Email: "a@x.com", Role: "client", UserType: "client",
		Status: status.Active, Project: &name, ProjectIDs: []string{"proj-1"},
	}
	proj := acmeProject()
	proj.Members = []models.Member{{Email: "a@x.com", Role: "client", MemberID: "u-1", UserType: "client", Status: status.Active}}

	users := newFakeUsers(u)
	projects := newFakeProjects(proj)
	sync := NewSynchronizer(users, projects, zap.NewNop())

	entry, err := sync.UpdateMemberRole(context.Background(), "proj-1", "u-1", "employee", "employee")
	if err != nil {
		t.Fatalf("UpdateMemberRole: %v", err)
	}
	if entry.Role != "employee" || entry.UserType != "employee" {
		t.Errorf("unexpected rewritten entry: %+v", entry)
	}

	got, _ := users.FindAllByEmail(context.Background(), "a@x.com")
	if got[0].Project != nil {
		t.Errorf("user project should be cleared for employee, got %v", got[0].Project)
	}
	if len(got[0].ProjectIDs) != 1 || got[0].ProjectIDs[0] != "proj-1" {
		t.Errorf("project-id set should be unchanged, got %v", got[0].ProjectIDs)
	}

	p, _ := projects.Get(context.Background(), "proj-1")
	if p.Members[0].Role != "employee" || p.Members[0].UserType != "employee" {
		t.Errorf("entry not rewritten in place: %+v", p.Members[0])
	}
	if p.Members[0].Status != status.Active {
		t.Errorf("entry status should be preserved, got %q", p.Members[0].Status)
	}
}

func TestUpdateMemberRole_UnknownMember(t *testing.T) {
	sync := NewSynchronizer(newFakeUsers(), newFakeProjects(acmeProject()), zap.NewNop())

	_, err := sync.UpdateMemberRole(context.Background(), "proj-1", "nope", "employee", "employee")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestRemoveMember_DeletesUserRecord(t *testing.T) {
	u := models.User{ID: "u-1", Email: "a@x.com", Role: "client", UserType: "client", Status: status.Active}
	proj := acmeProject()
	proj.Members = []models.Member{
		{Email: "a@x.com", MemberID: "u-1", Role: "client", UserType: "client", Status: status.Active},
		{Email: "b@x.com", MemberID: "u-2", Role: "employee", UserType: "employee", Status: status.Active},
	}

	users := newFakeUsers(u)
	projects := newFakeProjects(proj)
	sync := NewSynchronizer(users, projects, zap.NewNop())

	if err := sync.RemoveMember(context.Background(), "proj-1", "u-1"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	// Removal revokes the account entirely, not just this project.
	if got, _ := users.FindAllByEmail(context.Background(), "a@x.com"); len(got) != 0 {
		t.Errorf("user record should be deleted, got %d records", len(got))
	}

	p, _ := projects.Get(context.Background(), "proj-1")
	if len(p.Members) != 1 || p.Members[0].MemberID != "u-2" {
		t.Errorf("members list should retain only u-2, got %+v", p.Members)
	}
}

func TestRemoveMember_UnknownMember(t *testing.T) {
	sync := NewSynchronizer(newFakeUsers(), newFakeProjects(acmeProject()), zap.NewNop())

	err := sync.RemoveMember(context.Background(), "proj-1", "ghost")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}
