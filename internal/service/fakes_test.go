package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dexter0900/TaskEngineX/internal/repository"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

// In-memory repository fakes. They implement just enough of the real
// semantics (conditional updates, upserts, cascade delete) for the services
// to be exercised without a database.

type fakeUserRepo struct {
	users  map[string]*repository.User
	tokens map[string]*repository.RefreshToken
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*repository.User),
		tokens: make(map[string]*repository.RefreshToken),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *repository.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*repository.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *repository.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) AddProvider(_ context.Context, userID, provider string) error {
	user := r.users[userID]
	if user == nil {
		return nil
	}
	for _, p := range user.Providers {
		if p == provider {
			return nil
		}
	}
	user.Providers = append(user.Providers, provider)
	return nil
}

func (r *fakeUserRepo) Search(_ context.Context, query string, limit int) ([]*repository.User, error) {
	var out []*repository.User
	for _, user := range r.users {
		if strings.Contains(strings.ToLower(user.Email), strings.ToLower(query)) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SaveRefreshToken(_ context.Context, token *repository.RefreshToken) error {
	token.ID = token.Token
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(_ context.Context, token string) (*repository.RefreshToken, error) {
	return r.tokens[token], nil
}

func (r *fakeUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *fakeUserRepo) DeleteUserRefreshTokens(_ context.Context, userID string) error {
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

type fakeWorkspaceRepo struct {
	workspaces map[string]*repository.Workspace
	members    map[string]*repository.WorkspaceMember // key workspaceID/userID
	nextID     int
}

func newFakeWorkspaceRepo() *fakeWorkspaceRepo {
	return &fakeWorkspaceRepo{
		workspaces: make(map[string]*repository.Workspace),
		members:    make(map[string]*repository.WorkspaceMember),
	}
}

func memberKey(workspaceID, userID string) string {
	return workspaceID + "/" + userID
}

func (r *fakeWorkspaceRepo) Create(_ context.Context, workspace *repository.Workspace) error {
	r.nextID++
	workspace.ID = fmt.Sprintf("ws-%d", r.nextID)
	workspace.CreatedAt = time.Now()
	workspace.UpdatedAt = workspace.CreatedAt
	r.workspaces[workspace.ID] = workspace
	return r.UpsertMember(nil, &repository.WorkspaceMember{
		WorkspaceID: workspace.ID,
		UserID:      workspace.CreatorID,
		Role:        types.RoleAdmin,
	})
}

func (r *fakeWorkspaceRepo) FindByID(_ context.Context, id string) (*repository.Workspace, error) {
	return r.workspaces[id], nil
}

func (r *fakeWorkspaceRepo) FindByUserID(_ context.Context, userID string) ([]*repository.Workspace, error) {
	var out []*repository.Workspace
	for _, m := range r.members {
		if m.UserID == userID {
			if ws := r.workspaces[m.WorkspaceID]; ws != nil {
				out = append(out, ws)
			}
		}
	}
	return out, nil
}

func (r *fakeWorkspaceRepo) Update(_ context.Context, workspace *repository.Workspace) error {
	r.workspaces[workspace.ID] = workspace
	return nil
}

func (r *fakeWorkspaceRepo) Delete(_ context.Context, id string) error {
	delete(r.workspaces, id)
	return nil
}

func (r *fakeWorkspaceRepo) UpsertMember(_ context.Context, member *repository.WorkspaceMember) error {
	key := memberKey(member.WorkspaceID, member.UserID)
	if existing, ok := r.members[key]; ok {
		existing.Role = member.Role
		member.JoinedAt = existing.JoinedAt
		return nil
	}
	member.JoinedAt = time.Now()
	r.members[key] = member
	return nil
}

func (r *fakeWorkspaceRepo) FindMember(_ context.Context, workspaceID, userID string) (*repository.WorkspaceMember, error) {
	return r.members[memberKey(workspaceID, userID)], nil
}

func (r *fakeWorkspaceRepo) FindMembers(_ context.Context, workspaceID string) ([]*repository.WorkspaceMemberDetail, error) {
	var out []*repository.WorkspaceMemberDetail
	for _, m := range r.members {
		if m.WorkspaceID == workspaceID {
			out = append(out, &repository.WorkspaceMemberDetail{WorkspaceMember: *m})
		}
	}
	return out, nil
}

func (r *fakeWorkspaceRepo) RemoveMember(_ context.Context, workspaceID, userID string) error {
	delete(r.members, memberKey(workspaceID, userID))
	return nil
}

type fakeProjectRepo struct {
	projects map[string]*repository.Project
	members  map[string]*repository.ProjectMember // key projectID/userID/role
	nextID   int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: make(map[string]*repository.Project),
		members:  make(map[string]*repository.ProjectMember),
	}
}

func projectMemberKey(projectID, userID string, role types.ProjectRole) string {
	return projectID + "/" + userID + "/" + string(role)
}

func (r *fakeProjectRepo) Create(_ context.Context, project *repository.Project) error {
	r.nextID++
	project.ID = fmt.Sprintf("proj-%d", r.nextID)
	if project.Status == "" {
		project.Status = types.ProjectActive
	}
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	r.projects[project.ID] = project
	return r.UpsertMember(nil, &repository.ProjectMember{
		ProjectID: project.ID,
		UserID:    project.CreatorID,
		Role:      types.ProjectRoleAssigner,
	})
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id string) (*repository.Project, error) {
	return r.projects[id], nil
}

func (r *fakeProjectRepo) FindByWorkspaceID(_ context.Context, workspaceID string) ([]*repository.Project, error) {
	var out []*repository.Project
	for _, p := range r.projects {
		if p.WorkspaceID == workspaceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) Update(_ context.Context, project *repository.Project) error {
	r.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	delete(r.projects, id)
	return nil
}

func (r *fakeProjectRepo) UpsertMember(_ context.Context, member *repository.ProjectMember) error {
	key := projectMemberKey(member.ProjectID, member.UserID, member.Role)
	if existing, ok := r.members[key]; ok {
		member.JoinedAt = existing.JoinedAt
		return nil
	}
	member.JoinedAt = time.Now()
	r.members[key] = member
	return nil
}

func (r *fakeProjectRepo) RemoveMember(_ context.Context, projectID, userID string, role types.ProjectRole) error {
	delete(r.members, projectMemberKey(projectID, userID, role))
	return nil
}

func (r *fakeProjectRepo) FindMembership(_ context.Context, projectID, userID string) (repository.ProjectMembership, error) {
	var membership repository.ProjectMembership
	if _, ok := r.members[projectMemberKey(projectID, userID, types.ProjectRoleAssigner)]; ok {
		membership.IsAssigner = true
	}
	if _, ok := r.members[projectMemberKey(projectID, userID, types.ProjectRoleWorker)]; ok {
		membership.IsWorker = true
	}
	return membership, nil
}

func (r *fakeProjectRepo) FindMembers(_ context.Context, projectID string) ([]*repository.ProjectMemberDetail, error) {
	var out []*repository.ProjectMemberDetail
	for _, m := range r.members {
		if m.ProjectID == projectID {
			out = append(out, &repository.ProjectMemberDetail{ProjectMember: *m})
		}
	}
	return out, nil
}

type fakeTaskRepo struct {
	tasks    map[string]*repository.Task
	subtasks *fakeSubtaskRepo // for the delete cascade
	nextID   int
}

func newFakeTaskRepo(subtasks *fakeSubtaskRepo) *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*repository.Task), subtasks: subtasks}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *repository.Task) error {
	r.nextID++
	task.ID = fmt.Sprintf("task-%d", r.nextID)
	if task.Status == "" {
		task.Status = types.StatusPending
	}
	if task.Priority == "" {
		task.Priority = types.PriorityMedium
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id string) (*repository.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	clone := *task
	return &clone, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *repository.Task) error {
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	for sid, s := range r.subtasks.subtasks {
		if s.TaskID == id {
			delete(r.subtasks.subtasks, sid)
		}
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) FindPersonal(_ context.Context, userID string, _ repository.TaskFilter) ([]*repository.Task, error) {
	var out []*repository.Task
	for _, t := range r.tasks {
		if t.UserID == userID && t.WorkspaceID == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) FindByWorkspace(_ context.Context, workspaceID string, scope repository.TaskScope, _ repository.TaskFilter) ([]*repository.Task, error) {
	var out []*repository.Task
	for _, t := range r.tasks {
		if t.WorkspaceID == nil || *t.WorkspaceID != workspaceID {
			continue
		}
		if scope.AssignedTo != "" && (t.AssignedTo == nil || *t.AssignedTo != scope.AssignedTo) {
			continue
		}
		if scope.ActorID != "" {
			assignedBy := t.AssignedBy != nil && *t.AssignedBy == scope.ActorID
			if !assignedBy && t.UserID != scope.ActorID {
				continue
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTaskRepo) FindByProject(_ context.Context, projectID string) ([]*repository.Task, error) {
	var out []*repository.Task
	for _, t := range r.tasks {
		if t.ProjectID != nil && *t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id string, status types.TaskStatus) error {
	if task, ok := r.tasks[id]; ok {
		task.Status = status
	}
	return nil
}

func (r *fakeTaskRepo) MarkComplete(_ context.Context, id string) (bool, error) {
	task, ok := r.tasks[id]
	if !ok {
		return false, nil
	}
	if task.Status != types.StatusPending && task.Status != types.StatusInProgress {
		return false, nil
	}
	now := time.Now()
	task.Status = types.StatusCompleted
	task.ApprovalStatus = types.ApprovalPendingApproval
	task.CompletedAt = &now
	return true, nil
}

func (r *fakeTaskRepo) ResolveApproval(_ context.Context, id string, approved bool) (bool, error) {
	task, ok := r.tasks[id]
	if !ok {
		return false, nil
	}
	if task.ApprovalStatus != types.ApprovalPendingApproval {
		return false, nil
	}
	if approved {
		task.ApprovalStatus = types.ApprovalApproved
	} else {
		task.ApprovalStatus = types.ApprovalRejected
		task.Status = types.StatusPending
		task.CompletedAt = nil
	}
	return true, nil
}

func (r *fakeTaskRepo) PersonalStats(_ context.Context, userID string) (*repository.TaskStats, error) {
	stats := &repository.TaskStats{}
	for _, t := range r.tasks {
		if t.UserID != userID || t.WorkspaceID != nil {
			continue
		}
		countTask(stats, t)
	}
	return stats, nil
}

func (r *fakeTaskRepo) WorkspaceStats(ctx context.Context, workspaceID string, scope repository.TaskScope) (*repository.TaskStats, error) {
	tasks, _ := r.FindByWorkspace(ctx, workspaceID, scope, repository.TaskFilter{})
	stats := &repository.TaskStats{}
	for _, t := range tasks {
		countTask(stats, t)
	}
	return stats, nil
}

func countTask(stats *repository.TaskStats, t *repository.Task) {
	stats.Total++
	switch t.Status {
	case types.StatusPending:
		stats.Pending++
	case types.StatusInProgress:
		stats.InProgress++
	case types.StatusCompleted:
		stats.Completed++
	}
	switch t.ApprovalStatus {
	case types.ApprovalPendingApproval:
		stats.PendingApproval++
	case types.ApprovalApproved:
		stats.Approved++
	case types.ApprovalRejected:
		stats.Rejected++
	}
	if t.Priority == types.PriorityHigh {
		stats.HighPriority++
	}
}

func (r *fakeTaskRepo) FindDueSoon(_ context.Context, within time.Duration) ([]*repository.Task, error) {
	cutoff := time.Now().Add(within)
	var out []*repository.Task
	for _, t := range r.tasks {
		if t.DueDate != nil && t.DueDate.Before(cutoff) && t.Status != types.StatusCompleted {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeSubtaskRepo struct {
	subtasks map[string]*repository.Subtask
	nextID   int
}

func newFakeSubtaskRepo() *fakeSubtaskRepo {
	return &fakeSubtaskRepo{subtasks: make(map[string]*repository.Subtask)}
}

func (r *fakeSubtaskRepo) Create(_ context.Context, subtask *repository.Subtask) error {
	r.nextID++
	subtask.ID = fmt.Sprintf("sub-%d", r.nextID)
	subtask.CreatedAt = time.Now()
	subtask.UpdatedAt = subtask.CreatedAt
	r.subtasks[subtask.ID] = subtask
	return nil
}

func (r *fakeSubtaskRepo) FindByID(_ context.Context, id string) (*repository.Subtask, error) {
	return r.subtasks[id], nil
}

func (r *fakeSubtaskRepo) FindByTaskID(_ context.Context, taskID string) ([]*repository.Subtask, error) {
	var out []*repository.Subtask
	for _, s := range r.subtasks {
		if s.TaskID == taskID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubtaskRepo) Update(_ context.Context, subtask *repository.Subtask) error {
	r.subtasks[subtask.ID] = subtask
	return nil
}

func (r *fakeSubtaskRepo) Toggle(_ context.Context, id string) (*repository.Subtask, error) {
	subtask, ok := r.subtasks[id]
	if !ok {
		return nil, nil
	}
	subtask.Completed = !subtask.Completed
	return subtask, nil
}

func (r *fakeSubtaskRepo) Delete(_ context.Context, id string) error {
	delete(r.subtasks, id)
	return nil
}

func (r *fakeSubtaskRepo) DeleteOrphans(_ context.Context) (int64, error) {
	return 0, nil
}

// fakeBroadcaster records realtime events by room so tests can assert who
// an event was pushed to.
type fakeBroadcaster struct {
	events []broadcastRecord
}

type broadcastRecord struct {
	room  string
	event string
}

func (b *fakeBroadcaster) ToUser(userID, event string, _ any) {
	b.events = append(b.events, broadcastRecord{room: "user:" + userID, event: event})
}

func (b *fakeBroadcaster) ToWorkspace(workspaceID, event string, _ any) {
	b.events = append(b.events, broadcastRecord{room: "workspace:" + workspaceID, event: event})
}

func (b *fakeBroadcaster) received(room, event string) bool {
	for _, rec := range b.events {
		if rec.room == room && rec.event == event {
			return true
		}
	}
	return false
}

type fakeNotificationRepo struct {
	notifications []*repository.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *repository.Notification) error {
	n.ID = fmt.Sprintf("notif-%d", len(r.notifications)+1)
	n.CreatedAt = time.Now()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) FindByUserID(_ context.Context, userID string, _ int) ([]*repository.Notification, error) {
	var out []*repository.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id, userID string) error {
	for i, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeNotificationRepo) DeleteOlderThan(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}
