package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
)

// MemberService manages project memberships.
type MemberService struct {
	lc *Lifecycle
}

func NewMemberService(lc *Lifecycle) *MemberService {
	return &MemberService{lc: lc}
}

type AddMemberRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// List returns the members of a project the actor may see.
func (s *MemberService) List(ctx context.Context, projectID uint, actor lifecycle.Actor) ([]models.ProjectMember, error) {
	st := s.lc.store.Stores()
	if _, err := visibleProject(ctx, st, projectID, actor); err != nil {
		return nil, err
	}
	return st.Members.ListMembers(ctx, projectID)
}

// Add puts a user on the project or changes the role they already hold.
//
// MANAGER may only be granted by an ADMIN. MEMBER and VIEWER may be granted
// by an ADMIN or a manager of the project. OWNER is never granted here.
func (s *MemberService) Add(ctx context.Context, projectID uint, req *AddMemberRequest, actor lifecycle.Actor) (*models.ProjectMember, error) {
	role := models.MemberRoleMember
	if req.Role != "" {
		parsed, err := models.ParseMemberRole(req.Role)
		if err != nil {
			return nil, lifecycle.InvalidInput(err)
		}
		role = parsed
	}
	if role == models.MemberRoleOwner {
		return nil, lifecycle.InvalidInput(errors.New("the OWNER role belongs to the project creator"))
	}

	var member *models.ProjectMember
	err := s.lc.inTx(ctx, func(r txRules) error {
		project, err := r.Projects.Get(ctx, projectID)
		if err != nil {
			return hideMissing(err, actor)
		}
		if err := authorizeMemberChange(ctx, r.Stores, project, role, actor); err != nil {
			return err
		}
		wasManager, err := r.Members.HasRole(ctx, projectID, req.UserID, models.MemberRoleManager)
		if err != nil {
			return err
		}
		if wasManager {
			if err := authorizeMemberChange(ctx, r.Stores, project, models.MemberRoleManager, actor); err != nil {
				return err
			}
		}
		if req.UserID == project.OwnerID {
			return lifecycle.InvalidInput(errors.New("the project owner's role cannot be changed"))
		}

		user, err := r.users.Get(ctx, req.UserID)
		if err != nil {
			return err
		}
		if !user.IsActive() {
			return lifecycle.InvalidInput(fmt.Errorf("user %s is suspended", user.Username))
		}

		if err := r.Members.Upsert(ctx, projectID, req.UserID, role); err != nil {
			return fmt.Errorf("save membership: %w", err)
		}
		if err := logActivity(ctx, r.Stores, actor, models.EntityProject, projectID, models.ActionUpdate, uintPtr(projectID), nil,
			fmt.Sprintf("user %s set to %s", user.Username, role)); err != nil {
			return err
		}

		members, err := r.Members.ListMembers(ctx, projectID)
		if err != nil {
			return err
		}
		for i := range members {
			if members[i].UserID == req.UserID {
				member = &members[i]
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("[Member] Project %d: user %d is now %s (by %s)", projectID, req.UserID, role, actor.Username)
	return member, nil
}

// UpdateRole changes an existing member's role under the same rules as Add.
func (s *MemberService) UpdateRole(ctx context.Context, projectID, userID uint, req *UpdateMemberRoleRequest, actor lifecycle.Actor) (*models.ProjectMember, error) {
	ok, err := s.lc.store.Stores().Members.IsMember(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("member %d of project %d: %w", userID, projectID, lifecycle.ErrNotFound)
	}
	return s.Add(ctx, projectID, &AddMemberRequest{UserID: userID, Role: req.Role}, actor)
}

// Remove takes a user off the project and clears them as assignee on its
// tasks. Removing a manager requires ADMIN.
func (s *MemberService) Remove(ctx context.Context, projectID, userID uint, actor lifecycle.Actor) error {
	return s.lc.inTx(ctx, func(r txRules) error {
		project, err := r.Projects.Get(ctx, projectID)
		if err != nil {
			return hideMissing(err, actor)
		}
		if userID == project.OwnerID {
			return lifecycle.InvalidInput(errors.New("the project owner cannot be removed"))
		}
		role := models.MemberRoleMember
		isManager, err := r.Members.HasRole(ctx, projectID, userID, models.MemberRoleManager)
		if err != nil {
			return err
		}
		if isManager {
			role = models.MemberRoleManager
		}
		if err := authorizeMemberChange(ctx, r.Stores, project, role, actor); err != nil {
			return err
		}
		if err := r.Members.Remove(ctx, projectID, userID); err != nil {
			return err
		}
		tasks, err := r.Tasks.ListByProject(ctx, projectID)
		if err != nil {
			return fmt.Errorf("list tasks of project %d: %w", projectID, err)
		}
		unassigned := 0
		for _, t := range tasks {
			if t.AssigneeID == nil || *t.AssigneeID != userID {
				continue
			}
			if err := r.Tasks.Assign(ctx, t.ID, nil); err != nil {
				return fmt.Errorf("unassign task %d: %w", t.ID, err)
			}
			unassigned++
		}
		return logActivity(ctx, r.Stores, actor, models.EntityProject, projectID, models.ActionUpdate, uintPtr(projectID), nil,
			fmt.Sprintf("user %d removed, %d task(s) unassigned", userID, unassigned))
	})
}

func authorizeMemberChange(ctx context.Context, s lifecycle.Stores, project *models.Project, role models.MemberRole, actor lifecycle.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if role == models.MemberRoleManager {
		return lifecycle.ErrForbidden
	}
	ok, err := canManage(ctx, s, project, actor)
	if err != nil {
		return err
	}
	if !ok {
		return lifecycle.ErrForbidden
	}
	return nil
}
