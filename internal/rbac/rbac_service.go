package rbac

import (
	"context"
	"log"
	"sync"

	"attendance-dashboard/internal/domain"

	"github.com/casbin/casbin/v2"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error)

	ListRoles(ctx context.Context) ([]domain.RoleResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (domain.RoleResponse, error)
	DeleteRole(ctx context.Context, id string) error
	ListPermissions(ctx context.Context) ([]domain.PermissionResponse, error)
	UpdateRolePermissions(ctx context.Context, roleID string, permIDs []string) error
	AssignRole(ctx context.Context, employeeID, roleID string) error
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer) Service {
	return &service{
		repo:     repo,
		enforcer: enforcer,
	}
}

func (s *service) LoadPolicy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPolicyUnlocked(ctx)
}

// loadPolicyUnlocked rebuilds the in-memory casbin policy from the database.
// The policy set is small, so a full rebuild per enforce stays cheap and
// avoids invalidation bookkeeping.
func (s *service) loadPolicyUnlocked(ctx context.Context) error {
	s.enforcer.ClearPolicy()

	employeeRoles, err := s.repo.GetEmployeeRoles(ctx)
	if err != nil {
		return err
	}

	for _, er := range employeeRoles {
		if _, err := s.enforcer.AddGroupingPolicy(er.EmployeeID, er.RoleID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(ctx)
	if err != nil {
		return err
	}

	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	return nil
}

func (s *service) Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadPolicyUnlocked(ctx); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.EmployeeID, req.Resource, req.Action)
	if err != nil {
		log.Printf("rbac enforce: employee_id=%s resource=%s action=%s err=%v", req.EmployeeID, req.Resource, req.Action, err)
		return false, err
	}

	log.Printf("rbac enforce: employee_id=%s resource=%s action=%s allowed=%t", req.EmployeeID, req.Resource, req.Action, allowed)

	return allowed, nil
}

func (s *service) ListRoles(ctx context.Context) ([]domain.RoleResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.RoleResponse, len(roles))
	for i, role := range roles {
		perms, err := s.repo.GetPermissionsByRoleID(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(perms))
		for j, p := range perms {
			names[j] = p.Resource + ":" + p.Action
		}
		resp[i] = domain.RoleResponse{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
			Permissions: names,
		}
	}
	return resp, nil
}

func (s *service) CreateRole(ctx context.Context, req CreateRoleRequest) (domain.RoleResponse, error) {
	role := &RoleRow{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return domain.RoleResponse{}, err
	}
	return domain.RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: []string{},
	}, nil
}

func (s *service) DeleteRole(ctx context.Context, id string) error {
	return s.repo.DeleteRole(ctx, id)
}

func (s *service) ListPermissions(ctx context.Context) ([]domain.PermissionResponse, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.PermissionResponse, len(perms))
	for i, p := range perms {
		resp[i] = domain.PermissionResponse{
			ID:       p.ID,
			Resource: p.Resource,
			Action:   p.Action,
			Label:    p.Label,
		}
	}
	return resp, nil
}

func (s *service) UpdateRolePermissions(ctx context.Context, roleID string, permIDs []string) error {
	return s.repo.UpdateRolePermissions(ctx, roleID, permIDs)
}

func (s *service) AssignRole(ctx context.Context, employeeID, roleID string) error {
	return s.repo.AssignRole(ctx, employeeID, roleID)
}
