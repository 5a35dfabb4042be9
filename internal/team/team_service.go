package team

import (
	"context"
	"errors"

	teamerrors "attendance-dashboard/internal/team/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=team_service.go -destination=mock/team_service_mock.go -package=mock
type Service interface {
	CreateTeam(ctx context.Context, req CreateTeamRequest) (TeamResponse, error)
	GetTeams(ctx context.Context) ([]TeamResponse, error)
	GetTeamMembers(ctx context.Context, teamID string) ([]EmployeeResponse, error)

	// MembershipOf resolves the directory facts the leave engine needs for
	// one employee. Read-only.
	MembershipOf(ctx context.Context, employeeID string) (Membership, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("team.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("team.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) CreateTeam(ctx context.Context, req CreateTeamRequest) (TeamResponse, error) {
	t := &Team{
		ID:   uuid.New(),
		Name: req.Name,
	}
	if err := s.repo.CreateTeam(ctx, t); err != nil {
		s.logger.Error("create team persist failed", zap.Error(err))
		return TeamResponse{}, err
	}
	s.logger.Info("team created", zap.String("team_id", t.ID.String()))
	return TeamResponse{ID: t.ID.String(), Name: t.Name}, nil
}

func (s *service) GetTeams(ctx context.Context) ([]TeamResponse, error) {
	teams, err := s.repo.FindAllTeams(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]TeamResponse, len(teams))
	for i, t := range teams {
		count, err := s.repo.CountMembers(ctx, t.ID.String())
		if err != nil {
			return nil, err
		}
		resp[i] = TeamResponse{ID: t.ID.String(), Name: t.Name, MemberCount: count}
	}
	return resp, nil
}

func (s *service) GetTeamMembers(ctx context.Context, teamID string) ([]EmployeeResponse, error) {
	if _, err := uuid.Parse(teamID); err != nil {
		return nil, teamerrors.ErrInvalidTeamID
	}

	employees, err := s.repo.FindEmployeesByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapEmployee(e)
	}
	return resp, nil
}

func (s *service) MembershipOf(ctx context.Context, employeeID string) (Membership, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return Membership{}, teamerrors.ErrInvalidEmployeeID
	}

	e, err := s.repo.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Membership{}, teamerrors.ErrEmployeeNotFound
		}
		return Membership{}, err
	}
	if e.TeamID == nil {
		return Membership{}, teamerrors.ErrEmployeeWithoutTeam
	}

	size, err := s.repo.CountMembers(ctx, e.TeamID.String())
	if err != nil {
		return Membership{}, err
	}

	return Membership{
		EmployeeID: employeeID,
		TeamID:     e.TeamID.String(),
		TeamSize:   size,
	}, nil
}

func mapEmployee(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:       e.ID.String(),
		FullName: e.FullName,
		Email:    e.Email,
	}
	if e.TeamID != nil {
		v := e.TeamID.String()
		resp.TeamID = &v
	}
	return resp
}
