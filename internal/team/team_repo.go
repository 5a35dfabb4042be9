package team

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=team_repo.go -destination=mock/team_repo_mock.go -package=mock
type Repository interface {
	CreateTeam(ctx context.Context, t *Team) error
	FindAllTeams(ctx context.Context) ([]Team, error)
	FindTeamByID(ctx context.Context, id string) (*Team, error)
	FindEmployeeByID(ctx context.Context, id string) (*Employee, error)
	FindEmployeesByTeam(ctx context.Context, teamID string) ([]Employee, error)
	CountMembers(ctx context.Context, teamID string) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTeam(ctx context.Context, t *Team) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindAllTeams(ctx context.Context) ([]Team, error) {
	var teams []Team
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}

func (r *repository) FindTeamByID(ctx context.Context, id string) (*Team, error) {
	var t Team
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *repository) FindEmployeeByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindEmployeesByTeam(ctx context.Context, teamID string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) CountMembers(ctx context.Context, teamID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("team_id = ?", teamID).
		Count(&count).Error
	return int(count), err
}
