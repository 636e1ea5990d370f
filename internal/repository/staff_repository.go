package repository

import (
	"context"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-shop/internal/domain"
)

const defaultStaffPageSize = 50

var staffColumns = []string{"id", "name", "email", "role", "active_flag", "created_at", "updated_at"}

// StaffRepository reads staff members that work can be assigned to.
type StaffRepository interface {
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error)
}

// StaffFilter narrows a staff listing. Nil fields do not filter.
type StaffFilter struct {
	Role   *domain.StaffRole
	Active *bool
	Limit  int
	Offset int
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(staffColumns...).From("staff_members").Where(sb.Equal("id", id))
	query, args := sb.Build()

	member, err := scanStaff(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error) {
	query, args := buildStaffList(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StaffMember, error) {
		return scanStaff(row)
	})
}

func buildStaffList(filter StaffFilter) (string, []any) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(staffColumns...).From("staff_members")
	if filter.Role != nil {
		sb.Where(sb.Equal("role", string(*filter.Role)))
	}
	if filter.Active != nil {
		sb.Where(sb.Equal("active_flag", *filter.Active))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultStaffPageSize
	}
	sb.OrderBy("name", "id").Limit(limit)
	if filter.Offset > 0 {
		sb.Offset(filter.Offset)
	}
	return sb.Build()
}

func scanStaff(row pgx.Row) (domain.StaffMember, error) {
	var member domain.StaffMember
	err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Email,
		&member.Role,
		&member.Active,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	return member, err
}
