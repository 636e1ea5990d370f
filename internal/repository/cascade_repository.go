package repository

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-shop/internal/domain"
)

// CascadeRepository counts, samples and deletes customer-scoped rows.
type CascadeRepository interface {
	Count(ctx context.Context, table domain.Table, filter domain.RecordFilter) (int64, error)
	Sample(ctx context.Context, table domain.Table, filter domain.RecordFilter, limit int) ([]domain.RecordSample, error)
	DeleteWhere(ctx context.Context, table domain.Table, filter domain.RecordFilter) (int64, error)
}

// sampleLabels is also the whitelist of tables the cascade may touch.
var sampleLabels = map[domain.Table]string{
	domain.TableTimeEntries:             "minutes::text || ' min ' || note",
	domain.TableTicketNotes:             "body",
	domain.TableRepairTickets:           "title || ' (' || status || ')'",
	domain.TableAppointments:            "to_char(scheduled_at, 'YYYY-MM-DD HH24:MI') || ' (' || status || ')'",
	domain.TableCustomerDevices:         "label",
	domain.TableNotificationPreferences: "channel",
	domain.TableComments:                "body",
	domain.TableCustomers:               "name",
}

type cascadeRepository struct {
	pool *pgxpool.Pool
}

// NewCascadeRepository builds repository.
func NewCascadeRepository(pool *pgxpool.Pool) CascadeRepository {
	return &cascadeRepository{pool: pool}
}

func (r *cascadeRepository) Count(ctx context.Context, table domain.Table, filter domain.RecordFilter) (int64, error) {
	query, args, err := buildCount(table, filter)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *cascadeRepository) Sample(ctx context.Context, table domain.Table, filter domain.RecordFilter, limit int) ([]domain.RecordSample, error) {
	query, args, err := buildSample(table, filter, limit)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := []domain.RecordSample{}
	for rows.Next() {
		var sample domain.RecordSample
		if err := rows.Scan(&sample.ID, &sample.Label); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

func (r *cascadeRepository) DeleteWhere(ctx context.Context, table domain.Table, filter domain.RecordFilter) (int64, error) {
	query, args, err := buildDelete(table, filter)
	if err != nil {
		return 0, err
	}
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func buildCount(table domain.Table, filter domain.RecordFilter) (string, []any, error) {
	if err := checkCascadeTarget(table, filter); err != nil {
		return "", nil, err
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(string(table))
	sb.Where(filterConditions(&sb.Cond, filter)...)
	query, args := sb.Build()
	return query, args, nil
}

func buildSample(table domain.Table, filter domain.RecordFilter, limit int) (string, []any, error) {
	if err := checkCascadeTarget(table, filter); err != nil {
		return "", nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id::text", fmt.Sprintf("LEFT(COALESCE(%s, ''), 80)", sampleLabels[table]))
	sb.From(string(table))
	sb.Where(filterConditions(&sb.Cond, filter)...)
	sb.OrderBy("created_at ASC", "id ASC")
	sb.Limit(limit)
	query, args := sb.Build()
	return query, args, nil
}

func buildDelete(table domain.Table, filter domain.RecordFilter) (string, []any, error) {
	if err := checkCascadeTarget(table, filter); err != nil {
		return "", nil, err
	}
	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(string(table))
	db.Where(filterConditions(&db.Cond, filter)...)
	query, args := db.Build()
	return query, args, nil
}

func checkCascadeTarget(table domain.Table, filter domain.RecordFilter) error {
	if _, ok := sampleLabels[table]; !ok {
		return fmt.Errorf("table %q is not part of the customer cascade", table)
	}
	if filter.Column == "" || filter.CustomerID == "" {
		return fmt.Errorf("table %q: filter requires a column and a customer id", table)
	}
	return nil
}

func filterConditions(cond *sqlbuilder.Cond, filter domain.RecordFilter) []string {
	var where []string
	if filter.ViaTickets {
		tickets := sqlbuilder.PostgreSQL.NewSelectBuilder()
		tickets.Select("id")
		tickets.From(string(domain.TableRepairTickets))
		tickets.Where(tickets.Equal("customer_id", filter.CustomerID))
		where = append(where, cond.In(filter.Column, tickets))
	} else {
		where = append(where, cond.Equal(filter.Column, filter.CustomerID))
	}
	if filter.EntityType != "" {
		where = append(where, cond.Equal("entity_type", filter.EntityType))
	}
	if len(filter.Statuses) > 0 {
		where = append(where, cond.In("status", sqlbuilder.Flatten(filter.Statuses)...))
	}
	if filter.ScheduledAfter != nil {
		where = append(where, cond.GreaterEqualThan("scheduled_at", *filter.ScheduledAfter))
	}
	return where
}
