package sqlite

import (
	"context"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
)

type companiesRepo struct {
	q querier
}

func (r *companiesRepo) CreateCompany(ctx context.Context, c domain.Company) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO companies (id, name, is_multi, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.IsMulti, sqlTime(orNow(c.CreatedAt)), sqlTime(orNow(c.UpdatedAt)),
	)
	return mapConstraint(err)
}

func (r *companiesRepo) GetCompanyByID(ctx context.Context, id string) (domain.Company, error) {
	var c domain.Company
	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, is_multi, created_at, updated_at
		FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.IsMulti, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Company{}, mapNotFound(err)
	}
	return c, nil
}
