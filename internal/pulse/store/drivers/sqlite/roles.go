package sqlite

import (
	"context"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
)

type rolesRepo struct {
	q querier
}

func scanRole(row rowScanner) (domain.Role, error) {
	var r domain.Role
	err := row.Scan(&r.ID, &r.CompanyID, &r.Name, &r.IsLeader, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO roles (id, company_id, name, is_leader, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		role.ID, role.CompanyID, role.Name, role.IsLeader, sqlTime(orNow(role.CreatedAt)), sqlTime(orNow(role.UpdatedAt)),
	)
	return mapConstraint(err)
}

func (r *rolesRepo) UpdateRole(ctx context.Context, role domain.Role) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE roles SET name = ?, is_leader = ?, updated_at = ?
		WHERE id = ? AND company_id = ?`,
		role.Name, role.IsLeader, sqlTime(orNow(role.UpdatedAt)), role.ID, role.CompanyID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *rolesRepo) GetRoleByCompanyAndID(ctx context.Context, companyID, id string) (domain.Role, error) {
	role, err := scanRole(r.q.QueryRowContext(ctx, `
		SELECT id, company_id, name, is_leader, created_at, updated_at
		FROM roles WHERE company_id = ? AND id = ?`,
		companyID, id,
	))
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) GetRoleDetail(ctx context.Context, companyID, id string) (domain.Role, error) {
	role, err := r.GetRoleByCompanyAndID(ctx, companyID, id)
	if err != nil {
		return domain.Role{}, err
	}

	if role.Members, err = listMembers(ctx, r.q, `
		SELECT u.id, u.email, u.first_name, u.last_name
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		WHERE ur.role_id = ?
		ORDER BY u.id`, role.ID); err != nil {
		return domain.Role{}, err
	}

	subRoles, err := listSubRolesByParent(ctx, r.q, []string{role.ID})
	if err != nil {
		return domain.Role{}, err
	}
	role.SubRoles = subRoles[role.ID]
	if role.SubRoles == nil {
		role.SubRoles = []domain.SubRole{}
	}
	return role, nil
}

func (r *rolesRepo) ListRolesByCompany(ctx context.Context, companyID string) ([]domain.Role, int, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, company_id, name, is_leader, created_at, updated_at
		FROM roles WHERE company_id = ?
		ORDER BY created_at, id`, companyID,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	roles := []domain.Role{}
	ids := []string{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, 0, err
		}
		roles = append(roles, role)
		ids = append(ids, role.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	// the single connection must be free before the next query
	_ = rows.Close()

	subRoles, err := listSubRolesByParent(ctx, r.q, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range roles {
		roles[i].SubRoles = subRoles[roles[i].ID]
		if roles[i].SubRoles == nil {
			roles[i].SubRoles = []domain.SubRole{}
		}
	}
	return roles, len(roles), nil
}

func (r *rolesRepo) GetParentRoleHeldByUser(ctx context.Context, subRoleID, userID string) (domain.Role, error) {
	role, err := scanRole(r.q.QueryRowContext(ctx, `
		SELECT r.id, r.company_id, r.name, r.is_leader, r.created_at, r.updated_at
		FROM roles r
		JOIN sub_roles s ON s.parent_role_id = r.id
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE s.id = ? AND ur.user_id = ?`,
		subRoleID, userID,
	))
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) DeleteRole(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id)
	return err
}
