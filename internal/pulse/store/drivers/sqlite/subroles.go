package sqlite

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
)

type subRolesRepo struct {
	q querier
}

func scanSubRole(row rowScanner) (domain.SubRole, error) {
	var sr domain.SubRole
	err := row.Scan(&sr.ID, &sr.ParentRoleID, &sr.Name, &sr.CreatedAt, &sr.UpdatedAt)
	return sr, err
}

func (r *subRolesRepo) CreateSubRole(ctx context.Context, sr domain.SubRole) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sub_roles (id, parent_role_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		sr.ID, sr.ParentRoleID, sr.Name, sqlTime(orNow(sr.CreatedAt)), sqlTime(orNow(sr.UpdatedAt)),
	)
	return mapConstraint(err)
}

func (r *subRolesRepo) UpdateSubRole(ctx context.Context, sr domain.SubRole) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE sub_roles SET name = ?, updated_at = ? WHERE id = ?`,
		sr.Name, sqlTime(orNow(sr.UpdatedAt)), sr.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *subRolesRepo) GetSubRoleByCompanyAndID(ctx context.Context, companyID, id string) (domain.SubRole, error) {
	sr, err := scanSubRole(r.q.QueryRowContext(ctx, `
		SELECT s.id, s.parent_role_id, s.name, s.created_at, s.updated_at
		FROM sub_roles s
		JOIN roles r ON r.id = s.parent_role_id
		WHERE r.company_id = ? AND s.id = ?`,
		companyID, id,
	))
	if err != nil {
		return domain.SubRole{}, mapNotFound(err)
	}

	if sr.Members, err = listMembers(ctx, r.q, `
		SELECT u.id, u.email, u.first_name, u.last_name
		FROM users u
		JOIN user_sub_roles us ON us.user_id = u.id
		WHERE us.sub_role_id = ?
		ORDER BY u.id`, sr.ID); err != nil {
		return domain.SubRole{}, err
	}
	return sr, nil
}

func (r *subRolesRepo) DeleteSubRole(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sub_roles WHERE id = ?`, id)
	return err
}

// listSubRolesByParent loads the sub-roles of every given role, keyed by
// parent role id.
func listSubRolesByParent(ctx context.Context, q querier, roleIDs []string) (map[string][]domain.SubRole, error) {
	out := make(map[string][]domain.SubRole, len(roleIDs))
	if len(roleIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(roleIDs))
	for i, id := range roleIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(roleIDs)), ",")

	rows, err := q.QueryContext(ctx, `
		SELECT id, parent_role_id, name, created_at, updated_at
		FROM sub_roles
		WHERE parent_role_id IN (`+placeholders+`)
		ORDER BY created_at, id`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		sr, err := scanSubRole(rows)
		if err != nil {
			return nil, err
		}
		out[sr.ParentRoleID] = append(out[sr.ParentRoleID], sr)
	}
	return out, rows.Err()
}

func listMembers(ctx context.Context, q querier, query string, args ...any) ([]domain.Member, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.UserID, &m.Email, &m.FirstName, &m.LastName); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
