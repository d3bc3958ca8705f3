package sqlite

import "context"

type membershipsRepo struct {
	q querier
}

func (r *membershipsRepo) AddUserRole(ctx context.Context, userID, roleID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID, roleID,
	)
	return err
}

func (r *membershipsRepo) RemoveUserRole(ctx context.Context, userID, roleID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`,
		userID, roleID,
	)
	return err
}

func (r *membershipsRepo) AddUserSubRole(ctx context.Context, userID, subRoleID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_sub_roles (user_id, sub_role_id) VALUES (?, ?)`,
		userID, subRoleID,
	)
	return err
}

func (r *membershipsRepo) RemoveUserSubRole(ctx context.Context, userID, subRoleID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM user_sub_roles WHERE user_id = ? AND sub_role_id = ?`,
		userID, subRoleID,
	)
	return err
}
