package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
	"github.com/aussiebroadwan/pulse/internal/pulse/store"
)

const userColumns = `
	u.id, u.email, u.first_name, u.last_name, u.phone, u.password_hash,
	u.company_id, u.own_company_id, u.is_creator, u.is_active,
	u.invite_hash, u.invite_expires_at, u.created_at, u.updated_at,
	u.city, u.hobby, u.social_link, u.language, u.birthday`

type usersRepo struct {
	q querier
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u            domain.User
		ownCompanyID sql.NullString
		inviteHash   sql.NullString
		inviteExpiry sql.NullTime
		birthday     sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.PasswordHash,
		&u.CompanyID, &ownCompanyID, &u.IsCreator, &u.IsActive,
		&inviteHash, &inviteExpiry, &u.CreatedAt, &u.UpdatedAt,
		&u.City, &u.Hobby, &u.SocialLink, &u.Language, &birthday,
	)
	if err != nil {
		return domain.User{}, err
	}
	if u.Birthday, err = mapNullDatePtr(birthday); err != nil {
		return domain.User{}, err
	}
	u.OwnCompanyID = mapNullString(ownCompanyID)
	u.InviteHash = mapNullString(inviteHash)
	u.InviteExpiresAt = mapNullTimePtr(inviteExpiry)
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (
			id, email, first_name, last_name, phone, password_hash,
			company_id, own_company_id, is_creator, is_active,
			invite_hash, invite_expires_at, created_at, updated_at,
			city, hobby, social_link, language, birthday
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Phone, u.PasswordHash,
		u.CompanyID, mapStringNull(u.OwnCompanyID), u.IsCreator, u.IsActive,
		mapStringNull(u.InviteHash), sqlTimePtr(u.InviteExpiresAt), sqlTime(orNow(u.CreatedAt)), sqlTime(orNow(u.UpdatedAt)),
		u.City, u.Hobby, u.SocialLink, u.Language, sqlDatePtr(u.Birthday),
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string, activeOnly bool) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = ?`
	if activeOnly {
		query += ` AND u.is_active = 1`
	}
	u, err := scanUser(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByCompanyAndID(ctx context.Context, companyID, id string) (domain.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.company_id = ? AND u.id = ?`,
		companyID, id,
	))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	if u.Roles, err = r.listRoles(ctx, u.ID); err != nil {
		return domain.User{}, err
	}
	if u.SubRoles, err = r.listSubRoles(ctx, u.ID); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) listRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT r.id, r.company_id, r.name, r.is_leader, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *usersRepo) listSubRoles(ctx context.Context, userID string) ([]domain.SubRole, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT s.id, s.parent_role_id, s.name, s.created_at, s.updated_at
		FROM sub_roles s
		JOIN user_sub_roles us ON us.sub_role_id = s.id
		WHERE us.user_id = ?
		ORDER BY s.id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subRoles := []domain.SubRole{}
	for rows.Next() {
		sr, err := scanSubRole(rows)
		if err != nil {
			return nil, err
		}
		subRoles = append(subRoles, sr)
	}
	return subRoles, rows.Err()
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = ?`, email,
	))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetPendingUserByInviteHash(ctx context.Context, hash string, at time.Time) (domain.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users u
		WHERE u.invite_hash = ?
		  AND u.is_active = 0
		  AND (u.invite_expires_at IS NULL OR u.invite_expires_at > ?)`,
		hash, sqlTime(at),
	))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) UpdateProfile(ctx context.Context, u domain.User) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET first_name = ?, last_name = ?, email = ?, phone = ?,
		    city = ?, hobby = ?, social_link = ?, language = ?, birthday = ?,
		    updated_at = ?
		WHERE id = ?`,
		u.FirstName, u.LastName, u.Email, u.Phone,
		u.City, u.Hobby, u.SocialLink, u.Language, sqlDatePtr(u.Birthday),
		sqlTime(orNow(u.UpdatedAt)), u.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireAffected(res)
}

func (r *usersRepo) ActivateInvitedUser(ctx context.Context, u domain.User) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, first_name = ?, last_name = ?,
		    is_active = 1, invite_hash = NULL, invite_expires_at = NULL,
		    updated_at = ?
		WHERE id = ? AND is_active = 0 AND invite_hash IS NOT NULL`,
		u.PasswordHash, u.FirstName, u.LastName, sqlTime(orNow(u.UpdatedAt)), u.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) DeleteExpiredInvitations(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM users
		WHERE is_active = 0
		  AND invite_hash IS NOT NULL
		  AND invite_expires_at IS NOT NULL
		  AND invite_expires_at <= ?`,
		sqlTime(at),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
