package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
	"github.com/aussiebroadwan/pulse/internal/pulse/store"
	"github.com/aussiebroadwan/pulse/pkg/slogx"
)

// AssignRole gives userID the role roleID. Assigning a role the user already
// holds is a no-op. The returned user has Roles and SubRoles loaded.
func (s *RolesService) AssignRole(ctx context.Context, actor domain.User, userID, roleID string) (domain.User, error) {
	if err := Authorize(actor, PermManageRoles); err != nil {
		return domain.User{}, err
	}

	var out domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. User must work in the actor's company
		user, err := tx.Users().GetUserByCompanyAndID(ctx, actor.OwnCompanyID, userID)
		if err != nil {
			return mapUserErr(err)
		}

		// 2. Role must belong to the same company
		role, err := tx.Roles().GetRoleByCompanyAndID(ctx, actor.OwnCompanyID, roleID)
		if err != nil {
			return mapRoleErr(err)
		}

		// 3. Link both sides with a single edge
		if err := tx.Memberships().AddUserRole(ctx, user.ID, role.ID); err != nil {
			return err
		}

		out, err = tx.Users().GetUserByCompanyAndID(ctx, actor.OwnCompanyID, user.ID)
		return err
	})
	if err != nil {
		logMembershipErr(ctx, "assign role", userID, roleID, err)
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("role assigned",
		slog.String("user_id", userID),
		slog.String("role_id", roleID),
	)
	return out, nil
}

// AssignSubRole gives userID the sub-role subRoleID. The user must already
// hold the parent role, otherwise ErrNoParentRole is returned and nothing is
// written.
func (s *RolesService) AssignSubRole(ctx context.Context, actor domain.User, userID, subRoleID string) (domain.User, error) {
	if err := Authorize(actor, PermManageRoles); err != nil {
		return domain.User{}, err
	}

	var out domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. User must work in the actor's company
		user, err := tx.Users().GetUserByCompanyAndID(ctx, actor.OwnCompanyID, userID)
		if err != nil {
			return mapUserErr(err)
		}

		// 2. Sub-role must hang off a role of the same company
		sr, err := tx.SubRoles().GetSubRoleByCompanyAndID(ctx, actor.OwnCompanyID, subRoleID)
		if err != nil {
			return mapSubRoleErr(err)
		}

		// 3. The user must hold the parent role
		if _, err := tx.Roles().GetParentRoleHeldByUser(ctx, sr.ID, user.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNoParentRole
			}
			return err
		}

		// 4. Link
		if err := tx.Memberships().AddUserSubRole(ctx, user.ID, sr.ID); err != nil {
			return err
		}

		out, err = tx.Users().GetUserByCompanyAndID(ctx, actor.OwnCompanyID, user.ID)
		return err
	})
	if err != nil {
		logMembershipErr(ctx, "assign sub-role", userID, subRoleID, err)
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("sub-role assigned",
		slog.String("user_id", userID),
		slog.String("sub_role_id", subRoleID),
	)
	return out, nil
}

// RemoveRole takes roleID away from userID together with every sub-role of
// that role the user holds. All edges are removed in one transaction.
// Removing a role the user does not hold is a no-op.
func (s *RolesService) RemoveRole(ctx context.Context, actor domain.User, userID, roleID string) (domain.User, error) {
	if err := Authorize(actor, PermManageRoles); err != nil {
		return domain.User{}, err
	}

	var out domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. User must work in the actor's company
		user, err := tx.Users().GetUserByCompanyAndID(ctx, actor.OwnCompanyID, userID)
		if err != nil {
			return mapUserErr(err)
		}

		// 2. Role must belong to the same company
		role, err := tx.Roles().GetRoleByCompanyAndID(ctx, actor.OwnCompanyID, roleID)
		if err != nil {
			return mapRoleErr(err)
		}

		// 3. Nothing to do unless the role is held
		if !user.HoldsRole(role.ID) {
			out = user
			return nil
		}

		// 4. Drop the sub-roles of this role first
		for _, sr := range user.SubRolesOf(role.ID) {
			if err := tx.Memberships().RemoveUserSubRole(ctx, user.ID, sr.ID); err != nil {
				return err
			}
		}

		// 5. Then the role edge itself
		if err := tx.Memberships().RemoveUserRole(ctx, user.ID, role.ID); err != nil {
			return err
		}

		out, err = tx.Users().GetUserByCompanyAndID(ctx, actor.OwnCompanyID, user.ID)
		return err
	})
	if err != nil {
		logMembershipErr(ctx, "remove role", userID, roleID, err)
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("role removed",
		slog.String("user_id", userID),
		slog.String("role_id", roleID),
	)
	return out, nil
}

// RemoveSubRole takes subRoleID away from userID. The parent role is kept.
func (s *RolesService) RemoveSubRole(ctx context.Context, actor domain.User, userID, subRoleID string) (domain.User, error) {
	if err := Authorize(actor, PermManageRoles); err != nil {
		return domain.User{}, err
	}

	var out domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByCompanyAndID(ctx, actor.OwnCompanyID, userID)
		if err != nil {
			return mapUserErr(err)
		}

		sr, err := tx.SubRoles().GetSubRoleByCompanyAndID(ctx, actor.OwnCompanyID, subRoleID)
		if err != nil {
			return mapSubRoleErr(err)
		}

		if err := tx.Memberships().RemoveUserSubRole(ctx, user.ID, sr.ID); err != nil {
			return err
		}

		out, err = tx.Users().GetUserByCompanyAndID(ctx, actor.OwnCompanyID, user.ID)
		return err
	})
	if err != nil {
		logMembershipErr(ctx, "remove sub-role", userID, subRoleID, err)
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("sub-role removed",
		slog.String("user_id", userID),
		slog.String("sub_role_id", subRoleID),
	)
	return out, nil
}

// logMembershipErr keeps expected precondition failures at warn level.
func logMembershipErr(ctx context.Context, op, userID, targetID string, err error) {
	log := slogx.FromContext(ctx)
	attrs := []any{
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.String("target_id", targetID),
		slog.Any("error", err),
	}
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrRoleNotFound), errors.Is(err, ErrNoParentRole):
		log.Warn("membership change rejected", attrs...)
	default:
		log.Error("membership change failed", attrs...)
	}
}
