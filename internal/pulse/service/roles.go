package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
	"github.com/aussiebroadwan/pulse/internal/pulse/store"
	"github.com/aussiebroadwan/pulse/pkg/idx"
	"github.com/aussiebroadwan/pulse/pkg/slogx"
)

// RolesService owns the role hierarchy of a company: roles, their one level
// of sub-roles, and which users hold them. Every operation is scoped to the
// company the actor created.
type RolesService struct {
	Store store.Store
}

// CreateRole adds a role with no members and no sub-roles.
func (s *RolesService) CreateRole(ctx context.Context, actor domain.User, name string, isLeader bool) (domain.Role, error) {
	log := slogx.FromContext(ctx)

	if err := Authorize(actor, PermManageRoles); err != nil {
		return domain.Role{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Role{}, ErrInvalidRequest
	}

	now := time.Now().UTC()
	role := domain.Role{
		ID:        idx.New().String(),
		CompanyID: actor.OwnCompanyID,
		Name:      name,
		IsLeader:  isLeader,
		SubRoles:  []domain.SubRole{},
		Members:   []domain.Member{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Roles().CreateRole(ctx, role); err != nil {
		log.Error("failed to create role", slog.Any("error", err))
		return domain.Role{}, err
	}

	log.Info("role created",
		slog.String("role_id", role.ID),
		slog.String("company_id", role.CompanyID),
	)
	return role, nil
}

// UpdateRole renames a role and sets its leader flag.
func (s *RolesService) UpdateRole(
	ctx context.Context,
	actor domain.User,
	roleID string,
	name string,
	isLeader bool,
) (domain.Role, error) {
	log := slogx.FromContext(ctx)

	if err := Authorize(actor, PermManageRoles); err != nil {
		return domain.Role{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Role{}, ErrInvalidRequest
	}

	var updated domain.Role
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Role must exist in the actor's company
		role, err := tx.Roles().GetRoleByCompanyAndID(ctx, actor.OwnCompanyID, roleID)
		if err != nil {
			return mapRoleErr(err)
		}

		// 2. Write the new fields
		role.Name = name
		role.IsLeader = isLeader
		role.UpdatedAt = time.Now().UTC()
		if err := tx.Roles().UpdateRole(ctx, role); err != nil {
			return mapRoleErr(err)
		}

		// 3. Return the full view
		updated, err = tx.Roles().GetRoleDetail(ctx, actor.OwnCompanyID, roleID)
		return mapRoleErr(err)
	})
	if err != nil {
		if !errors.Is(err, ErrRoleNotFound) {
			log.Error("failed to update role", slog.String("role_id", roleID), slog.Any("error", err))
		}
		return domain.Role{}, err
	}

	return updated, nil
}

// ListRoles returns every role of the actor's company with its sub-roles,
// together with the total count.
func (s *RolesService) ListRoles(ctx context.Context, actor domain.User) ([]domain.Role, int, error) {
	if err := Authorize(actor, PermReadRoles); err != nil {
		return nil, 0, err
	}

	roles, total, err := s.Store.Roles().ListRolesByCompany(ctx, actor.OwnCompanyID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list roles", slog.Any("error", err))
		return nil, 0, err
	}
	return roles, total, nil
}

// GetRole returns a role with its members and sub-roles.
func (s *RolesService) GetRole(ctx context.Context, actor domain.User, roleID string) (domain.Role, error) {
	if err := Authorize(actor, PermReadRoles); err != nil {
		return domain.Role{}, err
	}

	role, err := s.Store.Roles().GetRoleDetail(ctx, actor.OwnCompanyID, roleID)
	if err != nil {
		return domain.Role{}, mapRoleErr(err)
	}
	return role, nil
}

// GetSubRole returns a sub-role with its members. The parent role must
// belong to the actor's company.
func (s *RolesService) GetSubRole(ctx context.Context, actor domain.User, subRoleID string) (domain.SubRole, error) {
	if err := Authorize(actor, PermReadRoles); err != nil {
		return domain.SubRole{}, err
	}

	sr, err := s.Store.SubRoles().GetSubRoleByCompanyAndID(ctx, actor.OwnCompanyID, subRoleID)
	if err != nil {
		return domain.SubRole{}, mapSubRoleErr(err)
	}
	return sr, nil
}

// CreateSubRole adds a sub-role under parentRoleID.
func (s *RolesService) CreateSubRole(
	ctx context.Context,
	actor domain.User,
	parentRoleID string,
	name string,
) (domain.SubRole, error) {
	log := slogx.FromContext(ctx)

	if err := Authorize(actor, PermManageRoles); err != nil {
		return domain.SubRole{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.SubRole{}, ErrInvalidRequest
	}

	now := time.Now().UTC()
	sr := domain.SubRole{
		ID:        idx.New().String(),
		Name:      name,
		Members:   []domain.Member{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Parent must exist in the actor's company
		parent, err := tx.Roles().GetRoleByCompanyAndID(ctx, actor.OwnCompanyID, parentRoleID)
		if err != nil {
			return mapRoleErr(err)
		}

		// 2. Link and insert
		sr.ParentRoleID = parent.ID
		return tx.SubRoles().CreateSubRole(ctx, sr)
	})
	if err != nil {
		if !errors.Is(err, ErrRoleNotFound) {
			log.Error("failed to create sub-role", slog.String("parent_role_id", parentRoleID), slog.Any("error", err))
		}
		return domain.SubRole{}, err
	}

	log.Info("sub-role created",
		slog.String("sub_role_id", sr.ID),
		slog.String("parent_role_id", sr.ParentRoleID),
	)
	return sr, nil
}

// UpdateSubRole renames a sub-role.
func (s *RolesService) UpdateSubRole(
	ctx context.Context,
	actor domain.User,
	subRoleID string,
	name string,
) (domain.SubRole, error) {
	if err := Authorize(actor, PermManageRoles); err != nil {
		return domain.SubRole{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.SubRole{}, ErrInvalidRequest
	}

	var updated domain.SubRole
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		sr, err := tx.SubRoles().GetSubRoleByCompanyAndID(ctx, actor.OwnCompanyID, subRoleID)
		if err != nil {
			return mapSubRoleErr(err)
		}

		sr.Name = name
		sr.UpdatedAt = time.Now().UTC()
		if err := tx.SubRoles().UpdateSubRole(ctx, sr); err != nil {
			return mapSubRoleErr(err)
		}
		updated = sr
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrRoleNotFound) {
			slogx.FromContext(ctx).Error("failed to update sub-role", slog.String("sub_role_id", subRoleID), slog.Any("error", err))
		}
		return domain.SubRole{}, err
	}
	return updated, nil
}

// DeleteRole removes a role, its sub-roles and every membership edge of
// both. Deleting a role that does not exist in the actor's company succeeds
// without writing anything.
func (s *RolesService) DeleteRole(ctx context.Context, actor domain.User, roleID string) error {
	log := slogx.FromContext(ctx)

	if err := Authorize(actor, PermManageRoles); err != nil {
		return err
	}

	deleted := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByCompanyAndID(ctx, actor.OwnCompanyID, roleID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Roles().DeleteRole(ctx, role.ID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		log.Error("failed to delete role", slog.String("role_id", roleID), slog.Any("error", err))
		return err
	}

	if deleted {
		log.Info("role deleted", slog.String("role_id", roleID))
	}
	return nil
}

// DeleteSubRole removes a sub-role and its membership edges. Like DeleteRole
// it is scoped to the actor's company and succeeds when nothing matches.
func (s *RolesService) DeleteSubRole(ctx context.Context, actor domain.User, subRoleID string) error {
	log := slogx.FromContext(ctx)

	if err := Authorize(actor, PermManageRoles); err != nil {
		return err
	}

	deleted := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		sr, err := tx.SubRoles().GetSubRoleByCompanyAndID(ctx, actor.OwnCompanyID, subRoleID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.SubRoles().DeleteSubRole(ctx, sr.ID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		log.Error("failed to delete sub-role", slog.String("sub_role_id", subRoleID), slog.Any("error", err))
		return err
	}

	if deleted {
		log.Info("sub-role deleted", slog.String("sub_role_id", subRoleID))
	}
	return nil
}

func mapRoleErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoleNotFound
	}
	return err
}

func mapSubRoleErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrSubRoleNotFound
	}
	return err
}

func mapUserErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
