package http

import (
	"time"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
	"github.com/aussiebroadwan/pulse/internal/pulse/service"
	"github.com/aussiebroadwan/pulse/pkg/pulsesdk"
)

func toUserResponse(u domain.User) pulsesdk.UserResponse {
	out := pulsesdk.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		CompanyID:    u.CompanyID,
		OwnCompanyID: u.OwnCompanyID,
		IsCreator:    u.IsCreator,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		Profile: pulsesdk.Profile{
			City:       u.City,
			Hobby:      u.Hobby,
			SocialLink: u.SocialLink,
			Language:   u.Language,
		},
	}
	if u.Birthday != nil {
		out.Birthday = u.Birthday.Format(service.BirthdayLayout)
	}
	if u.Roles != nil {
		out.Roles = make([]pulsesdk.RoleSummary, len(u.Roles))
		for i, r := range u.Roles {
			out.Roles[i] = pulsesdk.RoleSummary{ID: r.ID, Name: r.Name, IsLeader: r.IsLeader}
		}
	}
	if u.SubRoles != nil {
		out.SubRoles = make([]pulsesdk.SubRoleResponse, len(u.SubRoles))
		for i, sr := range u.SubRoles {
			out.SubRoles[i] = toSubRoleResponse(sr)
		}
	}
	return out
}

func toProfileInput(p pulsesdk.Profile) service.ProfileInput {
	return service.ProfileInput{
		City:       p.City,
		Hobby:      p.Hobby,
		SocialLink: p.SocialLink,
		Birthday:   p.Birthday,
		Language:   p.Language,
	}
}

func toAuthResponse(au domain.AuthenticatedUser) pulsesdk.AuthResponse {
	return pulsesdk.AuthResponse{
		AccessToken: au.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(au.ExpiresIn / time.Second),
		User:        toUserResponse(au.User),
	}
}

func toRoleResponse(r domain.Role) pulsesdk.RoleResponse {
	out := pulsesdk.RoleResponse{
		ID:        r.ID,
		CompanyID: r.CompanyID,
		Name:      r.Name,
		IsLeader:  r.IsLeader,
		Members:   toMembers(r.Members),
		SubRoles:  make([]pulsesdk.SubRoleResponse, len(r.SubRoles)),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for i, sr := range r.SubRoles {
		out.SubRoles[i] = toSubRoleResponse(sr)
	}
	return out
}

func toSubRoleResponse(sr domain.SubRole) pulsesdk.SubRoleResponse {
	return pulsesdk.SubRoleResponse{
		ID:           sr.ID,
		ParentRoleID: sr.ParentRoleID,
		Name:         sr.Name,
		Members:      toMembers(sr.Members),
	}
}

func toMembers(members []domain.Member) []pulsesdk.MemberResponse {
	out := make([]pulsesdk.MemberResponse, len(members))
	for i, m := range members {
		out[i] = pulsesdk.MemberResponse{
			UserID:    m.UserID,
			Email:     m.Email,
			FirstName: m.FirstName,
			LastName:  m.LastName,
		}
	}
	return out
}
