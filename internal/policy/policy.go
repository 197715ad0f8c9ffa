// Package policy is the single place where role-to-permission decisions
// are made. Every component asks Can instead of re-deriving role checks.
package policy

import (
	"github.com/google/uuid"

	"inkpress/internal/models"
)

// Principal is the authenticated identity making a request. A nil
// *Principal means the caller is anonymous.
type Principal struct {
	ID   uuid.UUID
	Role models.Role
}

// Action names a gated operation. Reads of published posts, categories,
// and approved comments are open to anyone and never consult the policy.
type Action string

const (
	CreatePost      Action = "post.create"
	UpdatePost      Action = "post.update"
	DeletePost      Action = "post.delete"
	LikePost        Action = "post.like"
	CreateComment   Action = "comment.create"
	DeleteComment   Action = "comment.delete"
	LikeComment     Action = "comment.like"
	ModerateComment Action = "comment.moderate"
	ListAllComments Action = "comment.list_all"
	CreateCategory  Action = "category.create"
	ViewStats       Action = "stats.view"
	UploadMedia     Action = "media.upload"
	DeleteMedia     Action = "media.delete"
	ListUsers       Action = "user.list"
	AssignRole      Action = "user.assign_role"
)

// Can answers "can principal p perform action on resource". The resource
// is consulted only where ownership matters: UpdatePost and DeletePost
// expect a *models.Post.
//
// Comment deletion is intentionally asymmetric with post deletion:
// authorship grants no delete rights, only admins may delete comments.
func Can(p *Principal, action Action, resource any) bool {
	if p == nil {
		return false
	}

	switch action {
	case CreatePost, CreateComment, CreateCategory, LikePost, LikeComment, ViewStats, UploadMedia:
		// Any authenticated principal.
		return true

	case UpdatePost, DeletePost:
		post, ok := resource.(*models.Post)
		if !ok {
			return false
		}
		return post.IsAuthoredBy(p.ID) || p.Role == models.RoleAdmin

	case DeleteComment, ListAllComments, ListUsers, DeleteMedia, AssignRole:
		return p.Role == models.RoleAdmin

	case ModerateComment:
		return p.Role == models.RoleModerator || p.Role == models.RoleAdmin
	}

	return false
}

// routeRoles maps page-group path prefixes to the roles allowed in.
var routeRoles = map[string][]models.Role{
	"/dashboard": {models.RoleUser, models.RoleModerator, models.RoleAdmin},
	"/admin":     {models.RoleAdmin},
	"/moderator": {models.RoleModerator, models.RoleAdmin},
}

// RouteRoles returns the required role set for a gated path prefix.
// The second return is false for ungated prefixes.
func RouteRoles(prefix string) ([]models.Role, bool) {
	roles, ok := routeRoles[prefix]
	return roles, ok
}

// AllowedOnRoute reports whether the principal may enter the page group
// at the given prefix. Anonymous callers are never allowed into a gated
// group.
func AllowedOnRoute(p *Principal, prefix string) bool {
	roles, ok := routeRoles[prefix]
	if !ok {
		return true
	}
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
