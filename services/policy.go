package services

import "cityfix-be/models"

// Action is one of the fixed operations the role policy covers.
type Action string

const (
	ActionCreateIssue    Action = "createIssue"
	ActionViewIssue      Action = "viewIssue"
	ActionEditIssue      Action = "editIssue"
	ActionResolveIssue   Action = "resolveIssue"
	ActionRejectIssue    Action = "rejectIssue"
	ActionCreateFollowUp Action = "createFollowUp"
	ActionEditFollowUp   Action = "editFollowUp"
	ActionDeleteFollowUp Action = "deleteFollowUp"
	ActionDeleteIssue    Action = "deleteIssue"
	ActionSetDeadline    Action = "setDeadline"
)

var rolePermissions = map[models.Role]map[Action]bool{
	models.RoleUser: {
		ActionCreateIssue: true,
		ActionViewIssue:   true,
	},
	models.RoleResolver: {
		ActionCreateIssue:    true,
		ActionViewIssue:      true,
		ActionCreateFollowUp: true,
		ActionEditFollowUp:   true,
	},
	models.RoleAdmin: {
		ActionCreateIssue:    true,
		ActionViewIssue:      true,
		ActionEditIssue:      true,
		ActionResolveIssue:   true,
		ActionRejectIssue:    true,
		ActionCreateFollowUp: true,
		ActionEditFollowUp:   true,
		ActionDeleteFollowUp: true,
		ActionDeleteIssue:    true,
		ActionSetDeadline:    true,
	},
}

// CanPerform is the pure role policy. Unknown roles and unknown actions are
// denied.
func CanPerform(role models.Role, action Action) bool {
	return rolePermissions[role][action]
}

// requirePermission runs the policy check every service entry point performs
// before touching the store.
func requirePermission(actor Actor, action Action) error {
	if !CanPerform(actor.Role, action) {
		return forbiddenFor(action)
	}
	return nil
}
