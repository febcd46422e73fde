// internal/app/policy/grouppolicy/grouppolicy.go
package grouppolicy

import (
	"github.com/dalemusser/studyhub/internal/domain/models"
)

// CanAccess reports whether identity may see the group's chat and tasks.
// Only roster members can.
func CanAccess(g models.Group, identity string) bool {
	return identity != "" && g.HasMember(identity)
}

// CanManage reports whether identity may edit or delete the group.
// The stored creator is the only manager; roster membership is irrelevant.
func CanManage(g models.Group, identity string) bool {
	return identity != "" && g.Creator == identity
}

// CanDeleteTask reports whether identity may delete t: its creator or
// its assignee.
func CanDeleteTask(t models.Task, identity string) bool {
	return identity != "" && t.CanDelete(identity)
}

// CanAssign reports whether assignee may be given a task in g.
// Empty means unassigned and is always allowed.
func CanAssign(g models.Group, assignee string) bool {
	return assignee == "" || g.HasMember(assignee)
}
