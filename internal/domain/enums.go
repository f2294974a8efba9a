package domain

type EntityKind string

const (
	KindGoal      EntityKind = "goal"
	KindChecklist EntityKind = "checklist"
	KindStreak    EntityKind = "streak"
)

// ValidEntityKinds is the canonical set of accepted entity kind strings.
var ValidEntityKinds = map[string]bool{
	"goal": true, "checklist": true, "streak": true,
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Operation string

const (
	OpAddRoot       Operation = "add_root"
	OpAddChild      Operation = "add_child"
	OpAddChecklist  Operation = "add_checklist"
	OpAddStreak     Operation = "add_streak"
	OpEditGoal      Operation = "edit_goal"
	OpEditChecklist Operation = "edit_checklist"
	OpToggle        Operation = "toggle_checklist"
	OpEditStreak    Operation = "edit_streak"
	OpDeleteNode    Operation = "delete_node"
	OpDeleteLeaf    Operation = "delete_leaf"
	OpReload        Operation = "reload"
)
