package contract

import (
	"fmt"
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Entity is the body of POST and PUT /progressBars and of their responses.
// Kind selects which of the optional fields apply.
type Entity struct {
	Kind         string `json:"kind" binding:"required,oneof=goal checklist streak"`
	ID           string `json:"id,omitempty"`
	ParentID     string `json:"parentId,omitempty"`
	OwnerID      string `json:"ownerId,omitempty"`
	Label        string `json:"label" binding:"required"`
	Checked      bool   `json:"checked,omitempty"`
	StartingDate string `json:"startingDate,omitempty" binding:"omitempty,isodate"`
	DayGoal      int    `json:"dayGoal,omitempty" binding:"gte=0"`
	Version      int64  `json:"version,omitempty" binding:"gte=0"`
}

// FromEntity converts a domain entity to its wire form.
func FromEntity(e domain.Entity, parentID string) Entity {
	out := Entity{Kind: string(e.Kind), ParentID: parentID, ID: e.ID(), Version: e.Version()}
	switch e.Kind {
	case domain.KindGoal:
		out.Label = e.Goal.Label
		out.OwnerID = e.Goal.OwnerID
	case domain.KindChecklist:
		out.Label = e.Checklist.Label
		out.Checked = e.Checklist.Checked
	case domain.KindStreak:
		out.Label = e.Streak.Label
		out.StartingDate = e.Streak.StartDate.Format(domain.DateLayout)
		out.DayGoal = e.Streak.TargetDays
	}
	return out
}

// ToDomain converts the wire form into a validated domain entity.
func (e Entity) ToDomain() (domain.Entity, error) {
	var out domain.Entity
	switch domain.EntityKind(e.Kind) {
	case domain.KindGoal:
		g := &domain.GoalNode{ID: e.ID, OwnerID: e.OwnerID, Label: e.Label, Version: e.Version}
		if e.ParentID != "" {
			pid := e.ParentID
			g.ParentID = &pid
		}
		out = domain.Entity{Kind: domain.KindGoal, Goal: g}
	case domain.KindChecklist:
		out = domain.ChecklistEntity(domain.ChecklistLeaf{
			ID: e.ID, Label: e.Label, Checked: e.Checked, Version: e.Version,
		})
	case domain.KindStreak:
		start, err := domain.ParseDate(e.StartingDate)
		if err != nil {
			return domain.Entity{}, fmt.Errorf("starting date %q: %w", e.StartingDate, domain.ErrInvariantViolation)
		}
		out = domain.StreakEntity(domain.StreakLeaf{
			ID: e.ID, Label: e.Label, StartDate: start, TargetDays: e.DayGoal, Version: e.Version,
		})
	default:
		return domain.Entity{}, fmt.Errorf("unknown kind %q: %w", e.Kind, domain.ErrInvariantViolation)
	}
	if err := out.Validate(); err != nil {
		return domain.Entity{}, err
	}
	return out, nil
}

// ValidateISODate is a validator for YYYY-MM-DD strings, registered under
// the "isodate" tag.
func ValidateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.DateLayout, fl.Field().String())
	return err == nil
}
