// Package progress computes completion percentages for goal trees.
//
// Every direct child of a goal (nested goal, checklist leaf or streak leaf)
// counts as exactly one unit. A nested goal contributes its own percentage
// divided by 100, so a sub-goal with fifty leaves weighs the same as a single
// checkbox. Results are rounded half away from zero (12.5 -> 13) using
// integer arithmetic only.
//
// Streak leaves depend on the current time, which is passed in explicitly.
// Nothing is cached: two calls with different times may disagree without any
// intervening mutation.
package progress

import (
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
)

// Compute returns the completion percentage of node in [0,100] as of now.
// A node without children is 100% complete.
func Compute(node *domain.GoalNode, now time.Time) int {
	return score(node, now, func(child *domain.GoalNode) int {
		return Compute(child, now)
	})
}

// score aggregates node's direct units, delegating nested goals to childPct.
func score(node *domain.GoalNode, now time.Time, childPct func(*domain.GoalNode) int) int {
	total := node.UnitCount()
	if total == 0 {
		return 100
	}
	// Each unit is worth 100; a nested goal is worth its own percentage.
	num := 0
	for _, child := range node.ChildBars {
		num += childPct(child)
	}
	for _, item := range node.ChecklistItems {
		if item.Checked {
			num += 100
		}
	}
	for _, streak := range node.StreakLeaves {
		if streak.IsComplete(now) {
			num += 100
		}
	}
	// num/total, rounded half up.
	return (2*num + total) / (2 * total)
}

// ComputeTree returns the percentage of every goal in the tree keyed by id,
// all computed against the same now.
func ComputeTree(tree *domain.Tree, now time.Time) map[string]int {
	out := make(map[string]int)
	var visit func(n *domain.GoalNode) int
	visit = func(n *domain.GoalNode) int {
		pct := score(n, now, visit)
		out[n.ID] = pct
		return pct
	}
	for _, r := range tree.Roots {
		visit(r)
	}
	return out
}

// Summary counts the direct units of a node by completion state.
type Summary struct {
	Units          int
	Checked        int
	StreaksReached int
	GoalsComplete  int
}

// Summarize reports how many of node's direct units are complete as of now.
func Summarize(node *domain.GoalNode, now time.Time) Summary {
	s := Summary{Units: node.UnitCount()}
	for _, item := range node.ChecklistItems {
		if item.Checked {
			s.Checked++
		}
	}
	for _, streak := range node.StreakLeaves {
		if streak.IsComplete(now) {
			s.StreaksReached++
		}
	}
	for _, child := range node.ChildBars {
		if Compute(child, now) == 100 {
			s.GoalsComplete++
		}
	}
	return s
}

// Done returns the number of fully complete units.
func (s Summary) Done() int {
	return s.Checked + s.StreaksReached + s.GoalsComplete
}
