package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a percentage as a bar like [████░░░░]  45%.
func RenderProgress(pct, width int) string {
	pct = clampPercent(pct)
	if width < 2 {
		width = 2
	}
	filled := pct * width / 100
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %3d%%", PercentStyle(pct).Render(bar), pct)
}

// RenderCompactBar renders just the blocks, without brackets or the number.
// Dimmed bars are used for collapsed rows.
func RenderCompactBar(pct, width int, dim bool) string {
	pct = clampPercent(pct)
	if width < 2 {
		width = 2
	}
	filled := pct * width / 100
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	if dim {
		return StyleDim.Render(bar)
	}
	return PercentStyle(pct).Render(bar)
}

func clampPercent(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
