package precision

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary renders r as the multi-line text block drawn next to the group.
func Summary(r *Result) string {
	yards := strconv.FormatFloat(r.DistanceYards, 'f', -1, 64)

	var b strings.Builder
	fmt.Fprintf(&b, "%d shots\n", r.Shots)
	fmt.Fprintf(&b, "average precision = %.2f inches\n", r.GroupSize.Inches)
	fmt.Fprintf(&b, "moa at %s yds = %.2f\n", yards, r.GroupSize.MOA)
	fmt.Fprintf(&b, "horizontal = %.2f inches (%.2f moa)\n", r.Horizontal.Inches, r.Horizontal.MOA)
	fmt.Fprintf(&b, "vertical = %.2f inches (%.2f moa)\n", r.Vertical.Inches, r.Vertical.MOA)
	fmt.Fprintf(&b, "extreme spread = %.2f inches (%.2f moa)", r.ExtremeSpread.Inches, r.ExtremeSpread.MOA)
	return b.String()
}
