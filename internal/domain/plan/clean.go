package plan

import "strings"

const fence = "```"

// Clean strips one leading code fence (```html or ```), a stray leading
// "html" literal and one trailing fence, then trims whitespace. Exactly one
// layer is stripped per call, so a reply wrapped twice keeps its inner
// wrapping. Clean text comes back unchanged.
func Clean(text string) string {
	out := strings.TrimSpace(text)

	switch {
	case len(out) >= len(fence)+4 && strings.EqualFold(out[:len(fence)+4], fence+"html"):
		out = out[len(fence)+4:]
	case strings.HasPrefix(out, fence):
		out = out[len(fence):]
	}
	out = strings.TrimLeft(out, " \t\r\n")
	out = strings.TrimPrefix(out, `"html"`)
	out = strings.TrimRight(out, " \t\r\n")
	out = strings.TrimSuffix(out, fence)

	return strings.TrimSpace(out)
}
