package uitest

import "strings"

// extractJSON slices model output from the first JSON opener onward. Models
// tend to prefix prose or reasoning before the payload; everything before
// the first brace or bracket is noise.
func extractJSON(content string) (string, bool) {
	brace := strings.Index(content, "{")
	bracket := strings.Index(content, "[")

	start := brace
	if start == -1 || (bracket != -1 && bracket < start) {
		start = bracket
	}
	if start == -1 {
		return "", false
	}
	return content[start:], true
}
