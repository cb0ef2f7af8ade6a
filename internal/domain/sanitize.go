package domain

import "strings"

var markupStripper = strings.NewReplacer("*", "", "_", "", "#", "", "`", "")

// Sanitize removes markdown control characters (* _ # `) from text before display.
func Sanitize(s string) string {
	return markupStripper.Replace(s)
}
