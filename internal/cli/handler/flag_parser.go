// Package handler provides flag parsing utilities
package handler

import (
	"fmt"
	"strings"

	"github.com/thenoetrevino/circles/internal/models"
)

// whyFlags are the five-whys answer flags, in order
var whyFlags = [5]string{"why1", "why2", "why3", "why4", "why5"}

// ParseZone parses a zone argument. Accepts confused/partial/clear and the
// wwtf/wtf/clarity names.
func ParseZone(s string) (models.Zone, error) {
	return models.ParseZone(s)
}

// JoinText joins positional arguments into one note or action text
func JoinText(args []string, what string) (string, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", fmt.Errorf("%s text cannot be empty", what)
	}
	return text, nil
}

// ParseFiveWhys reads the --why1..--why5 flags. Answers that were not set keep
// the value from current, so a single answer can be edited in place.
func (a *Arguments) ParseFiveWhys(current *models.FiveWhys) (models.FiveWhys, error) {
	var out models.FiveWhys
	if current != nil {
		out = *current
	}
	set := false
	fields := [5]*string{&out.Why1, &out.Why2, &out.Why3, &out.Why4, &out.Why5}
	for i, name := range whyFlags {
		if !a.Has(name) {
			continue
		}
		*fields[i] = a.GetString(name, "")
		set = true
	}
	if !set {
		return out, fmt.Errorf("at least one of --why1..--why5 is required")
	}
	return out, nil
}

// WhyFlagNames returns the five-whys flag names in order
func WhyFlagNames() []string {
	return whyFlags[:]
}
