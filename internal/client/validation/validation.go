// Package validation checks user and session input against the portal's
// business rules. Every check runs, so callers get the full list of
// problems at once.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rules are the configurable thresholds.
type Rules struct {
	TitleMinLength         int
	DescriptionMinLength   int
	MainObjectiveMinLength int
	MinDuration            int
	MaxDuration            int
	NameMinLength          int
	PasswordMinLength      int
}

func DefaultRules() Rules {
	return Rules{
		TitleMinLength:         3,
		DescriptionMinLength:   10,
		MainObjectiveMinLength: 5,
		MinDuration:            15,
		MaxDuration:            180,
		NameMinLength:          2,
		PasswordMinLength:      6,
	}
}

func trimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// Session returns the problems found in in, or nil.
func (r Rules) Session(in models.SessionInput) []string {
	var problems []string

	if trimmedLen(in.Title) < r.TitleMinLength {
		problems = append(problems, fmt.Sprintf("title must be at least %d characters", r.TitleMinLength))
	}
	if trimmedLen(in.Description) < r.DescriptionMinLength {
		problems = append(problems, fmt.Sprintf("description must be at least %d characters", r.DescriptionMinLength))
	}
	if trimmedLen(in.MainObjective) < r.MainObjectiveMinLength {
		problems = append(problems, fmt.Sprintf("main objective must be at least %d characters", r.MainObjectiveMinLength))
	}
	if !in.Difficulty.Valid() {
		problems = append(problems, "choose a valid difficulty level")
	}
	if in.Duration < r.MinDuration || in.Duration > r.MaxDuration {
		problems = append(problems, fmt.Sprintf("duration must be between %d and %d minutes", r.MinDuration, r.MaxDuration))
	}

	return problems
}

// User returns the problems found in a user's editable fields, or nil.
func (r Rules) User(u models.NewUser) []string {
	var problems []string

	if trimmedLen(u.Name) < r.NameMinLength {
		problems = append(problems, fmt.Sprintf("name must be at least %d characters", r.NameMinLength))
	}
	if strings.TrimSpace(u.Category) == "" {
		problems = append(problems, "category is required")
	}
	if utf8.RuneCountInString(u.Password) < r.PasswordMinLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", r.PasswordMinLength))
	}
	if !u.Role.Valid() {
		problems = append(problems, "choose a valid role")
	}
	if u.Email != "" && !emailRe.MatchString(u.Email) {
		problems = append(problems, "email format is not valid")
	}

	return problems
}

// ParseObjectives splits a comma separated list, trimming items and
// dropping empty ones. The result is never nil.
func ParseObjectives(text string) []string {
	out := []string{}
	for _, part := range strings.Split(text, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
