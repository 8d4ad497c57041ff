package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
)

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func sessionLine(s models.Session) string {
	return fmt.Sprintf("%-44s  %-34s  %-12s %4d min  %s",
		s.ID, truncate(s.Title, 34), s.Difficulty, s.Duration, s.CreatorName)
}

func sessionDetails(s models.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Title)
	fmt.Fprintf(&b, "  id:          %s\n", s.ID)
	fmt.Fprintf(&b, "  difficulty:  %s\n", s.Difficulty)
	fmt.Fprintf(&b, "  duration:    %d min\n", s.Duration)
	fmt.Fprintf(&b, "  objective:   %s\n", s.MainObjective)
	if len(s.SecondaryObjectives) > 0 {
		fmt.Fprintf(&b, "  secondary:   %s\n", strings.Join(s.SecondaryObjectives, "; "))
	}
	if m := s.Materials.String(); m != "" {
		fmt.Fprintf(&b, "  materials:   %s\n", m)
	}
	if s.ImageData != nil {
		fmt.Fprintf(&b, "  image:       attached (%d bytes)\n", len(*s.ImageData))
	}
	fmt.Fprintf(&b, "  created by:  %s on %s\n", s.CreatorName, s.CreatedAt)
	if !s.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "  updated:     %s\n", s.UpdatedAt)
	}
	fmt.Fprintf(&b, "\n%s\n", s.Description)
	return b.String()
}

func userLine(u models.User) string {
	status := "active"
	if !u.Active {
		status = "inactive"
	}
	return fmt.Sprintf("%-42s  %-26s  %-13s  %-16s  %-8s  %s",
		u.ID, truncate(u.Name, 26), u.Role.Label(), truncate(u.Category, 16), status, u.LastAccess)
}
