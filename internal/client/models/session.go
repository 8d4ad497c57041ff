package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Difficulty is the level of a training session.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Principiante"
	DifficultyIntermediate Difficulty = "Intermedio"
	DifficultyAdvanced     Difficulty = "Avanzado"
)

var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

// Materials is either free text or a list of items. Whichever form was
// decoded is the form that gets encoded again.
type Materials struct {
	Text  string
	Items []string
}

func TextMaterials(s string) Materials {
	return Materials{Text: s}
}

func ListMaterials(items ...string) Materials {
	if items == nil {
		items = []string{}
	}
	return Materials{Items: items}
}

func (m Materials) IsList() bool {
	return m.Items != nil
}

func (m Materials) String() string {
	if m.IsList() {
		return strings.Join(m.Items, ", ")
	}
	return m.Text
}

func (m Materials) MarshalJSON() ([]byte, error) {
	if m.IsList() {
		return json.Marshal(m.Items)
	}
	return json.Marshal(m.Text)
}

func (m *Materials) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*m = Materials{}
		return nil
	case len(b) > 0 && b[0] == '[':
		var items []string
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		if items == nil {
			items = []string{}
		}
		*m = Materials{Items: items}
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Materials{Text: s}
		return nil
	default:
		return fmt.Errorf("materials: unexpected JSON %s", b)
	}
}

// Session is a training-session record.
type Session struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	MainObjective       string     `json:"mainObjective"`
	SecondaryObjectives []string   `json:"secondaryObjectives"`
	Difficulty          Difficulty `json:"difficulty"`
	Duration            int        `json:"duration"`
	Materials           Materials  `json:"materials"`
	ImageData           *string    `json:"imageData"`
	ImageURL            *string    `json:"imageUrl"`
	CreatorID           string     `json:"creatorId"`
	CreatorName         string     `json:"creatorName"`
	CreatedAt           Timestamp  `json:"createdAt"`
	UpdatedAt           Timestamp  `json:"updatedAt"`
	Active              bool       `json:"active"`
}

// SessionInput is what a user submits when creating or editing a session.
// A nil ImageData on edit keeps the stored image.
type SessionInput struct {
	Title               string
	Description         string
	MainObjective       string
	SecondaryObjectives []string
	Difficulty          Difficulty
	Duration            int
	Materials           Materials
	ImageData           *string
}

// OwnedBy reports whether the given identity may modify s.
func (s Session) OwnedBy(actor CurrentUser) bool {
	return actor.IsAdmin() || s.CreatorID == actor.ID
}
