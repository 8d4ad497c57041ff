package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterials_KeepsShape(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		isList bool
		str    string
	}{
		{name: "list", in: `["Conos","Balones"]`, isList: true, str: "Conos, Balones"},
		{name: "empty list", in: `[]`, isList: true, str: ""},
		{name: "text", in: `"Conos y balones"`, isList: false, str: "Conos y balones"},
		{name: "empty text", in: `""`, isList: false, str: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Materials
			require.NoError(t, json.Unmarshal([]byte(tt.in), &m))
			assert.Equal(t, tt.isList, m.IsList())
			assert.Equal(t, tt.str, m.String())

			out, err := json.Marshal(m)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(out))
		})
	}
}

func TestMaterials_NullAndInvalid(t *testing.T) {
	var m Materials
	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(out))

	require.Error(t, json.Unmarshal([]byte(`42`), &m))
	require.Error(t, json.Unmarshal([]byte(`[1,2]`), &m))
}

func TestTimestamp_JSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 5, 10, 20, 30, 123456789, time.FixedZone("x", 3600)))
	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05T09:20:30.123Z"`, string(b))

	var back Timestamp
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, ts.Equal(back.Time))

	var empty Timestamp
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.True(t, empty.IsZero())

	b, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &empty))
}

func TestTimestamp_SameDay(t *testing.T) {
	ref := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	assert.True(t, NewTimestamp(ref.Add(-11*time.Hour)).SameDay(ref))
	assert.False(t, NewTimestamp(ref.Add(-13*time.Hour)).SameDay(ref))
	assert.False(t, Timestamp{}.SameDay(ref))
}

func TestSession_RoundTripPreservesFields(t *testing.T) {
	raw := `{"id":"session_001","title":"T","description":"D","mainObjective":"M",` +
		`"secondaryObjectives":["a","b"],"difficulty":"Intermedio","duration":45,` +
		`"materials":["Conos"],"imageData":null,"imageUrl":null,"creatorId":"trainer001",` +
		`"creatorName":"Entrenador Principal","createdAt":"2024-01-01T00:00:00.000Z",` +
		`"updatedAt":"2024-01-01T00:00:00.000Z","active":true}`

	var s Session
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestUserProjectionAndPatch(t *testing.T) {
	u := User{
		ID: "u1", Name: "Ana", Category: "CADETE", Password: "secret1",
		Role: RoleTrainer, Email: "ana@example.com", Active: true,
	}

	c := u.Projection()
	assert.Equal(t, "u1", c.ID)
	assert.False(t, c.IsAdmin())
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")

	name := "Ana María"
	inactive := false
	UserPatch{ID: "u1", Name: &name, Active: &inactive}.Apply(&u)

	want := User{
		ID: "u1", Name: "Ana María", Category: "CADETE", Password: "secret1",
		Role: RoleTrainer, Email: "ana@example.com", Active: false,
	}
	if diff := cmp.Diff(want, u); diff != "" {
		t.Errorf("patched user mismatch (-want +got):\n%s", diff)
	}
}

func TestOwnedBy(t *testing.T) {
	s := Session{CreatorID: "trainer001"}
	assert.True(t, s.OwnedBy(CurrentUser{ID: "trainer001", Role: RoleTrainer}))
	assert.False(t, s.OwnedBy(CurrentUser{ID: "other", Role: RoleTrainer}))
	assert.True(t, s.OwnedBy(CurrentUser{ID: "admin001", Role: RoleAdmin}))
}

func TestRoleAndDifficulty(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("coach").Valid())
	assert.Equal(t, "Entrenador", RoleTrainer.Label())
	assert.True(t, DifficultyAdvanced.Valid())
	assert.False(t, Difficulty("Experto").Valid())
}
