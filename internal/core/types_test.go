package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTurnConstructors(t *testing.T) {
	u := UserTurn(TextPart("hi"), BlobPart(PartImage, "image/jpeg", []byte{1}))
	assert.Equal(t, RoleUser, u.Role)
	assert.Len(t, u.Parts, 2)
	assert.Equal(t, PartImage, u.Parts[1].Kind)

	m := ModelTurn("hello")
	assert.Equal(t, RoleModel, m.Role)
	assert.Equal(t, []Part{TextPart("hello")}, m.Parts)
}

func TestTurnRoleAndGuildRoleCoexist(t *testing.T) {
	var tr TurnRole = RoleSystem
	r := Role{ID: "r1", Name: "mods"}

	assert.Equal(t, "system", string(tr))
	assert.Equal(t, "mods", r.Name)
}
