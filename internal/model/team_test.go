package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeam(t *testing.T) {
	tests := []struct {
		input   string
		want    Team
		wantErr bool
	}{
		{"RECTO", TeamRECTO, false},
		{"recto", TeamRECTO, false},
		{"  Tondo ", TeamTONDO, false},
		{"earist", TeamEARIST, false},
		{"", NoTeam, false},
		{"   ", NoTeam, false},
		{"MANILA", NoTeam, true},
		{"REC TO", NoTeam, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTeam(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSameTeam(t *testing.T) {
	assert.True(t, SameTeam("RECTO", " recto "))
	assert.True(t, SameTeam(TeamARISE, "Arise"))
	assert.False(t, SameTeam(TeamARISE, TeamRECTO))
	assert.False(t, SameTeam(NoTeam, NoTeam))
	assert.False(t, SameTeam(TeamARISE, NoTeam))
}
