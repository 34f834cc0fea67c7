package sqlcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariables_Replace(t *testing.T) {
	vars := Variables{"old": "1"}
	vars.Replace(map[string]string{"a": "x", "": "ignored", "b": ""})
	assert.Equal(t, Variables{"a": "x", "b": ""}, vars)
}

func TestVariables_Expand(t *testing.T) {
	vars := Variables{"Env": "prod"}

	s, err := vars.Expand("app_$(Env)")
	require.NoError(t, err)
	assert.Equal(t, "app_prod", s)

	s, err = vars.Expand("no references $( here")
	require.NoError(t, err)
	assert.Equal(t, "no references $( here", s)

	_, err = vars.Expand("$(env)")
	assert.Equal(t, "SqlCmd variable 'env' is not defined.", err.Error())
}

func TestParseAssignments(t *testing.T) {
	vars, err := ParseAssignments([]string{"Env=prod", "Empty=", "Eq=a=b", "Env=test"})
	require.NoError(t, err)
	assert.Equal(t, Variables{"Env": "test", "Empty": "", "Eq": "a=b"}, vars)

	for _, bad := range []string{"novalue", "=x", "bad name=x"} {
		_, err = ParseAssignments([]string{bad})
		assert.Error(t, err, bad)
	}
}
