package display

import (
	"bytes"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jsbind/annotation"
)

func TestTypeTree(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	out, err := TypeTree(annotation.MustParse("Array.<(number|string)>="))
	require.NoError(t, err)
	assert.Contains(t, out, `Named "Array"`)
	assert.Contains(t, out, "Union")
	assert.Contains(t, out, `Named "string"`)
	assert.Contains(t, out, "optional")
}

func TestTable(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	out, err := Table([]string{"ID", "OVERLOADS"}, [][]string{{"run-1", Itoa(12)}})
	require.NoError(t, err)
	assert.Contains(t, out, "OVERLOADS")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "12")
}

func TestShouldOutputJSON(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().Bool("json", false, "")
	child := &cobra.Command{Use: "child"}
	root.AddCommand(child)

	assert.False(t, ShouldOutputJSON(child))
	require.NoError(t, root.PersistentFlags().Set("json", "true"))
	assert.True(t, ShouldOutputJSON(child))
	assert.False(t, ShouldOutputJSON(nil))
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(&buf, map[string]int{"overloads": 3}))
	assert.Equal(t, "{\n  \"overloads\": 3\n}\n", buf.String())
}
