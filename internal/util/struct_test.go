package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/util"
)

type components struct {
	Name    string
	Handler func()
	Values  map[string]int
	hidden  *int
}

func TestIsStructInitialized(t *testing.T) {
	c := components{Handler: func() {}, Values: map[string]int{}}
	require.NoError(t, util.IsStructInitialized(c))
	require.NoError(t, util.IsStructInitialized(&c))

	c.Values = nil
	err := util.IsStructInitialized(&c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Values")
}

func TestIsStructInitializedRejectsNonStruct(t *testing.T) {
	var c *components
	require.Error(t, util.IsStructInitialized(c))
	require.Error(t, util.IsStructInitialized(42))
}

func TestGetEnvAsStringArrTrimmed(t *testing.T) {
	t.Setenv("CHAINSWAP_TEST_LIST", " a, b ,c ")
	assert.Equal(t, []string{"a", "b", "c"}, util.GetEnvAsStringArrTrimmed("CHAINSWAP_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, util.GetEnvAsStringArrTrimmed("CHAINSWAP_TEST_UNSET", []string{"x"}))
}

func TestGetEnvEnumFallsBack(t *testing.T) {
	t.Setenv("CHAINSWAP_TEST_ENUM", "bogus")
	assert.Equal(t, "memory", util.GetEnvEnum("CHAINSWAP_TEST_ENUM", "memory", []string{"memory", "redis"}))

	t.Setenv("CHAINSWAP_TEST_ENUM", "redis")
	assert.Equal(t, "redis", util.GetEnvEnum("CHAINSWAP_TEST_ENUM", "memory", []string{"memory", "redis"}))
}
