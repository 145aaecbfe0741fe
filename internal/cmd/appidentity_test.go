package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeswinckle/appraisals/internal/appid"
)

func TestApplyIdentity(t *testing.T) {
	identity, err := appid.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, identity)

	applyIdentity(identity)

	assert.Equal(t, "appraisals", rootCmd.Use)
	assert.True(t, strings.HasPrefix(rootCmd.Long, "appraisals - "), rootCmd.Long)

	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Usage, "$XDG_CONFIG_HOME/appraisals/config.yaml")
}

func TestApplyIdentityKeepsDefaultsForEmptyFields(t *testing.T) {
	originalUse, originalShort := rootCmd.Use, rootCmd.Short
	t.Cleanup(func() {
		rootCmd.Use, rootCmd.Short = originalUse, originalShort
	})

	applyIdentity(&appidentity.Identity{})

	assert.Equal(t, originalUse, rootCmd.Use)
	assert.Equal(t, originalShort, rootCmd.Short)
}
