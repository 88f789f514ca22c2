package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandFlags(t *testing.T) {
	show := flag.NewFlagSet("show", flag.ContinueOnError)
	sc := &showCmd{}
	sc.SetFlags(show)
	require.NoError(t, show.Parse([]string{"-cluster", "testnet", "-v", "addr"}))
	assert.Equal(t, "testnet", sc.cluster)
	assert.True(t, sc.verbose)
	assert.Equal(t, []string{"addr"}, show.Args())

	token := flag.NewFlagSet("token", flag.ContinueOnError)
	(&tokenCmd{}).SetFlags(token)
	assert.NotNil(t, token.Lookup("config"))
	assert.Nil(t, token.Lookup("cluster"), "token lookups do not depend on a cluster")
}
