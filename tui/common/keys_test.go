package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_HasCriticalBindings(t *testing.T) {
	km := DefaultKeyMap()
	require.Equal(t, "?", km.Help.Keys()[0])
	require.Contains(t, km.Quit.Keys(), "ctrl+c")
	require.Equal(t, "enter", km.Menu.Keys()[0])
}

func TestDefaultKeyMap_NoDuplicateKeysInHelp(t *testing.T) {
	km := DefaultKeyMap()
	seen := map[string]string{}
	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				prev, dup := seen[k]
				require.False(t, dup, "key %q bound to %q and %q", k, prev, b.Help().Desc)
				seen[k] = b.Help().Desc
			}
		}
	}
}
