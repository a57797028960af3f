package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainCmd(t *testing.T) {
	t.Run("rejects a non-positive limit before loading config", func(t *testing.T) {
		t.Setenv("QUEUE_DRIVER", "memory")
		t.Setenv("KEY_STRATEGY", "uuid")

		for _, limit := range []string{"0", "-1"} {
			var out bytes.Buffer
			root := rootCmd()
			root.SetOut(&out)
			root.SetErr(&out)
			root.SetArgs([]string{"drain", "--limit", limit})

			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--limit must be positive")
		}
	})

	t.Run("needs the postgres queue", func(t *testing.T) {
		t.Setenv("QUEUE_DRIVER", "memory")
		t.Setenv("KEY_STRATEGY", "uuid")

		var out bytes.Buffer
		root := rootCmd()
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs([]string{"drain"})

		err := root.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "QUEUE_DRIVER=postgres")
	})
}
