package memory_test

import (
	"testing"

	"github.com/aretw0/espalier/internal/testutils"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/module"
	contract "github.com/aretw0/espalier/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	data := map[string]string{
		"NAT":     "name: NAT\nsorts: [Nat]\n",
		"EXAMPLE": "name: EXAMPLE\nsorts: [Symbol]\n",
	}

	bytesData := make(map[string][]byte)
	for k, v := range data {
		bytesData[k] = []byte(v)
	}

	loader := memory.NewLoader(data)

	contract.ModuleLoaderContractTest(t, loader, bytesData)
}

func TestInMemoryLoader_FromDefinitions(t *testing.T) {
	loader, err := memory.NewFromDefinitions(testutils.ExampleDefinition(), testutils.NatDefinition())
	require.NoError(t, err)

	names, err := loader.ListModules()
	require.NoError(t, err)
	assert.Equal(t, []string{"EXAMPLE", "NAT"}, names)

	raw, err := loader.GetModule("EXAMPLE")
	require.NoError(t, err)
	mod, err := module.Load(raw)
	require.NoError(t, err)
	assert.Len(t, mod.Rules, 3)
	assert.Equal(t, []string{"abc", "loop"}, mod.StrategyNames())

	_, err = memory.NewFromDefinitions(module.Definition{})
	assert.Error(t, err)
}
