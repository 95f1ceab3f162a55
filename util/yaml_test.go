package util

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type yamlHolder struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestUnmarshalYamlStrict(t *testing.T) {
	var holder yamlHolder
	require.NoError(t, UnmarshalYamlStrict([]byte("name: a\ncount: 2\n"), &holder))
	assert.Equal(t, yamlHolder{"a", 2}, holder)

	assert.Error(t, UnmarshalYamlStrict([]byte("name: a\nunknown: 1\n"), &holder))
}

func TestUnmarshalYamlFile(t *testing.T) {
	path := t.TempDir() + "/test.yml"
	require.NoError(t, os.WriteFile(path, []byte("name: b\ncount: 3\n"), 0o644))

	var holder yamlHolder
	require.NoError(t, UnmarshalYamlFile(path, &holder))
	assert.Equal(t, yamlHolder{"b", 3}, holder)

	assert.Error(t, UnmarshalYamlFile(path+".missing", &holder))
}

func TestMarshalYaml(t *testing.T) {
	text, err := MarshalYaml(yamlHolder{"c", 4})
	require.NoError(t, err)
	assert.Equal(t, "name: c\ncount: 4\n", text)
}
