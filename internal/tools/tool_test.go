package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockTool struct {
	name        string
	description string
	result      string
	err         error
	calls       []map[string]any
}

func (m *mockTool) Name() string {
	return m.name
}

func (m *mockTool) Description() string {
	return m.description
}

func (m *mockTool) Execute(args map[string]any) (string, error) {
	m.calls = append(m.calls, args)
	return m.result, m.err
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	if registry == nil {
		t.Fatal("Expected registry to be created")
	}
	if len(registry.tools) != 0 {
		t.Error("Expected empty registry initially")
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	tool := &mockTool{name: "test_tool", description: "A test tool"}

	const existentToolName ToolName = "existent_tool"
	const nonexistentToolName ToolName = "nonexistent_tool"

	assert.Panics(t, func() { registry.Get(nonexistentToolName) })

	registry.Register(existentToolName, tool)
	assert.Same(t, tool, registry.Get(existentToolName))
}

func TestRegistry_RegisterOverwrite(t *testing.T) {
	registry := NewRegistry()
	tool1 := &mockTool{name: "test_tool", description: "Tool 1"}
	tool2 := &mockTool{name: "test_tool", description: "Tool 2"}

	const testToolName ToolName = "test_tool"

	registry.Register(testToolName, tool1)
	registry.Register(testToolName, tool2)

	assert.Same(t, tool2, registry.Get(testToolName))
	assert.Len(t, registry.tools, 1)
}

func TestNewDefaultRegistry(t *testing.T) {
	registry := NewDefaultRegistry("/repo")

	for _, name := range []ToolName{ToolNameGitDiff, ToolNameGitShow, ToolNameReadFile, ToolNameWriteFile} {
		tool := registry.Get(name)
		assert.Equal(t, string(name), tool.Name())
		assert.NotEmpty(t, tool.Description())
	}

	assert.Equal(t, "/repo", registry.Get(ToolNameGitDiff).(*GitDiffTool).Dir)
	assert.Equal(t, "/repo", registry.Get(ToolNameGitShow).(*GitShowTool).Dir)
}
