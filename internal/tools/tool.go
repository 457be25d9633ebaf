package tools

import "fmt"

type Tool interface {
	Name() string
	Description() string
	Execute(args map[string]any) (string, error)
}

type ToolName string

const (
	ToolNameGitDiff   ToolName = "git_diff"
	ToolNameGitShow   ToolName = "git_show"
	ToolNameReadFile  ToolName = "read_file"
	ToolNameWriteFile ToolName = "write_file"
)

type Registry struct {
	tools map[ToolName]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[ToolName]Tool),
	}
}

func (r *Registry) Register(name ToolName, tool Tool) {
	r.tools[name] = tool
}

func (r *Registry) Get(name ToolName) Tool {
	tool, exists := r.tools[name]
	if !exists {
		panic(fmt.Sprintf("BUG: Requested tool '%s' not found in Registry", name))
	}
	return tool
}

// NewDefaultRegistry registers the git and file tools operating on the
// repository checked out in dir.
func NewDefaultRegistry(dir string) *Registry {
	registry := NewRegistry()
	toolsToRegister := map[ToolName]Tool{
		ToolNameGitDiff:   &GitDiffTool{Dir: dir},
		ToolNameGitShow:   &GitShowTool{Dir: dir},
		ToolNameReadFile:  &ReadFileTool{},
		ToolNameWriteFile: &WriteFileTool{},
	}
	for name, tool := range toolsToRegister {
		registry.Register(name, tool)
	}
	return registry
}
