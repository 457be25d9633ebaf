package tools

import (
	"testing"

	"github.com/agusespa/prchunker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeScriptParser_ExtractSpans(t *testing.T) {
	parser, err := NewTypeScriptParser()
	require.NoError(t, err)

	runSpanCases(t, parser, "service.ts", []spanCase{
		{
			name: "functions, arrow functions and classes",
			content: `import { Injectable } from "core";

export function add(a: number, b: number): number {
  return a + b;
}

export const handler = async (req: Request) => {
  return req;
};

@Injectable()
class Service {
  private count = 0;

  constructor(private readonly repo: Repo) {}

  increment(): void {
    this.count++;
  }

  onClick = () => {
    this.count = 0;
  };
}

abstract class Base {
  abstract run(): void;
}
`,
			expected: []types.SourceSpan{
				fn("add", 3, 5),
				fn("handler", 7, 9),
				class("Service", 12, 24),
				fn("Service.constructor", 15, 15),
				fn("Service.increment", 17, 19),
				fn("Service.onClick", 21, 23),
				class("Base", 26, 28),
			},
		},
		{
			name: "plain values are not spans",
			content: `const limit = 10;
let names: string[] = [];
`,
			expected: nil,
		},
	})
}

func TestTypeScriptParser_ShouldExcludeFile(t *testing.T) {
	parser, err := NewTypeScriptParser()
	require.NoError(t, err)

	assert.True(t, parser.ShouldExcludeFile("node_modules/lib/index.ts"))
	assert.True(t, parser.ShouldExcludeFile("types/global.d.ts"))
	assert.True(t, parser.ShouldExcludeFile("dist/main.ts"))
	assert.False(t, parser.ShouldExcludeFile("src/app.ts"))
}
