package tools

import (
	"testing"

	"github.com/agusespa/prchunker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeScriptParser_TSX(t *testing.T) {
	parser, err := NewTypeScriptParser()
	require.NoError(t, err)

	runSpanCases(t, parser, "App.tsx", []spanCase{
		{
			name: "components",
			content: `export const Button = ({ label }: Props) => {
  return <button>{label}</button>;
};

export default function App() {
  return <Button label="hi" />;
}
`,
			expected: []types.SourceSpan{
				fn("Button", 1, 3),
				fn("App", 5, 7),
			},
		},
	})
}

func TestTypeScriptParser_TSXElementsParse(t *testing.T) {
	parser, err := NewTypeScriptParser()
	require.NoError(t, err)

	content := []byte("const el = () => <div className=\"x\">hi</div>;\n")

	spans, err := parser.ExtractSpans("el.tsx", content, ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, []types.SourceSpan{fn("el", 1, 1)}, spans)
}
