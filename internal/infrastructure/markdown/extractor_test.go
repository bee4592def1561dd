package markdown

import (
	"testing"
)

func TestExtractFencedBlocks(t *testing.T) {
	doc := "# Guide\n" + // 1
		"\n" + // 2
		"```bash\n" + // 3
		"# install deps\n" + // 4
		"npm install\n" + // 5
		"$ npm test\n" + // 6
		"docker run \\\n" + // 7
		"  --rm alpine\n" + // 8
		"```\n" + // 9
		"\n" + // 10
		"```go\n" + // 11
		"fmt.Println(\"hi\")\n" + // 12
		"```\n" // 13

	got := NewExtractor().Extract("docs/guide.md", []byte(doc))

	want := []struct {
		cmd  string
		line int
	}{
		{"npm install", 5},
		{"npm test", 6},
		{"docker run --rm alpine", 7},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d commands (%+v), want %d", len(got), got, len(want))
	}
	for i, w := range want {
		if got[i].Command != w.cmd || got[i].Line != w.line {
			t.Errorf("command %d = %q@%d, want %q@%d", i, got[i].Command, got[i].Line, w.cmd, w.line)
		}
		if got[i].Type != TypeCodeBlock || got[i].Language != "bash" || got[i].File != "docs/guide.md" {
			t.Errorf("command %d metadata = %+v", i, got[i])
		}
	}
}

func TestExtractConsoleBlocksKeepOnlyPromptedLines(t *testing.T) {
	doc := "```console\n$ go version\ngo version go1.22.0 linux/amd64\n```\n"
	got := NewExtractor().Extract("README.md", []byte(doc))
	if len(got) != 1 || got[0].Command != "go version" {
		t.Fatalf("got %+v, want only go version", got)
	}
}

func TestExtractUnlabelledBlocksRequireKnownTool(t *testing.T) {
	doc := "```\nmake build\n{\"status\": \"ok\"}\n```\n"
	got := NewExtractor().Extract("README.md", []byte(doc))
	if len(got) != 1 || got[0].Command != "make build" {
		t.Fatalf("got %+v, want only make build", got)
	}
}

func TestExtractInlineCode(t *testing.T) {
	doc := "Run `npm run lint` before pushing.\n\nThe `config` key and `git` alone are ignored.\n"
	got := NewExtractor().Extract("CONTRIBUTING.md", []byte(doc))
	if len(got) != 1 {
		t.Fatalf("got %+v, want one inline command", got)
	}
	if got[0].Command != "npm run lint" || got[0].Type != TypeInlineCode || got[0].Line != 1 {
		t.Fatalf("unexpected inline command %+v", got[0])
	}
}

func TestOffsetToLine(t *testing.T) {
	starts := computeLineStarts([]byte("a\nbb\n\nccc"))
	cases := map[int]int{0: 1, 1: 1, 2: 2, 5: 3, 6: 4, 8: 4}
	for offset, want := range cases {
		if got := offsetToLine(starts, offset); got != want {
			t.Errorf("offsetToLine(%d) = %d, want %d", offset, got, want)
		}
	}
}
