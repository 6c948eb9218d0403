package control_test

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/adapters/control"
)

func TestWriter_WriteBatch_Framing(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		goldenName string
	}{
		{
			name:       "single line batch",
			lines:      []string{"1:change:/proj/a.js"},
			goldenName: "batch_single",
		},
		{
			name:       "multi line batch",
			lines:      []string{"1:create:/proj/a.js", "1:change:/proj/b.js", "1:delete:/proj/c.js"},
			goldenName: "batch_multi",
		},
		{
			name:       "path with colons",
			lines:      []string{"2:change:/proj/c:ool.js"},
			goldenName: "batch_colon_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			w := control.NewWriter(buf)

			require.NoError(t, w.WriteBatch(tt.lines))

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestWriter_WriteBatch_EmptyWritesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	w := control.NewWriter(buf)

	require.NoError(t, w.WriteBatch(nil))
	assert.Zero(t, buf.Len())
}

// syncBuffer serializes writes so the test can run writers concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestWriter_WriteBatch_ConcurrentBatchesStayContiguous(t *testing.T) {
	out := &syncBuffer{}
	w := control.NewWriter(out)

	var wg sync.WaitGroup
	for uid := 1; uid <= 10; uid++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lines := []string{
				fmt.Sprintf("%d:create:/proj/a.js", uid),
				fmt.Sprintf("%d:change:/proj/b.js", uid),
			}
			assert.NoError(t, w.WriteBatch(lines))
		}()
	}
	wg.Wait()

	// Every chunk between terminators must be one whole batch, with both
	// lines carrying the same uid.
	output := out.buf.String()
	chunks := strings.Split(strings.TrimSuffix(output, "<flush>\n"), "<flush>\n")
	assert.Len(t, chunks, 10)
	for _, chunk := range chunks {
		lines := strings.Split(strings.TrimSuffix(chunk, "\n"), "\n")
		require.Len(t, lines, 2)
		uid := strings.SplitN(lines[0], ":", 2)[0]
		assert.Equal(t, uid+":create:/proj/a.js", lines[0])
		assert.Equal(t, uid+":change:/proj/b.js", lines[1])
	}
}
