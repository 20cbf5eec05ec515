package sink

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkAppendsJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qa.jsonl")
	s, err := NewFileSink(path)
	require.NoError(t, err)

	require.NoError(t, s.Write(Record{Question: "q1", Answer: "a1", Sources: []string{"x.md"}, Engine: "linear"}))
	require.NoError(t, s.Write(Record{Question: "q2", Answer: "a2", Engine: "graph"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, records, 2)
	assert.Equal(t, "q1", records[0].Question)
	assert.Equal(t, []string{"x.md"}, records[0].Sources)
	assert.False(t, records[0].Timestamp.IsZero())
	assert.Equal(t, "graph", records[1].Engine)
}

func TestFileSinkConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa.jsonl")
	s, err := NewFileSink(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Write(Record{Question: "q", Answer: "a", Engine: "linear"}))
		}()
	}
	wg.Wait()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		assert.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		lines++
	}
	assert.Equal(t, 20, lines)
}
