package middleware

import (
	"encoding/json"
	"io"
	"strings"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

// jsonLines collects zerolog output, one decoded entry per write
type jsonLines struct {
	entries []map[string]any
}

func (j *jsonLines) Write(p []byte) (int, error) {
	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err != nil {
		return 0, err
	}
	j.entries = append(j.entries, entry)
	return len(p), nil
}
