package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

type ChangedFile struct {
	Path         string
	ChangedLines []int
	Deleted      bool
}

// Regex for chunk header: @@ -oldStart,oldLen +newStart,newLen @@
var chunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// GetChangedFiles runs git diff in dir and returns the changed files with line
// numbers. Paths are relative to dir and changes outside it are left out, so
// they match declaration positions recorded by a scan rooted at dir.
func GetChangedFiles(ctx context.Context, dir, baseRef string) ([]ChangedFile, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--relative", "-U0", baseRef)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}

	return ParseDiff(output)
}

// ParseDiff reads unified diff output produced with -U0.
//
// For modified and added files ChangedLines holds new-file line numbers. A hunk
// that only removes lines marks the line it was removed before. Deleted files
// report their old line numbers.
func ParseDiff(output []byte) ([]ChangedFile, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var changes []ChangedFile
	var currentFile *ChangedFile

	flush := func() {
		if currentFile != nil {
			changes = append(changes, *currentFile)
		}
		currentFile = nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "diff --git") {
			flush()
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				// a/path/to/file b/path/to/file
				currentFile = &ChangedFile{Path: strings.TrimPrefix(parts[3], "b/"), ChangedLines: []int{}}
			}
			continue
		}

		if currentFile == nil {
			continue
		}

		if strings.HasPrefix(line, "+++ /dev/null") {
			currentFile.Deleted = true
			continue
		}

		if !strings.HasPrefix(line, "@@") {
			continue
		}
		m := chunkHeader.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		start, count := atoi(m[3]), 1
		if m[4] != "" {
			count = atoi(m[4])
		}
		if currentFile.Deleted {
			start, count = atoi(m[1]), 1
			if m[2] != "" {
				count = atoi(m[2])
			}
		}
		if count == 0 {
			currentFile.ChangedLines = append(currentFile.ChangedLines, start+1)
			continue
		}
		for i := 0; i < count; i++ {
			currentFile.ChangedLines = append(currentFile.ChangedLines, start+i)
		}
	}
	flush()

	return changes, scanner.Err()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
