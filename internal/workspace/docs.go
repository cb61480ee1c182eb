package workspace

import (
	"bufio"
	"os"
	"strings"
)

// DocLimit is how many characters of each document Docs returns.
const DocLimit = 2000

// DocNames are the markdown documents shown on the agent detail page.
var DocNames = []string{
	"SOUL.md",
	"AGENTS.md",
	"USER.md",
	"IDENTITY.md",
	"TOOLS.md",
	"MEMORY.md",
	"HEARTBEAT.md",
}

// HeartbeatFile holds an agent's periodic instructions.
const HeartbeatFile = "HEARTBEAT.md"

// Docs returns the leading DocLimit characters of each DocNames file present
// at the workspace root. Unreadable files and symlinks leading out of the
// workspace are skipped.
func (w Workspace) Docs() map[string]string {
	docs := make(map[string]string)
	if !w.Exists() {
		return docs
	}
	for _, name := range DocNames {
		p, err := w.Resolve(name)
		if err != nil {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		docs[name] = truncate(strings.ToValidUTF8(string(data), ""), DocLimit)
	}
	return docs
}

// HasSchedule reports whether HEARTBEAT.md contains an instruction, i.e. a
// line that is not blank, a heading or part of an HTML comment.
func (w Workspace) HasSchedule() bool {
	p, err := w.Resolve(HeartbeatFile)
	if err != nil {
		return false
	}
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()

	inComment := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		for line != "" {
			if inComment {
				end := strings.Index(line, "-->")
				if end < 0 {
					line = ""
					break
				}
				inComment = false
				line = strings.TrimSpace(line[end+3:])
				continue
			}
			start := strings.Index(line, "<!--")
			if start < 0 {
				break
			}
			if strings.TrimSpace(line[:start]) != "" {
				return true
			}
			inComment = true
			line = line[start+4:]
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return true
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
