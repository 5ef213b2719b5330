package app

import (
	"bufio"
	"os"
	"strings"
)

// shebangSpec reads the first line of path and, if it's a shebang
// naming a python interpreter (directly or via /usr/bin/env), returns
// the specifier it names: e.g. "#!/usr/bin/env python3.11" -> "python3.11".
// ok is false if path isn't readable, has no shebang, or the shebang
// doesn't mention python.
func shebangSpec(path string) (spec string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", false
	}
	line := scanner.Text()
	if !strings.HasPrefix(line, "#!") {
		return "", false
	}

	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return "", false
	}

	target := fields[0]
	if strings.HasSuffix(target, "/env") && len(fields) > 1 {
		target = fields[1]
	}

	name := target
	if idx := strings.LastIndex(target, "/"); idx != -1 {
		name = target[idx+1:]
	}
	if !strings.HasPrefix(name, "python") {
		return "", false
	}

	return name, true
}
