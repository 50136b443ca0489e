package config

import (
	"bufio"
	"os"
	"strings"
)

// PlayerAliases maps short names typed on the command line to the player
// names used in the shot log. Lookups ignore case.
type PlayerAliases struct {
	Aliases map[string]string
}

// LoadPlayerAliases reads an aliases file of "alias = Player Name" lines.
// A missing file (or empty path) yields an empty set without an error.
// Blank lines, comments and malformed lines are skipped.
func LoadPlayerAliases(path string) (*PlayerAliases, error) {
	pa := &PlayerAliases{
		Aliases: make(map[string]string),
	}
	if path == "" {
		return pa, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pa, nil
		}
		return pa, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		alias := strings.TrimSpace(line[:idx])
		player := strings.TrimSpace(line[idx+1:])
		if alias == "" || player == "" {
			continue
		}

		pa.Aliases[strings.ToLower(alias)] = player
	}

	if err := scanner.Err(); err != nil {
		return pa, err
	}

	return pa, nil
}

// Resolve returns the player an alias points to, or name unchanged.
func (pa *PlayerAliases) Resolve(name string) string {
	if pa == nil {
		return name
	}
	if player, ok := pa.Aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return player
	}
	return name
}
