package project

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ksyq12/projctl/internal/errors"
)

// ParseEnv reads KEY=VALUE pairs in dotenv format. Quotes and escapes are
// resolved, so the result holds the literal values.
func ParseEnv(r io.Reader) (map[string]string, error) {
	env, err := godotenv.Parse(r)
	if err != nil {
		return nil, errors.InvalidSpecf("invalid env file: %v", err)
	}
	return env, nil
}

// MarshalEnv renders env in the env_file format of docker stack deploy:
// one raw KEY=value line per key, sorted, with no quoting. Values that span
// lines cannot be expressed and are rejected.
func MarshalEnv(env map[string]string) (string, error) {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		if !envKeyRe.MatchString(k) {
			return "", errors.InvalidSpecf("env key %q is not a valid variable name", k)
		}
		if !IsSingleLine(env[k]) {
			return "", errors.InvalidSpecf("env value of %s must be a single line", k)
		}
		lines = append(lines, k+"="+env[k])
	}
	return strings.Join(lines, "\n"), nil
}

// ParseEnvFile reads a file written by MarshalEnv. Everything after the
// first "=" is the value, taken as is.
func ParseEnvFile(r io.Reader) (map[string]string, error) {
	env := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimLeft(scanner.Text(), " \t")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || !envKeyRe.MatchString(key) {
			return nil, errors.InvalidSpecf("invalid env line %q", key)
		}
		env[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, "failed to read env file", err)
	}
	return env, nil
}

// IsSingleLine reports whether s can be stored as one env_file line.
func IsSingleLine(s string) bool {
	return !strings.ContainsAny(s, "\r\n\x00")
}
