package fixtures

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rustnet/http-contract-tests/message"
)

const fixtureExt = ".txt"

var (
	ErrFixtureMissing   = errors.New("fixture missing")
	ErrFixtureEmpty     = errors.New("fixture empty")
	ErrFixtureMalformed = errors.New("fixture malformed")
)

// Discover lists the fixtures in dir as test cases of the given suite, ordered by file name.
// Files that do not follow the <method>_<slug>.txt convention are ignored.
func Discover(dir string, suite Suite) ([]TestCase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading fixture directory %s: %w", dir, err)
	}
	var cases []TestCase
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fixtureExt {
			continue
		}
		name := strings.TrimSuffix(e.Name(), fixtureExt)
		method, slug, ok := SplitName(name)
		if !ok {
			continue
		}
		cases = append(cases, TestCase{
			Name:        name,
			Method:      method,
			Target:      DecodeTarget(method, slug),
			Suite:       suite,
			FixturePath: filepath.Join(dir, e.Name()),
		})
	}
	sort.SliceStable(cases, func(i, j int) bool { return cases[i].Name < cases[j].Name })
	return cases, nil
}

// Load reads and parses the fixture at path.
func Load(path string) (message.Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return message.Response{}, fmt.Errorf("%w: %s", ErrFixtureMissing, path)
		}
		return message.Response{}, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return message.Response{}, fmt.Errorf("%w: %s", ErrFixtureEmpty, path)
	}
	resp, err := message.ParseStrict(text)
	if err != nil {
		return message.Response{}, fmt.Errorf("%w: %s: %s", ErrFixtureMalformed, path, err)
	}
	return resp, nil
}
