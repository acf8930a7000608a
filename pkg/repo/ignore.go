package repo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreFileName is the per-repository ignore file read from the root.
const IgnoreFileName = ".kiwiignore"

// IgnoreRules holds the patterns of an ignore file. Patterns follow the
// familiar gitignore shape: '#' comments, '!' negation, a trailing '/' for
// directories only, and '**' spanning path segments. A pattern without a
// slash matches the base name at any depth; one with a slash matches the
// path relative to the root. The last matching pattern wins.
type IgnoreRules struct {
	rules []ignoreRule
}

type ignoreRule struct {
	glob     string
	negate   bool
	dirOnly  bool
	anchored bool
	re       *regexp.Regexp // set for '**' patterns
}

// LoadIgnoreRules reads IgnoreFileName from the repository root. A missing
// file yields empty rules.
func (r *Repo) LoadIgnoreRules() (*IgnoreRules, error) {
	f, err := os.Open(filepath.Join(r.RootDir, IgnoreFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &IgnoreRules{}, nil
		}
		return nil, fmt.Errorf("load ignore rules: %w", err)
	}
	defer f.Close()
	rules, err := ParseIgnoreRules(f)
	if err != nil {
		return nil, fmt.Errorf("load ignore rules: %w", err)
	}
	return rules, nil
}

// ParseIgnoreRules parses ignore patterns, one per line.
func ParseIgnoreRules(rd io.Reader) (*IgnoreRules, error) {
	out := &IgnoreRules{}
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		if rule, ok := parseIgnoreRule(sc.Text()); ok {
			out.rules = append(out.rules, rule)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseIgnoreRule(line string) (ignoreRule, bool) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}
	var rule ignoreRule
	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		rule.anchored = true
		line = strings.TrimLeft(line, "/")
	}
	if line == "" {
		return ignoreRule{}, false
	}
	rule.anchored = rule.anchored || strings.Contains(line, "/")
	rule.glob = line
	if strings.Contains(line, "**") {
		re, err := regexp.Compile(globstarRegexp(line))
		if err != nil {
			return ignoreRule{}, false
		}
		rule.re = re
	}
	return rule, true
}

// Len returns the number of parsed patterns.
func (ir *IgnoreRules) Len() int {
	if ir == nil {
		return 0
	}
	return len(ir.rules)
}

// Ignored reports whether rel, a '/'-separated path relative to the root,
// is excluded. isDir marks directory entries.
func (ir *IgnoreRules) Ignored(rel string, isDir bool) bool {
	if ir == nil {
		return false
	}
	ignored := false
	for _, rule := range ir.rules {
		if rule.dirOnly && !isDir {
			continue
		}
		if rule.match(rel) {
			ignored = !rule.negate
		}
	}
	return ignored
}

func (rule ignoreRule) match(rel string) bool {
	target := rel
	if !rule.anchored {
		target = path.Base(rel)
	}
	if rule.re != nil {
		return rule.re.MatchString(target)
	}
	ok, _ := path.Match(rule.glob, target)
	return ok
}

// globstarRegexp translates a glob containing '**' into an anchored regexp.
func globstarRegexp(glob string) string {
	var b strings.Builder
	b.WriteByte('^')
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			if strings.HasPrefix(glob[i:], "**/") {
				b.WriteString("(?:.*/)?")
				i += 2
			} else if strings.HasPrefix(glob[i:], "**") {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteByte('$')
	return b.String()
}
