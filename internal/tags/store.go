// Package tags reads and writes the per-directory tag sidecar.
//
// The sidecar is a TOML file, but only a single top-level assignment of the
// form `tags = ["a", "b"]` is understood. Every other line is preserved
// verbatim when tags are rewritten.
package tags

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/navgator/navgator/internal/logging"
)

// SidecarName is the file holding a directory's tags.
const SidecarName = ".navgator.toml"

var tagLog = logging.ForComponent(logging.CompTags)

// SidecarPath returns the sidecar location for dir.
func SidecarPath(dir string) string {
	return filepath.Join(dir, SidecarName)
}

// Read returns the tags stored for dir. A missing or unreadable sidecar
// yields no tags.
func Read(dir string) []string {
	data, err := os.ReadFile(SidecarPath(dir))
	if err != nil {
		if !os.IsNotExist(err) {
			tagLog.Debug("sidecar_read_failed", slog.String("dir", dir), slog.String("error", err.Error()))
		}
		return nil
	}
	return Parse(string(data))
}

// stripComment drops everything from the first '#' on.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// tagsKey reports whether line assigns the top-level tags key and returns
// the text after '='.
func tagsKey(line string) (string, bool) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return "", false
	}
	if strings.TrimSpace(line[:eq]) != "tags" {
		return "", false
	}
	return strings.TrimSpace(line[eq+1:]), true
}

// Parse extracts the tags array from sidecar contents. The array may span
// several lines until the closing bracket. A value that is not a bracketed
// array yields no tags.
func Parse(contents string) []string {
	var buf strings.Builder
	inArray := false
	for _, line := range strings.Split(contents, "\n") {
		cleaned := strings.TrimSpace(stripComment(line))
		if cleaned == "" {
			continue
		}
		if !inArray {
			value, ok := tagsKey(cleaned)
			if !ok {
				continue
			}
			buf.WriteString(value)
			buf.WriteByte(' ')
			if strings.Contains(value, "[") {
				inArray = true
			}
			if strings.Contains(value, "]") {
				break
			}
			continue
		}
		buf.WriteString(cleaned)
		buf.WriteByte(' ')
		if strings.Contains(cleaned, "]") {
			break
		}
	}
	text := buf.String()
	open := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if open < 0 || end < open {
		return nil
	}
	return quotedStrings(text[open+1 : end])
}

// quotedStrings returns the non-empty double-quoted literals in s. Escapes
// are not interpreted: the next quote always closes the literal.
func quotedStrings(s string) []string {
	var out []string
	for {
		open := strings.IndexByte(s, '"')
		if open < 0 {
			return out
		}
		s = s[open+1:]
		end := strings.IndexByte(s, '"')
		if end < 0 {
			if s != "" {
				out = append(out, s)
			}
			return out
		}
		if lit := s[:end]; lit != "" {
			out = append(out, lit)
		}
		s = s[end+1:]
	}
}

// ErrInvalidTag is returned for tags the sidecar cannot store.
var ErrInvalidTag = errors.New("invalid tag")

// Validate rejects tags that would not read back unchanged: a '#' starts a
// comment, a '"' closes the literal, and control characters break the line.
func Validate(tag string) error {
	if strings.ContainsAny(tag, `#"`) {
		return fmt.Errorf("%w %q: '#' and '\"' are not allowed", ErrInvalidTag, tag)
	}
	for _, r := range tag {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w %q: control characters are not allowed", ErrInvalidTag, tag)
		}
	}
	return nil
}

// Format renders the tags assignment line.
func Format(tags []string) string {
	quoted := make([]string, len(tags))
	for i, tag := range tags {
		quoted[i] = `"` + tag + `"`
	}
	return "tags = [" + strings.Join(quoted, ", ") + "]"
}

// Rewrite returns contents with the tags assignment replaced by tags. When
// there is no assignment the line is appended.
func Rewrite(contents string, tags []string) string {
	line := Format(tags)
	if strings.TrimSpace(contents) == "" {
		return line + "\n"
	}

	lines := strings.Split(strings.TrimRight(contents, "\n"), "\n")
	start, end := -1, -1
	for i, raw := range lines {
		cleaned := stripComment(raw)
		if start < 0 {
			if _, ok := tagsKey(cleaned); ok {
				start = i
				if strings.Contains(cleaned, "]") {
					end = i
					break
				}
			}
			continue
		}
		if strings.Contains(cleaned, "]") {
			end = i
			break
		}
	}

	if start < 0 {
		return strings.TrimRight(contents, " \t\r\n") + "\n" + line + "\n"
	}
	if end < 0 {
		end = start
	}

	out := make([]string, 0, len(lines)-(end-start))
	out = append(out, lines[:start]...)
	out = append(out, line)
	out = append(out, lines[end+1:]...)
	return strings.Join(out, "\n") + "\n"
}

// Write stores tags in the sidecar of dir, keeping any other content. Tags
// that fail Validate are rejected before anything is written.
func Write(dir string, tags []string) error {
	for _, tag := range tags {
		if err := Validate(tag); err != nil {
			return err
		}
	}
	path := SidecarPath(dir)
	var contents string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		contents = string(data)
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated := Rewrite(contents, tags)

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(updated), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save tags for %s: %w", dir, err)
	}
	tagLog.Debug("tags_written", slog.String("dir", dir), slog.Int("count", len(tags)))
	return nil
}

// Merge drops every tag starting with dropPrefix (when non-empty) and appends
// add if it is not already present. The boolean reports whether anything
// changed.
func Merge(existing []string, add, dropPrefix string) ([]string, bool) {
	out := make([]string, 0, len(existing)+1)
	changed := false
	for _, tag := range existing {
		if dropPrefix != "" && strings.HasPrefix(tag, dropPrefix) && tag != add {
			changed = true
			continue
		}
		out = append(out, tag)
	}
	for _, tag := range out {
		if tag == add {
			return out, changed
		}
	}
	return append(out, add), true
}
