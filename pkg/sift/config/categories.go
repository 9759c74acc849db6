package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jamesainslie/sift/pkg/sift/category"
	"github.com/jamesainslie/sift/pkg/sift/types"
)

// LoadCategories reads a JSON category file for mode.
//
// Move files are an object mapping keyword to destination, applied in file
// order, or an array of {"keyword", "destination"} objects. Delete files are
// an array of keywords or an object whose keys are the keywords.
func LoadCategories(path string, mode category.Mode) (category.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfig, err)
	}
	defer f.Close()

	m, err := ParseCategories(f, mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseCategories decodes a category document from r.
func ParseCategories(r io.Reader, mode category.Mode) (category.Map, error) {
	dec := json.NewDecoder(r)
	m, err := decodeCategories(dec, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfig, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after category document", types.ErrConfig)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: no categories defined", types.ErrConfig)
	}

	seen := make(map[string]struct{}, len(m))
	for _, rule := range m {
		if strings.TrimSpace(rule.Keyword) == "" {
			return nil, fmt.Errorf("%w: empty keyword", types.ErrConfig)
		}
		if mode == category.ModeMove && strings.TrimSpace(rule.Destination) == "" {
			return nil, fmt.Errorf("%w: keyword %q has no destination", types.ErrConfig, rule.Keyword)
		}
		if _, dup := seen[rule.Keyword]; dup {
			return nil, fmt.Errorf("%w: keyword %q listed twice", types.ErrConfig, rule.Keyword)
		}
		seen[rule.Keyword] = struct{}{}
	}
	return m, nil
}

func decodeCategories(dec *json.Decoder, mode category.Mode) (category.Map, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("expected an object or array, got %v", tok)
	}

	var m category.Map
	switch delim {
	case '{':
		// Token-wise decoding keeps the key order of the file.
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			var value json.RawMessage
			if err := dec.Decode(&value); err != nil {
				return nil, err
			}
			rule := category.Rule{Keyword: key}
			if mode == category.ModeMove {
				if err := json.Unmarshal(value, &rule.Destination); err != nil {
					return nil, fmt.Errorf("keyword %q: destination must be a string", key)
				}
			}
			m = append(m, rule)
		}
	case '[':
		for dec.More() {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, err
			}
			rule, err := decodeRule(raw, mode)
			if err != nil {
				return nil, err
			}
			m = append(m, rule)
		}
	default:
		return nil, fmt.Errorf("unexpected %v", delim)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeRule(raw json.RawMessage, mode category.Mode) (category.Rule, error) {
	var keyword string
	if err := json.Unmarshal(raw, &keyword); err == nil {
		if mode == category.ModeMove {
			return category.Rule{}, fmt.Errorf("keyword %q has no destination", keyword)
		}
		return category.Rule{Keyword: keyword}, nil
	}

	var rule category.Rule
	if err := json.Unmarshal(raw, &rule); err != nil {
		return category.Rule{}, fmt.Errorf("invalid category entry %s", string(raw))
	}
	if mode == category.ModeDelete {
		rule.Destination = ""
	}
	return rule, nil
}

// LoadSkipFile reads one skip entry per line. Blank lines and lines
// starting with # are ignored.
func LoadSkipFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfig, err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrConfig, path, err)
	}
	return entries, nil
}
