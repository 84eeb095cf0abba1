package stress

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrTokenFile = errors.New("tokens file must hold a JSON array")

// LoadTokens reads a JSON array of tokens from path, or when path is empty
// splits the comma separated envValue. Array items may be strings or objects
// with a "token" field.
func LoadTokens(path, envValue string) ([]string, error) {
	var tokens []string

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tokens file: %w", err)
		}

		doc := gjson.ParseBytes(raw)
		if !gjson.ValidBytes(raw) || !doc.IsArray() {
			return nil, fmt.Errorf("%s: %w", path, ErrTokenFile)
		}

		doc.ForEach(func(_, item gjson.Result) bool {
			value := item.String()
			if item.IsObject() {
				value = item.Get("token").String()
			}

			if value = strings.TrimSpace(value); value != "" {
				tokens = append(tokens, value)
			}

			return true
		})
	} else {
		for _, value := range strings.Split(envValue, ",") {
			if value = strings.TrimSpace(value); value != "" {
				tokens = append(tokens, value)
			}
		}
	}

	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}

	return tokens, nil
}

// WriteTokens stores tokens as a JSON array readable by LoadTokens.
func WriteTokens(path string, tokens []string) error {
	raw, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}

	if err := os.WriteFile(path, raw, 0o600); err != nil { //nolint:gomnd
		return fmt.Errorf("write tokens file: %w", err)
	}

	return nil
}

func WriteSummary(path string, s *Summary) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil { //nolint:gomnd,gosec
		return fmt.Errorf("write summary file: %w", err)
	}

	return nil
}
