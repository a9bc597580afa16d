package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/onboarding-client/internal/domain/onboarding"
	"gopkg.in/yaml.v3"
)

// readAnswers loads onboarding answers from a JSON or YAML file. A key set to
// null stays null and a missing key stays omitted.
func readAnswers(path string) (onboarding.Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return onboarding.Data{}, fmt.Errorf("read answers file: %w", err)
	}

	return parseAnswers(raw, filepath.Ext(path))
}

func parseAnswers(raw []byte, ext string) (onboarding.Data, error) {
	body := raw
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return onboarding.Data{}, fmt.Errorf("parse yaml answers: %w", err)
		}
		if doc == nil {
			return onboarding.Data{}, fmt.Errorf("parse yaml answers: document is empty")
		}
		encoded, err := sonic.Marshal(doc)
		if err != nil {
			return onboarding.Data{}, fmt.Errorf("encode yaml answers: %w", err)
		}
		body = encoded
	}

	var data onboarding.Data
	if err := data.UnmarshalJSON(body); err != nil {
		return onboarding.Data{}, fmt.Errorf("parse answers: %w", err)
	}
	return data, nil
}
