package app

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/talentfetch/internal/batch"
)

// buildList is the YAML/JSON input schema.
type buildList struct {
	Builds []batch.Build `yaml:"builds" json:"builds"`
}

// LoadBuilds reads the list of builds to refresh. .yaml/.yml and .json files
// carry a "builds" list of {name, url}; any other file is read as one URL per
// line with '#' comments. A build without a name is named after its URL.
func LoadBuilds(path string) ([]batch.Build, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read builds: %w", err)
	}
	var builds []batch.Build
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var list buildList
		if err := yaml.Unmarshal(b, &list); err != nil {
			return nil, fmt.Errorf("parse builds yaml: %w", err)
		}
		builds = list.Builds
	case ".json":
		var list buildList
		if err := json.Unmarshal(b, &list); err != nil {
			return nil, fmt.Errorf("parse builds json: %w", err)
		}
		builds = list.Builds
	default:
		builds, err = parseURLList(b)
		if err != nil {
			return nil, err
		}
	}

	for i := range builds {
		builds[i].URL = strings.TrimSpace(builds[i].URL)
		if builds[i].URL == "" {
			return nil, fmt.Errorf("build %d (%q): missing url", i+1, builds[i].Name)
		}
		if strings.TrimSpace(builds[i].Name) == "" {
			builds[i].Name = builds[i].URL
		}
	}
	if len(builds) == 0 {
		return nil, errors.New("no builds in input")
	}
	return builds, nil
}

func parseURLList(b []byte) ([]batch.Build, error) {
	var builds []batch.Build
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		builds = append(builds, batch.Build{URL: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan url list: %w", err)
	}
	return builds, nil
}
