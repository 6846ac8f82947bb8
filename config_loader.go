// config_loader.go: Multi-candidate configuration resolution
//
// Resolution walks an ordered list of candidate files. For each one it
// validates the path, opens and reads the file, then parses it:
//   - YAML candidates (by extension, via Argus format detection): yaml.v3
//   - everything else: strict JSON first, then a lenient JSON5 retry
//
// The first candidate that yields a configuration wins. When all fail, the
// error of the last candidate is returned. Every attempt is reported to the
// diagnostic log.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agilira/argus"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

// maxConfigFileSize caps how much of a candidate is read.
const maxConfigFileSize = 10 * 1024 * 1024

// ConfigResolver loads the first usable configuration from a candidate list.
type ConfigResolver struct {
	diag *DiagnosticLog
}

// NewConfigResolver creates a resolver reporting to diag. A nil diag uses
// the process-wide diagnostic log.
func NewConfigResolver(diag *DiagnosticLog) *ConfigResolver {
	if diag == nil {
		diag = Diagnostics()
	}
	return &ConfigResolver{diag: diag}
}

// ResolveConfig resolves the default candidate list with the process-wide
// diagnostic log.
func ResolveConfig() (*Config, error) {
	return NewConfigResolver(nil).Resolve(CandidateConfigPaths())
}

// LoadConfigFromFile loads a single configuration file.
//
// Example usage:
//
//	config, err := liquidroute.LoadConfigFromFile("/etc/liquidroute/liquidroute-geyser.json")
//	if err != nil {
//	    log.Fatalf("invalid configuration: %v", err)
//	}
func LoadConfigFromFile(path string) (*Config, error) {
	return NewConfigResolver(nil).Load(path)
}

// Resolve tries each candidate in order and returns the first success.
// If all candidates fail, the last candidate's error is returned.
func (r *ConfigResolver) Resolve(candidates []string) (*Config, error) {
	if len(candidates) == 0 {
		r.diag.Write("No config file candidates to try")
		return nil, NewConfigNoCandidatesError()
	}

	var lastErr error
	for i, path := range candidates {
		r.diag.Write(fmt.Sprintf("Trying config candidate %d/%d: %s", i+1, len(candidates), path))

		config, err := r.Load(path)
		if err == nil {
			r.diag.Write(fmt.Sprintf("Using config from %s", path))
			return config, nil
		}
		lastErr = err
	}

	r.diag.Write(fmt.Sprintf("All %d config candidates failed; last error: %v", len(candidates), lastErr))
	return nil, lastErr
}

// Load reads, parses and normalizes one candidate file.
func (r *ConfigResolver) Load(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		r.diag.Write(fmt.Sprintf("Invalid config file path %q: %v", path, err))
		return nil, err
	}

	content, err := r.readConfigFile(path)
	if err != nil {
		return nil, err
	}

	config, err := r.parseConfig(path, content)
	if err != nil {
		return nil, err
	}

	config.Validate()
	return config, nil
}

// validateConfigPath rejects structurally malformed paths before any file
// access.
func validateConfigPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return NewConfigInvalidPathError(path, "empty path")
	}
	if strings.ContainsRune(path, '\x00') {
		return NewConfigInvalidPathError(path, "null byte in path")
	}
	return nil
}

func (r *ConfigResolver) readConfigFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		r.diag.Write(fmt.Sprintf("Failed to open config file %s: %v", path, err))
		return nil, NewConfigFileOpenError(path, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		r.diag.Write(fmt.Sprintf("Failed to read config file %s: %v", path, err))
		return nil, NewConfigFileReadError(path, err)
	}
	if info.IsDir() {
		err := fmt.Errorf("%s is a directory", path)
		r.diag.Write(fmt.Sprintf("Failed to read config file %s: %v", path, err))
		return nil, NewConfigFileReadError(path, err)
	}

	content, err := io.ReadAll(io.LimitReader(file, maxConfigFileSize+1))
	if err == nil && len(content) > maxConfigFileSize {
		err = fmt.Errorf("config file size exceeds limit of %d bytes", maxConfigFileSize)
	}
	if err != nil {
		r.diag.Write(fmt.Sprintf("Failed to read config file %s: %v", path, err))
		return nil, NewConfigFileReadError(path, err)
	}
	return content, nil
}

func (r *ConfigResolver) parseConfig(path string, content []byte) (*Config, error) {
	if argus.DetectFormat(path) == argus.FormatYAML {
		config, err := decodeYAMLConfig(content)
		if err != nil {
			r.diag.Write(fmt.Sprintf("Failed to parse YAML config file %s: %v", path, err))
			return nil, NewConfigParseError(path, err, nil)
		}
		r.diag.Write(fmt.Sprintf("Successfully parsed config from %s", path))
		return config, nil
	}

	config, strictErr := decodeStrictConfig(content)
	if strictErr == nil {
		r.diag.Write(fmt.Sprintf("Successfully parsed config from %s", path))
		return config, nil
	}
	r.diag.Write(fmt.Sprintf("Failed to parse config file %s: %v", path, strictErr))

	config, lenientErr := decodeLenientConfig(content)
	if lenientErr == nil {
		r.diag.Write("Successfully parsed config using json5 fallback")
		return config, nil
	}
	r.diag.Write(fmt.Sprintf("json5 fallback also rejected %s: %v", path, lenientErr))

	return nil, NewConfigParseError(path, strictErr, lenientErr)
}

// configFields lists the keys each config object accepts, keyed by the
// enclosing object ("" is the document root). Unknown keys are ignored.
var configFields = map[string][]string{
	"":            {"libpath", "log", "liquidroute"},
	"log":         {"level", "file", "max_size_mb"},
	"liquidroute": {"track_token_accounts", "thread_count"},
}

func decodeStrictConfig(content []byte) (*Config, error) {
	return decodeJSONConfig(content, json.Unmarshal)
}

func decodeLenientConfig(content []byte) (*Config, error) {
	return decodeJSONConfig(content, json5.Unmarshal)
}

// decodeJSONConfig decodes content twice: once into the typed config and
// once into a generic document, because the typed decoders match keys
// case-insensitively and cannot tell an absent field from an empty one.
func decodeJSONConfig(content []byte, unmarshal func([]byte, interface{}) error) (*Config, error) {
	config := DefaultConfig()
	if err := unmarshal(content, &config); err != nil {
		return nil, err
	}
	var document map[string]interface{}
	if err := unmarshal(content, &document); err != nil {
		return nil, err
	}
	if err := checkDocument(document); err != nil {
		return nil, err
	}
	return &config, nil
}

func decodeYAMLConfig(content []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, err
	}
	var document map[string]interface{}
	if err := yaml.Unmarshal(content, &document); err != nil {
		return nil, err
	}
	if err := checkDocument(document); err != nil {
		return nil, err
	}
	return &config, nil
}

// checkDocument enforces exact key spelling and the presence of libpath.
// An empty libpath string is accepted.
func checkDocument(document map[string]interface{}) error {
	if err := checkFieldCase("", document); err != nil {
		return err
	}
	for _, section := range []string{"log", "liquidroute"} {
		nested, ok := document[section].(map[string]interface{})
		if !ok {
			continue
		}
		if err := checkFieldCase(section, nested); err != nil {
			return err
		}
	}

	libPath, present := document["libpath"]
	if !present {
		return fmt.Errorf("missing field `libpath`")
	}
	if libPath == nil {
		return fmt.Errorf("invalid type: null, expected a string for `libpath`")
	}
	return nil
}

func checkFieldCase(section string, object map[string]interface{}) error {
	for key := range object {
		for _, field := range configFields[section] {
			if key != field && strings.EqualFold(key, field) {
				if section == "" {
					return fmt.Errorf("unknown field `%s`, expected `%s`", key, field)
				}
				return fmt.Errorf("unknown field `%s` in `%s`, expected `%s`", key, section, field)
			}
		}
	}
	return nil
}
