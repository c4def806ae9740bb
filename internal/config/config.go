// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile points at a preferences file, bypassing the search.
const EnvConfigFile = "LINCTL_CFG"

// FileName is the preferences file searched for in the standard locations.
const FileName = "linctl.yaml"

var (
	ErrNoConfigFile = errors.New("config file not found")
	ErrNotAString   = errors.New("value is not a string")
	ErrNotAnInt     = errors.New("value is not an int")
	ErrNotABool     = errors.New("value is not a bool")
	ErrNotAList     = errors.New("value is not a list")
)

// Type is a loaded preferences file. Lookups first try the key under
// Namespace, usually the running command's name, then the bare key.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Config is the process wide preferences, loaded lazily on first use.
var Config Type

// Load reads the preferences file into Config. The namespace of a previously
// loaded Config is kept.
func Load() (Type, error) {
	path, err := getConfigPath()
	if err != nil {
		return Type{}, err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Type{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return Type{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	Config = Type{
		Source:    path,
		Namespace: Config.Namespace,
		Data:      data,
	}

	return Config, nil
}

// SetNamespace sets the namespace consulted before bare keys.
func SetNamespace(ns string) {
	Config.Namespace = ns
}

// get traverses the map using a dotted key path
func (cfg *Type) get(kspec string) (any, error) {
	candidateKeys := []string{kspec}
	if cfg.Namespace != "" {
		candidateKeys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	for _, key := range candidateKeys {
		var current interface{} = cfg.Data

		success := true
		for _, k := range strings.Split(key, ".") {
			m, ok := current.(map[string]interface{})
			if !ok {
				success = false
				break
			}
			current, ok = m[k]
			if !ok {
				success = false
				break
			}
		}

		if success {
			return current, nil
		}
	}

	return nil, fmt.Errorf("no valid path found among: %v", candidateKeys)
}

func ensureLoaded() {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}
}

// GetString returns the string at key, or defaultValue when the key is absent.
func GetString(key string, defaultValue ...string) (string, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrNotAString)
	}

	return s, nil
}

// GetInt returns the integer at key, or defaultValue when the key is absent.
func GetInt(key string, defaultValue ...int) (int, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	// YAML numbers may be unmarshaled as int/float64 depending on content.
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s: %w", key, ErrNotAnInt)
	}
}

// GetBool returns the boolean at key, or defaultValue when the key is absent.
func GetBool(key string, defaultValue ...bool) (bool, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return false, err
	}

	b, ok := val.(bool)
	if !ok {
		return false, fmt.Errorf("%s: %w", key, ErrNotABool)
	}
	return b, nil
}

// GetStringSlice returns the list of scalars at key as strings. A single
// scalar is returned as a one element list.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}

	switch v := val.(type) {
	case []interface{}:
		result := make([]string, 0, len(v))
		for _, item := range v {
			switch item.(type) {
			case map[string]interface{}, []interface{}:
				return nil, fmt.Errorf("%s: %w", key, ErrNotAList)
			}
			result = append(result, fmt.Sprintf("%v", item))
		}
		return result, nil
	case string:
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("%s: %w", key, ErrNotAList)
	}
}

func getConfigPath() (string, error) {
	if path, ok := os.LookupEnv(EnvConfigFile); ok && path != "" {
		fileInfo, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("%w: %s=%s", ErrNoConfigFile, EnvConfigFile, path)
		}
		if fileInfo.IsDir() {
			return "", fmt.Errorf("%s points to a directory: %s", EnvConfigFile, path)
		}
		log.Debugf("using config file: %s", path)
		return path, nil
	}

	candidates := []string{
		os.Getenv("XDG_CONFIG_HOME"),
		os.Getenv("APPDATA"),
		os.Getenv("HOME"),
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		file := filepath.Join(c, FileName)
		if fileInfo, err := os.Stat(file); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file: %s", file)
				return file, nil
			}
		}
	}
	return "", fmt.Errorf("%w in standard locations", ErrNoConfigFile)
}
