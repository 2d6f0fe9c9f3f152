// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"fmt"

	"github.com/Azure/armlint/rules"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// loadFilterConfig reads a rule filter configuration file. The format is
// derived from the file extension; both YAML and JSON are accepted.
//
// Viper folds configuration keys to lower case, so the rule ids in the file
// reach the filter lowercased. Catalog filtering matches ids
// case-insensitively, which makes this a non-issue.
func loadFilterConfig(path string) (*rules.FilterConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("loadFilterConfig: reading %s: %w", path, err)
	}
	var cfg rules.FilterConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
	}); err != nil {
		return nil, fmt.Errorf("loadFilterConfig: parsing %s: %w", path, err)
	}
	return &cfg, nil
}
