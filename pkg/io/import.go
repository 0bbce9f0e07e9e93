package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/stackrules/pkg/errors"
)

// ReadJSON decodes a rule set from r and validates every rule.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (RuleSet, error) {
	var rs RuleSet
	if err := json.NewDecoder(r).Decode(&rs); err != nil {
		return RuleSet{}, errs.Wrap(errs.ErrCodeParse, err, "decode rule set")
	}
	for i, rule := range rs.Rules {
		if err := rule.Validate(); err != nil {
			return RuleSet{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "rule %d", i)
		}
	}
	return rs, nil
}

// ImportJSON reads the rule set file at path.
func ImportJSON(path string) (RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rs, err := ReadJSON(f)
	if err != nil {
		return RuleSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}
