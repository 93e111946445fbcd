package camera

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rated mechanical shutter life per model, as published by Canon.
// Keys are matched as substrings of the model string the camera
// reports (e.g. "Canon EOS R7").
var ratedLife = map[string]uint32{
	"EOS R3":         500000,
	"EOS R5":         500000,
	"EOS R6 Mark II": 300000,
	"EOS R6":         300000,
	"EOS R7":         200000,
	"EOS R8":         200000,
	"EOS R10":        200000,
	"EOS R":          200000,
	"EOS RP":         200000,
	"EOS-1D X":       400000,
	"EOS 5D Mark IV": 150000,
	"EOS 6D Mark II": 100000,
	"EOS 90D":        120000,
}

// LookupLife finds the rated shutter life for a reported model string.
// The longest matching key wins, so "EOS R6 Mark II" is not shadowed by
// "EOS R6".
func LookupLife(model string) (uint32, bool) {
	var best string
	var life uint32
	for k, v := range ratedLife {
		if strings.Contains(model, k) && len(k) > len(best) {
			best = k
			life = v
		}
	}
	return life, best != ""
}

// LoadLifeTable merges a YAML model→rated-life table over the built-in
// one. The file is a flat mapping:
//
//	EOS R7: 200000
//	EOS R5 Mark II: 500000
func LoadLifeTable(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("life table: %w", err)
	}
	table := map[string]uint32{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("life table %s: %w", path, err)
	}
	for k, v := range table {
		ratedLife[k] = v
	}
	return nil
}
