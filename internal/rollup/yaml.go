package rollup

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// marshalTotals renders a key→amount mapping as YAML with sorted keys and
// values rounded to 2 decimals. Built from explicit nodes so the key order is
// guaranteed, not left to the encoder.
func marshalTotals(totals map[string]decimal.Decimal) ([]byte, error) {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range keys {
		v := totals[k].Round(2).InexactFloat64()
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v, 'f', -1, 64)},
		)
	}

	data, err := yaml.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("marshaling totals: %w", err)
	}
	return data, nil
}

// marshalReverse renders a property's reverse index with sorted
// transaction-type keys; the entry lists stay in encounter order.
func marshalReverse(rev map[string][]ReverseEntry) ([]byte, error) {
	keys := make([]string, 0, len(rev))
	for k := range rev {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range keys {
		var entries yaml.Node
		if err := entries.Encode(rev[k]); err != nil {
			return nil, fmt.Errorf("encoding reverse entries for %s: %w", k, err)
		}
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&entries,
		)
	}

	data, err := yaml.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("marshaling reverse index: %w", err)
	}
	return data, nil
}
