package transform

import (
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/tabfold/tabfold/fold"
	"github.com/tabfold/tabfold/model"
)

// UnmarshalYAML decodes a transform pipeline from its configuration form: a
// sequence of mappings, each carrying a "kind" discriminator naming the
// variant plus that variant's parameters. An unknown kind or malformed
// parameter set is a configuration error.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return model.Configf("transforms must be a sequence, got %s", yamlKindName(node.Kind))
	}
	out := make(Spec, 0, len(node.Content))
	for _, item := range node.Content {
		t, err := decodeTransform(item)
		if err != nil {
			return err
		}
		out = append(out, t)
	}
	*s = out
	return nil
}

func decodeTransform(node *yaml.Node) (Transform, error) {
	var head struct {
		Kind string `yaml:"kind"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, model.Configf("transform entry: %v", err)
	}
	switch head.Kind {
	case "prepend_row":
		var p struct {
			Row []string `yaml:"row"`
		}
		if err := node.Decode(&p); err != nil {
			return nil, model.Configf("prepend_row: %v", err)
		}
		return PrependRow{Row: p.Row}, nil

	case "transpose":
		return Transpose{}, nil

	case "join_columns":
		p := struct {
			From      *int   `yaml:"from"`
			To        *int   `yaml:"to"`
			Delimiter string `yaml:"delimiter"`
		}{Delimiter: " "}
		if err := node.Decode(&p); err != nil {
			return nil, model.Configf("join_columns: %v", err)
		}
		return JoinColumns{From: p.From, To: p.To, Delimiter: p.Delimiter}, nil

	case "split_column":
		var p struct {
			Column  int    `yaml:"column"`
			Pattern string `yaml:"pattern"`
		}
		if err := node.Decode(&p); err != nil {
			return nil, model.Configf("split_column: %v", err)
		}
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, model.Configf("split_column pattern: %v", err)
		}
		return SplitColumn{Column: p.Column, Pattern: re}, nil

	case "expand_column_on_regex":
		var p struct {
			Column  int      `yaml:"column"`
			Pattern string   `yaml:"pattern"`
			OnMatch []string `yaml:"on_match"`
			Default []string `yaml:"default"`
		}
		if err := node.Decode(&p); err != nil {
			return nil, model.Configf("expand_column_on_regex: %v", err)
		}
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, model.Configf("expand_column_on_regex pattern: %v", err)
		}
		return ExpandColumnOnRegex{Column: p.Column, Pattern: re, OnMatch: p.OnMatch, Default: p.Default}, nil

	case "wrap_row_every_n":
		var p struct {
			N int `yaml:"n"`
		}
		if err := node.Decode(&p); err != nil {
			return nil, model.Configf("wrap_row_every_n: %v", err)
		}
		if p.N < 1 {
			return nil, model.Configf("wrap_row_every_n requires n >= 1, got %d", p.N)
		}
		return WrapRowEveryN{N: p.N}, nil

	case "fold_rows":
		var p struct {
			Groupers []yaml.Node `yaml:"groupers"`
		}
		if err := node.Decode(&p); err != nil {
			return nil, model.Configf("fold_rows: %v", err)
		}
		groupers := make([]fold.Grouper, 0, len(p.Groupers))
		for i := range p.Groupers {
			g, err := decodeGrouper(&p.Groupers[i])
			if err != nil {
				return nil, err
			}
			groupers = append(groupers, g)
		}
		return FoldRows{Groupers: groupers}, nil

	case "":
		return nil, model.Configf("transform entry missing kind")
	default:
		return nil, model.Configf("unknown transform kind %q", head.Kind)
	}
}

func decodeGrouper(node *yaml.Node) (fold.Grouper, error) {
	var head struct {
		Kind string `yaml:"kind"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, model.Configf("grouper entry: %v", err)
	}
	switch head.Kind {
	case "all_rows":
		return fold.AllRows{}, nil

	case "static_row_counts":
		var p struct {
			Counts []int `yaml:"counts"`
		}
		if err := node.Decode(&p); err != nil {
			return nil, model.Configf("static_row_counts: %v", err)
		}
		return fold.StaticRowCounts{Counts: p.Counts}, nil

	case "empty_column":
		var p struct {
			Column int `yaml:"column"`
		}
		if err := node.Decode(&p); err != nil {
			return nil, model.Configf("empty_column: %v", err)
		}
		return fold.EmptyColumn{Column: p.Column}, nil

	case "":
		return nil, model.Configf("grouper entry missing kind")
	default:
		return nil, model.Configf("unknown grouper kind %q", head.Kind)
	}
}

func yamlKindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
