package model

import (
	"fmt"
	"strings"
)

// ParseNodeType converts a wire name into a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generator":
		return NodeGenerator, nil
	case "load":
		return NodeLoad, nil
	case "storage":
		return NodeStorage, nil
	case "substation":
		return NodeSubstation, nil
	default:
		return 0, fmt.Errorf("unknown node type %q", s)
	}
}

func (t NodeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *NodeType) UnmarshalText(b []byte) error {
	v, err := ParseNodeType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t ScenarioType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ScenarioType) UnmarshalText(b []byte) error {
	v, err := ParseScenarioType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (r RiskTolerance) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *RiskTolerance) UnmarshalText(b []byte) error {
	v, err := ParseRiskTolerance(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
