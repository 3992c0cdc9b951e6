package model

// NodeType classifies a grid node.
type NodeType int

const (
	NodeGenerator NodeType = iota
	NodeLoad
	NodeStorage
	NodeSubstation
)

func (t NodeType) String() string {
	switch t {
	case NodeGenerator:
		return "generator"
	case NodeLoad:
		return "load"
	case NodeStorage:
		return "storage"
	case NodeSubstation:
		return "substation"
	default:
		return "unknown"
	}
}

// AssetHealth tracks insulation condition of a physical asset.
type AssetHealth struct {
	// HealthIndex is 1 for a new asset and never increases without a reset.
	HealthIndex float64 `json:"health_index"`
	// PDActivity is the partial discharge level in picocoulombs.
	PDActivity float64 `json:"pd_activity"`
}

// NewAssetHealth returns the health of a brand new asset.
func NewAssetHealth() AssetHealth { return AssetHealth{HealthIndex: 1} }

// GridNode is a bus of the network (generator, load, storage or substation).
type GridNode struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       NodeType `json:"type"`
	CapacityMW float64  `json:"capacity_mw"`
	LoadMW     float64  `json:"load_mw"`
	AssetHealth
}

// GridLink is a line or cable between two nodes.
type GridLink struct {
	ID               string  `json:"id"`
	SourceID         string  `json:"source_id"`
	TargetID         string  `json:"target_id"`
	CapacityMW       float64 `json:"capacity_mw"`
	CurrentLoadMW    float64 `json:"current_load_mw"`
	StaticRatingMVA  float64 `json:"static_rating_mva"`
	DynamicRatingMVA float64 `json:"dynamic_rating_mva"`
	LimitingFactor   string  `json:"limiting_factor"`
	AssetHealth
}

// LoadFactor returns the current loading relative to capacity, 0 for links
// without capacity.
func (l GridLink) LoadFactor() float64 {
	if l.CapacityMW <= 0 {
		return 0
	}
	return l.CurrentLoadMW / l.CapacityMW
}
