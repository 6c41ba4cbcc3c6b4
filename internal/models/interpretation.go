package models

// Interpretation is the normalized view of a Document produced in one pass.
type Interpretation struct {
	Summary  Summary        `json:"summary" yaml:"summary"`
	Slices   []*SliceDetail `json:"slices" yaml:"slices"`
	Warnings []string       `json:"warnings" yaml:"warnings"`
}

type Summary struct {
	TotalSlices         int `json:"totalSlices" yaml:"total_slices"`
	TotalCommands       int `json:"totalCommands" yaml:"total_commands"`
	TotalEvents         int `json:"totalEvents" yaml:"total_events"`
	TotalExternalEvents int `json:"totalExternalEvents" yaml:"total_external_events"`
	TotalScreens        int `json:"totalScreens" yaml:"total_screens"`
	TotalReadModels     int `json:"totalReadModels" yaml:"total_read_models"`
	TotalSpecifications int `json:"totalSpecifications" yaml:"total_specifications"`
}

type FlowStepType string

const (
	StepScreen    FlowStepType = "SCREEN"
	StepCommand   FlowStepType = "COMMAND"
	StepEvent     FlowStepType = "EVENT"
	StepReadModel FlowStepType = "READMODEL"
)

type FlowStep struct {
	Type        FlowStepType `json:"type" yaml:"type"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
}

// SliceDetail is a slice enriched with its synthesized flow.
type SliceDetail struct {
	Index          int               `json:"index" yaml:"index"`
	Title          string            `json:"title" yaml:"title"`
	SliceType      string            `json:"sliceType" yaml:"slice_type"`
	Screens        []string          `json:"screens" yaml:"screens"`
	Commands       []string          `json:"commands" yaml:"commands"`
	Events         []string          `json:"events" yaml:"events"`
	ExternalEvents []string          `json:"externalEvents,omitempty" yaml:"external_events,omitempty"`
	ReadModels     []string          `json:"readmodels" yaml:"readmodels"`
	Flow           []*FlowStep       `json:"flow" yaml:"flow"`
	VisualFlow     string            `json:"visualFlow" yaml:"visual_flow"`
	BDDTests       []*BDDTest        `json:"bddTests" yaml:"bdd_tests"`
	ReadModel      *ReadModelDetails `json:"readmodelDetails" yaml:"readmodel_details"`
	Synthetic      bool              `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// ReadModelDetails describes the primary read model of a STATE_VIEW slice.
type ReadModelDetails struct {
	Title          string   `json:"title" yaml:"title"`
	InboundEvents  string   `json:"inboundEvents" yaml:"inbound_events"`
	OutboundEvents string   `json:"outboundEvents" yaml:"outbound_events"`
	Screens        []string `json:"screens" yaml:"screens"`
	IsListPattern  bool     `json:"isListPattern" yaml:"is_list_pattern"`
	InboundCount   int      `json:"inboundCount" yaml:"inbound_count"`
	OutboundCount  int      `json:"outboundCount" yaml:"outbound_count"`
	ScreenCount    int      `json:"screenCount" yaml:"screen_count"`
}

type BDDTest struct {
	Title    string     `json:"title" yaml:"title"`
	Comments []string   `json:"comments" yaml:"comments"`
	Given    []*BDDStep `json:"given" yaml:"given"`
	When     []*BDDStep `json:"when" yaml:"when"`
	Then     []*BDDStep `json:"then" yaml:"then"`
}

type BDDStep struct {
	Title  string `json:"title" yaml:"title"`
	Type   string `json:"type" yaml:"type"`
	Values string `json:"values" yaml:"values"`
}
