package entity

// ResearchResult is the structured answer the agent is asked to produce.
// Zero values are the declared defaults.
type ResearchResult struct {
	Topic     string   `json:"topic" jsonschema:"title=Topic,description=The main topic of the research"`
	Summary   string   `json:"summary" jsonschema:"title=Summary,description=A short summary of the research findings"`
	Sources   []string `json:"sources" jsonschema:"title=Sources,description=Sources used for the research"`
	ToolsUsed []string `json:"tools_used" jsonschema:"title=Tools Used,description=Tools used during the research"`
}
