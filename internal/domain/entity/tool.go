package entity

type ToolName string

const (
	ToolSearch    ToolName = "search"
	ToolWikipedia ToolName = "wikipedia"
	ToolSaveData  ToolName = "save_data_to_file"
)

func (t ToolName) String() string {
	return string(t)
}
