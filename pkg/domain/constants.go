package domain

// Built-in action names.
const (
	ActionCollect    = "collect"
	ActionStage      = "stage"
	ActionStore      = "store"
	ActionPurge      = "purge"
	ActionRebuild    = "rebuild"
	ActionValidate   = "validate"
	ActionInitialize = "initialize"

	// ActionAll expands to the built-in pipeline.
	ActionAll = "all"
)

// Built-in execution indices used by index order mode.
// rebuild, validate and initialize cannot be combined with anything, so they share the lowest index.
const (
	RebuildIndex    = 0
	ValidateIndex   = 0
	InitializeIndex = 0
	CollectIndex    = 100
	StageIndex      = 200
	StoreIndex      = 300
	PurgeIndex      = 400
)

// BuiltinActions returns the built-in action names, excluding "all".
func BuiltinActions() []string {
	return []string{
		ActionCollect, ActionStage, ActionStore, ActionPurge,
		ActionRebuild, ActionValidate, ActionInitialize,
	}
}

// PipelineActions returns the actions "all" expands to, in execution order.
func PipelineActions() []string {
	return []string{ActionCollect, ActionStage, ActionStore, ActionPurge}
}

// NonCombinableActions returns the actions that must be requested alone.
func NonCombinableActions() []string {
	return []string{ActionRebuild, ActionValidate, ActionInitialize, ActionAll}
}

// BuiltinIndices returns a fresh copy of the built-in index table.
func BuiltinIndices() map[string]int {
	return map[string]int{
		ActionRebuild:    RebuildIndex,
		ActionValidate:   ValidateIndex,
		ActionInitialize: InitializeIndex,
		ActionCollect:    CollectIndex,
		ActionStage:      StageIndex,
		ActionStore:      StoreIndex,
		ActionPurge:      PurgeIndex,
	}
}

// IsBuiltin reports whether name is a built-in action or "all".
func IsBuiltin(name string) bool {
	if name == ActionAll {
		return true
	}
	for _, b := range BuiltinActions() {
		if b == name {
			return true
		}
	}
	return false
}
