package domain

// DefinitionInput is the raw payload a client submits to create a definition.
// Enabled flags default to true unless the client explicitly disables them.
type DefinitionInput struct {
	Name        string        `json:"name" yaml:"name"`
	States      []StateInput  `json:"states" yaml:"states"`
	Actions     []ActionInput `json:"actions" yaml:"actions"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// StateInput mirrors State with a defaultable Enabled flag.
type StateInput struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	IsInitial   bool   `json:"is_initial" yaml:"is_initial"`
	IsFinal     bool   `json:"is_final" yaml:"is_final"`
	Enabled     *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ActionInput mirrors Action with a defaultable Enabled flag.
type ActionInput struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Enabled     *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	FromStates  []string `json:"from_states" yaml:"from_states"`
	ToState     string   `json:"to_state" yaml:"to_state"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}
