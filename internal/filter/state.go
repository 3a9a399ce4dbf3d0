package filter

// Step is the primary construction step.
type Step string

const (
	StepIdle               Step = "idle"
	StepSelectingField     Step = "selecting-field"
	StepSelectingOperator  Step = "selecting-operator"
	StepEnteringValue      Step = "entering-value"
	StepSelectingConnector Step = "selecting-connector"
)

// Mode is the single activity the state is in. Edits are overlays on the
// primary step, so Mode is derived rather than stored.
type Mode int

const (
	ModeIdle Mode = iota
	ModeBuilding
	ModeEditingValue
	ModeEditingOperator
	ModeEditingConnector
)

func (m Mode) String() string {
	switch m {
	case ModeBuilding:
		return "building"
	case ModeEditingValue:
		return "editing-value"
	case ModeEditingOperator:
		return "editing-operator"
	case ModeEditingConnector:
		return "editing-connector"
	default:
		return "idle"
	}
}

// State is the engine-owned, ephemeral construction state.
type State struct {
	Step             Step
	DropdownOpen     bool
	InputValue       string
	HighlightedIndex int // -1 when nothing is highlighted

	// SelectedTokenIndex is the projected position of the selected
	// token, -1 for none.
	SelectedTokenIndex int
	AllTokensSelected  bool

	CurrentField    *FieldValue
	CurrentOperator *OperatorValue

	// Edit overlays. At most one index is >= 0. EditingTokenIndex is a
	// token position, the other two are expression indices.
	EditingTokenIndex     int
	EditingOperatorIndex  int
	EditingConnectorIndex int
	StepBeforeEdit        Step

	Announcement string
}

// NewState returns the idle state.
func NewState() State {
	return State{
		Step:                  StepIdle,
		HighlightedIndex:      0,
		SelectedTokenIndex:    -1,
		EditingTokenIndex:     -1,
		EditingOperatorIndex:  -1,
		EditingConnectorIndex: -1,
		StepBeforeEdit:        StepIdle,
	}
}

// Mode reports which single activity is active.
func (s State) Mode() Mode {
	switch {
	case s.EditingTokenIndex >= 0:
		return ModeEditingValue
	case s.EditingOperatorIndex >= 0:
		return ModeEditingOperator
	case s.EditingConnectorIndex >= 0:
		return ModeEditingConnector
	case s.Step == StepIdle:
		return ModeIdle
	default:
		return ModeBuilding
	}
}

// Editing reports whether an edit overlay is active.
func (s State) Editing() bool {
	m := s.Mode()
	return m == ModeEditingValue || m == ModeEditingOperator || m == ModeEditingConnector
}

// Placeholder is the hint shown in an empty input.
func Placeholder(s State, exprs []Expression) string {
	switch s.Mode() {
	case ModeEditingValue:
		return "Edit value..."
	case ModeEditingOperator:
		return "Choose operator..."
	case ModeEditingConnector:
		return "Choose AND or OR..."
	}
	switch s.Step {
	case StepSelectingField:
		if len(exprs) == 0 {
			return "Add filter..."
		}
		return "Select field..."
	case StepSelectingOperator:
		return "Select operator..."
	case StepEnteringValue:
		return "Enter value..."
	case StepSelectingConnector:
		return "AND, OR, or Enter to finish"
	default:
		if len(exprs) == 0 {
			return "Add filter..."
		}
		return "Add another filter..."
	}
}
