package domain

// RepairState is the workflow state of a repair.order in Odoo.
type RepairState string

const (
	StateDraft       RepairState = "draft"
	StateConfirmed   RepairState = "confirmed"
	StateUnderRepair RepairState = "under_repair"
	StateDone        RepairState = "done"
	StateCancel      RepairState = "cancel"
)

var stateLabels = map[RepairState]string{
	StateDraft:       "New",
	StateConfirmed:   "Confirmed",
	StateUnderRepair: "Under Repair",
	StateDone:        "Repaired",
	StateCancel:      "Cancelled",
}

// transitions lists, per state, the states a technician may move a repair
// to. Done is terminal.
var transitions = map[RepairState][]RepairState{
	StateDraft:       {StateConfirmed, StateCancel},
	StateConfirmed:   {StateUnderRepair, StateCancel},
	StateUnderRepair: {StateDone, StateCancel},
	StateCancel:      {StateDraft},
	StateDone:        {},
}

// AllStates returns every known state in workflow order.
func AllStates() []RepairState {
	return []RepairState{StateDraft, StateConfirmed, StateUnderRepair, StateDone, StateCancel}
}

func (s RepairState) Valid() bool {
	_, ok := stateLabels[s]
	return ok
}

// Label is the human readable name, or the raw value for unknown states.
func (s RepairState) Label() string {
	if l, ok := stateLabels[s]; ok {
		return l
	}
	return string(s)
}

// Next returns the states reachable from s.
func (s RepairState) Next() []RepairState {
	return append([]RepairState(nil), transitions[s]...)
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s RepairState) CanTransitionTo(target RepairState) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// StateOption is a state with its label, as offered to clients.
type StateOption struct {
	Value RepairState `json:"value" example:"confirmed"`
	Label string      `json:"label" example:"Confirmed"`
}

// Options maps states to options.
func Options(states []RepairState) []StateOption {
	out := make([]StateOption, 0, len(states))
	for _, s := range states {
		out = append(out, StateOption{Value: s, Label: s.Label()})
	}
	return out
}

// Ref is a reference to another Odoo record.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Repair is the technician facing view of a repair.order.
type Repair struct {
	ID           int64       `json:"id" example:"42"`
	Name         string      `json:"name" example:"RO/00042"`
	State        RepairState `json:"state" example:"confirmed"`
	StateLabel   string      `json:"stateLabel" example:"Confirmed"`
	Partner      *Ref        `json:"partner,omitempty"`
	Product      *Ref        `json:"product,omitempty"`
	Lot          *Ref        `json:"lot,omitempty"`
	Technician   *Ref        `json:"technician,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	ScheduleDate string      `json:"scheduleDate,omitempty"`
	CreatedAt    string      `json:"createdAt,omitempty"`
	UpdatedAt    string      `json:"updatedAt,omitempty"`
}

// NewRepair is the input for creating a repair order.
type NewRepair struct {
	PartnerID    int64  `json:"partnerId" example:"7"`
	ProductID    int64  `json:"productId,omitempty" example:"12"`
	Notes        string `json:"notes,omitempty"`
	ScheduleDate string `json:"scheduleDate,omitempty" example:"2026-05-01 09:00:00"`
}

// StateChange is the outcome of a successful transition.
type StateChange struct {
	Success  bool        `json:"success"`
	RepairID int64       `json:"repairId"`
	OldState RepairState `json:"oldState"`
	NewState RepairState `json:"newState"`
}
