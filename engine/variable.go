package engine

import (
	"fmt"
)

// Variable is a prolog variable. A variable is bound when Ref is not nil.
type Variable struct {
	// Name is the name used for display. An anonymous variable has no name.
	Name string
	Ref  Term

	id int64
}

func (v *Variable) String() string {
	if v.Ref != nil {
		return Resolve(v).String()
	}
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("_%d", v.id)
}

// Bound checks if the variable has a binding.
func (v *Variable) Bound() bool {
	return v.Ref != nil
}
