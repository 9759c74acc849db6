package category

// Gate approves or denies a plan before any file is touched.
type Gate interface {
	Approve(plan Plan) (bool, error)
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(plan Plan) (bool, error)

// Approve calls f(plan).
func (f GateFunc) Approve(plan Plan) (bool, error) {
	return f(plan)
}

// DenyAll denies every plan. Apply then only queries and reports.
var DenyAll Gate = GateFunc(func(Plan) (bool, error) { return false, nil })

// ApproveAll approves every plan.
var ApproveAll Gate = GateFunc(func(Plan) (bool, error) { return true, nil })
