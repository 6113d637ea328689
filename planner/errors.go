package planner

import (
	"fmt"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/structure"
)

func errProcedureNotConnected(e *ProcedureEdge) error {
	return core.ErrInternal.New(fmt.Sprintf("procedure edge %d sources from an unreached vertex %d", e.Order, e.From))
}

func errProcedureIncomplete(v *structure.Vertex) error {
	return core.ErrInternal.New(fmt.Sprintf("procedure never reaches vertex %d (%s)", v.ID, v.Var.Ref()))
}
