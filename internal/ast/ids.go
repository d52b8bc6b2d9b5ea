package ast

type (
	TypeID uint32
	ExprID uint32
	StmtID uint32
)

const (
	NoTypeID TypeID = 0
	NoExprID ExprID = 0
	NoStmtID StmtID = 0
)

func (id TypeID) IsValid() bool { return id != NoTypeID }
func (id ExprID) IsValid() bool { return id != NoExprID }
func (id StmtID) IsValid() bool { return id != NoStmtID }
