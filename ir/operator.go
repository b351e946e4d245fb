package ir

// UnaryOperator is a prefix JavaScript operator.
type UnaryOperator string

const (
	Negation   UnaryOperator = "-"
	LogicalNot UnaryOperator = "!"
	BitwiseNot UnaryOperator = "~"
	TypeOf     UnaryOperator = "typeof"
)

// BinaryOperator is an infix JavaScript operator.
type BinaryOperator string

const (
	Equality           BinaryOperator = "=="
	Inequality         BinaryOperator = "!="
	Identity           BinaryOperator = "==="
	NonIdentity        BinaryOperator = "!=="
	LessThan           BinaryOperator = "<"
	LessThanEqual      BinaryOperator = "<="
	GreaterThan        BinaryOperator = ">"
	GreaterThanEqual   BinaryOperator = ">="
	LeftShift          BinaryOperator = "<<"
	RightShift         BinaryOperator = ">>"
	UnsignedRightShift BinaryOperator = ">>>"
	Addition           BinaryOperator = "+"
	Subtraction        BinaryOperator = "-"
	Multiplication     BinaryOperator = "*"
	Division           BinaryOperator = "/"
	Remainder          BinaryOperator = "%"
	BitwiseAnd         BinaryOperator = "&"
	BitwiseXor         BinaryOperator = "^"
	BitwiseOr          BinaryOperator = "|"
	InstanceOf         BinaryOperator = "instanceof"
	In                 BinaryOperator = "in"
)

// UpdateOperator is ++ or --.
type UpdateOperator string

const (
	Increment UpdateOperator = "++"
	Decrement UpdateOperator = "--"
)
