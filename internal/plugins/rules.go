package plugins

import "github.com/prathamc00/AI-Code-Reviewer/internal/model"

// Rule identifiers.
const (
	RuleHardcodedSecretID     = "SEC-HARDCODED-SECRET"
	RuleSQLConcatID           = "SEC-SQL-CONCAT"
	RuleDynamicExecID         = "SEC-DYNAMIC-EXEC"
	RuleUnsafeDeserializeID   = "SEC-UNSAFE-DESERIALIZATION"
	RuleProcessExecID         = "SEC-PROCESS-EXEC"
	RuleDeepLoopID            = "PERF-DEEP-LOOP"
	RuleAppendInLoopID        = "PERF-APPEND-IN-LOOP"
	RuleBlockingAsyncID       = "PERF-BLOCKING-ASYNC"
	RuleNestedComprehensionID = "PERF-NESTED-COMPREHENSION"
	RuleFunctionLengthID      = "QUAL-FUNCTION-LENGTH"
	RuleMissingDocstringID    = "QUAL-MISSING-DOCSTRING"
	RuleTooManyParamsID       = "QUAL-TOO-MANY-PARAMS"
	RuleComplexityID          = "QUAL-COMPLEXITY"
	RuleTooManyMethodsID      = "QUAL-TOO-MANY-METHODS"
	RuleShortNameID           = "QUAL-SHORT-NAME"
)

var (
	ruleHardcodedSecret = model.RuleMeta{ID: RuleHardcodedSecretID, Title: "Hardcoded credential in source", Category: model.CategorySecurity}
	ruleSQLConcat       = model.RuleMeta{ID: RuleSQLConcatID, Title: "SQL statement built by string concatenation", Category: model.CategorySecurity}
	ruleDynamicExec     = model.RuleMeta{ID: RuleDynamicExecID, Title: "Dynamic code execution via eval/exec", Category: model.CategorySecurity}
	ruleUnsafeDeser     = model.RuleMeta{ID: RuleUnsafeDeserializeID, Title: "Unsafe deserialization with pickle", Category: model.CategorySecurity}
	ruleProcessExec     = model.RuleMeta{ID: RuleProcessExecID, Title: "Shell command execution", Category: model.CategorySecurity}

	ruleDeepLoop            = model.RuleMeta{ID: RuleDeepLoopID, Title: "Deeply nested loop", Category: model.CategoryPerformance}
	ruleAppendInLoop        = model.RuleMeta{ID: RuleAppendInLoopID, Title: "List append inside loop", Category: model.CategoryPerformance}
	ruleBlockingAsync       = model.RuleMeta{ID: RuleBlockingAsyncID, Title: "Blocking call in async function", Category: model.CategoryPerformance}
	ruleNestedComprehension = model.RuleMeta{ID: RuleNestedComprehensionID, Title: "Nested comprehension", Category: model.CategoryPerformance}

	ruleFunctionLength   = model.RuleMeta{ID: RuleFunctionLengthID, Title: "Function too long", Category: model.CategoryCodeQuality}
	ruleMissingDocstring = model.RuleMeta{ID: RuleMissingDocstringID, Title: "Public function or class without docstring", Category: model.CategoryCodeQuality}
	ruleTooManyParams    = model.RuleMeta{ID: RuleTooManyParamsID, Title: "Too many positional parameters", Category: model.CategoryCodeQuality}
	ruleComplexity       = model.RuleMeta{ID: RuleComplexityID, Title: "High cyclomatic complexity", Category: model.CategoryCodeQuality}
	ruleTooManyMethods   = model.RuleMeta{ID: RuleTooManyMethodsID, Title: "Class with too many methods", Category: model.CategoryCodeQuality}
	ruleShortName        = model.RuleMeta{ID: RuleShortNameID, Title: "Single-letter identifier", Category: model.CategoryCodeQuality}
)

// Thresholds holds the limits used by the code-quality rules. A construct is
// reported only when it strictly exceeds its limit.
type Thresholds struct {
	FunctionLength int `yaml:"functionLength" json:"functionLength"`
	Parameters     int `yaml:"parameters" json:"parameters"`
	Complexity     int `yaml:"complexity" json:"complexity"`
	Methods        int `yaml:"methods" json:"methods"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{FunctionLength: 50, Parameters: 5, Complexity: 10, Methods: 20}
}
