package analysis

import "github.com/prathamc00/AI-Code-Reviewer/internal/model"

func ruleForTest() model.RuleMeta {
	return model.RuleMeta{ID: "TEST-RULE", Title: "test", Category: model.CategorySecurity}
}
