package portfolio

import "fmt"

// ValidationError 某个配置字段的值不在其声明的取值范围内
type ValidationError struct {
	Field    string
	Expected string
	Value    any
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid config update: expected %s", e.Expected)
	}
	return fmt.Sprintf("invalid %s: expected %s, got %v", e.Field, e.Expected, e.Value)
}
