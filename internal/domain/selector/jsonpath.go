package selector

import (
	"fmt"
	"strings"

	model "go_virtual_mock/internal/domain/model/mock"

	"github.com/PaesslerAG/jsonpath"
)

// selectByJSONPath returns the first enabled response, in sequence order, having an
// expression that matches the JSON request body.
func selectByJSONPath(enabled []model.MockResponse, req *model.RequestContext) (*model.MockResponse, error) {
	if req == nil || req.Body == "" {
		return nil, fmt.Errorf("%w: json path strategy needs a request body", model.ErrNoAvailableResponse)
	}
	doc, err := req.BodyJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNoAvailableResponse, err)
	}

	for i := range enabled {
		for _, expr := range enabled[i].JSONPathExpressions {
			if jsonPathMatches(doc, expr) {
				return &enabled[i], nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no json path expression matched", model.ErrNoAvailableResponse)
}

// NormalizeJSONPath 补全根节点: name -> $.name, .name / [0] -> $.name / $[0]
func NormalizeJSONPath(expr string) string {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "", strings.HasPrefix(expr, "$"):
		return expr
	case strings.HasPrefix(expr, "."), strings.HasPrefix(expr, "["):
		return "$" + expr
	default:
		return "$." + expr
	}
}

// ValidateJSONPath rejects expressions that can never be evaluated.
func ValidateJSONPath(expr string) error {
	normalized := NormalizeJSONPath(expr)
	if normalized == "" {
		return fmt.Errorf("%w: empty json path expression", model.ErrInvalidConfiguration)
	}
	if _, err := jsonpath.New(normalized); err != nil {
		return fmt.Errorf("%w: invalid json path %q: %v", model.ErrInvalidConfiguration, expr, err)
	}
	return nil
}

// jsonPathMatches 表达式结果非空 (或为 true) 即视为匹配
func jsonPathMatches(doc any, expr string) bool {
	res, err := jsonpath.Get(NormalizeJSONPath(expr), doc)
	if err != nil {
		return false
	}

	switch v := res.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
