package selector

import (
	"fmt"

	model "go_virtual_mock/internal/domain/model/mock"
)

// selectByStatus 按状态分类模拟选择响应
//
//  1. 请求指定了期望分类时, 只在该分类内随机
//  2. 操作配置了权重时, 先按权重选分类 (忽略没有候选的分类), 再在分类内随机
//  3. 都没有时, 在全部候选中均匀随机
func (s *Selector) selectByStatus(op *model.Operation, enabled []model.MockResponse, req *model.RequestContext) (*model.MockResponse, error) {
	groups := make(map[model.StatusCategory][]model.MockResponse)
	for _, r := range enabled {
		c := r.Category()
		groups[c] = append(groups[c], r)
	}

	if req != nil && req.DesiredCategory != "" {
		candidates := groups[req.DesiredCategory]
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: operation %s has no %s response", model.ErrNoAvailableResponse, op.ID, req.DesiredCategory)
		}
		return s.pick(candidates), nil
	}

	if !hasPositiveWeight(op.StatusWeights) {
		return s.pick(enabled), nil
	}

	type weighted struct {
		category model.StatusCategory
		weight   int
	}
	var (
		choices []weighted
		total   int
	)
	for _, c := range model.StatusCategories() {
		w := op.StatusWeights[c]
		if w <= 0 || len(groups[c]) == 0 {
			continue
		}
		choices = append(choices, weighted{category: c, weight: w})
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: operation %s has no response in a weighted category", model.ErrNoAvailableResponse, op.ID)
	}

	n := s.intN(total)
	for _, choice := range choices {
		if n < choice.weight {
			return s.pick(groups[choice.category]), nil
		}
		n -= choice.weight
	}
	// unreachable: n < total
	return s.pick(groups[choices[len(choices)-1].category]), nil
}

func hasPositiveWeight(weights map[model.StatusCategory]int) bool {
	for _, w := range weights {
		if w > 0 {
			return true
		}
	}
	return false
}
