package framework

import (
	"context"
	"fmt"
)

// Step 处理链中的命名步骤
type Step struct {
	Name string
	Run  ProcessorFunc
}

// PreProcessor 按顺序执行的处理链
type PreProcessor struct {
	steps []Step
}

// NewPreProcessor 创建处理链
func NewPreProcessor(steps ...Step) *PreProcessor {
	return &PreProcessor{steps: steps}
}

// Run 依次执行，任一步骤失败即停止；错误保留原始分类（可重试与否）
func (p *PreProcessor) Run(ctx context.Context) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s aborted: %w", step.Name, err)
		}
		if err := step.Run(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}
