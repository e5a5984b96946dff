package etoperator

import (
	"errors"
	"strings"
)

var ErrMissingOperator = errors.New("operator id and name are required")

// Operator 扫码操作人，由调用方显式传入
type Operator struct {
	ID   string
	Name string
}

// New 创建操作人
func New(id, name string) (Operator, error) {
	op := Operator{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name)}
	if err := op.Validate(); err != nil {
		return Operator{}, err
	}
	return op, nil
}

// Validate 校验操作人
func (o Operator) Validate() error {
	if o.ID == "" || o.Name == "" {
		return ErrMissingOperator
	}
	return nil
}

// Same 是否同一操作人
func (o Operator) Same(id string) bool {
	return o.ID != "" && o.ID == id
}
