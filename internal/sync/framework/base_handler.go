package framework

import (
	"context"
	"encoding/json"
	"fmt"
)

// Job 标准 Job 结构
type Job struct {
	Payload *JobPayload `json:"payload"`
}

type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

type JobPayloadData struct {
	RequestID  string          `json:"request_id"`
	ActionType string          `json:"action_type"`
	ID         string          `json:"id"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// JobMeta Job 元信息
type JobMeta struct {
	RequestID  string `json:"request_id"`
	ActionType string `json:"action_type"`
	ID         string `json:"id"`
}

// Response 标准处理结果
type Response struct {
	Error     interface{} `json:"error"`
	Result    interface{} `json:"result"`
	Processed bool        `json:"processed"`
	Meta      *JobMeta    `json:"meta,omitempty"`
}

// BaseHandler 基础设施方法，不包含业务流程控制
type BaseHandler struct {
	meta       *JobMeta
	rawData    []byte
	bizPayload json.RawMessage
}

// ParseJob 解析 lmstfy Job 标准结构
func (b *BaseHandler) ParseJob(ctx context.Context, rawData []byte) error {
	b.rawData = rawData

	var job Job
	if err := json.Unmarshal(rawData, &job); err != nil {
		return b.WrapError(err, "unmarshal job failed")
	}

	if job.Payload == nil || job.Payload.Data == nil {
		return b.WrapError(nil, "invalid job structure")
	}

	data := job.Payload.Data
	if data.ActionType == "" {
		return b.WrapError(nil, "action_type is empty")
	}
	b.meta = &JobMeta{
		RequestID:  data.RequestID,
		ActionType: data.ActionType,
		ID:         data.ID,
	}
	b.bizPayload = data.Data

	return nil
}

// DecodePayload 解析业务数据
func (b *BaseHandler) DecodePayload(v interface{}) error {
	if len(b.bizPayload) == 0 {
		return nil
	}
	if err := json.Unmarshal(b.bizPayload, v); err != nil {
		return b.WrapError(err, "unmarshal payload failed")
	}
	return nil
}

// WrapResponse 包装标准响应
func (b *BaseHandler) WrapResponse(ctx context.Context, output interface{}) ([]byte, error) {
	data, err := json.Marshal(&Response{
		Result:    output,
		Processed: true,
		Meta:      b.meta,
	})
	if err != nil {
		return nil, b.WrapError(err, "marshal response failed")
	}
	return data, nil
}

// WrapErrorResponse 包装错误响应
func (b *BaseHandler) WrapErrorResponse(ctx context.Context, err error) []byte {
	data, marshalErr := json.Marshal(&Response{
		Error:     err.Error(),
		Processed: false,
		Meta:      b.meta,
	})
	if marshalErr != nil {
		return []byte(err.Error())
	}
	return data
}

// WrapError 统一包装错误
func (b *BaseHandler) WrapError(err error, msg string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// GetMeta 获取 meta
func (b *BaseHandler) GetMeta() *JobMeta {
	return b.meta
}

// GetRawData 获取原始数据
func (b *BaseHandler) GetRawData() []byte {
	return b.rawData
}
