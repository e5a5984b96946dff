package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 业务单号前缀
const (
	PrefixWarehousing = "WH"
	PrefixQuality     = "QC"
)

const (
	maxMachineID = 99  // 机器号两位
	maxSequence  = 999 // 每秒序列号三位
)

// NumberGenerator 业务单号生成器
// 格式: 前缀 + yyyyMMddHHmmss + 机器号(2位) + 序列号(3位)
type NumberGenerator struct {
	mu        sync.Mutex
	machineID int64
	sequence  int64
	lastTime  int64
	now       func() time.Time
}

// NewNumberGenerator 创建单号生成器，machineID 范围 0-99
func NewNumberGenerator(machineID int64) *NumberGenerator {
	if machineID < 0 || machineID > maxMachineID {
		machineID = 0
	}
	return &NumberGenerator{
		machineID: machineID,
		now:       time.Now,
	}
}

// Next 生成下一个单号
func (g *NumberGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	sec := now.Unix()

	if sec == g.lastTime {
		g.sequence = (g.sequence + 1) % (maxSequence + 1)
		if g.sequence == 0 {
			// 序列号用尽，等待下一秒
			for sec <= g.lastTime {
				now = g.now()
				sec = now.Unix()
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastTime = sec

	return fmt.Sprintf("%s%s%02d%03d", prefix, now.Format("20060102150405"), g.machineID, g.sequence)
}

var defaultGenerator = NewNumberGenerator(1)

// NextNumber 生成业务单号（默认生成器）
func NextNumber(prefix string) string {
	return defaultGenerator.Next(prefix)
}

// NewID 生成记录主键
func NewID() string {
	return uuid.New().String()
}
