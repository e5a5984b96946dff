package etstage

// Stage 固定父进度节点
type Stage string

const (
	StageProcurement      Stage = "procurement"
	StageCutting          Stage = "cutting"
	StageSecondaryProcess Stage = "secondary_process"
	StageSewing           Stage = "sewing"
	StageTail             Stage = "tail"
	StageWarehousing      Stage = "warehousing"
)

// Ordered 固定节点顺序，决定进度权重位置
var Ordered = []Stage{
	StageProcurement,
	StageCutting,
	StageSecondaryProcess,
	StageSewing,
	StageTail,
	StageWarehousing,
}

// Label 节点中文名
func (s Stage) Label() string {
	switch s {
	case StageProcurement:
		return "采购"
	case StageCutting:
		return "裁剪"
	case StageSecondaryProcess:
		return "二次工艺"
	case StageSewing:
		return "车缝"
	case StageTail:
		return "尾部"
	case StageWarehousing:
		return "入库"
	default:
		return string(s)
	}
}

// Index 节点位置，非固定节点返回 -1
func (s Stage) Index() int {
	for i, st := range Ordered {
		if st == s {
			return i
		}
	}
	return -1
}

// IsFixed 是否固定节点
func (s Stage) IsFixed() bool {
	return s.Index() >= 0
}

// Synonyms 各固定节点的同义词（含中英文叫法）
var Synonyms = map[Stage][]string{
	StageProcurement:      {"采购", "物料采购", "面料采购", "辅料采购", "备料", "procurement", "purchase", "purchasing"},
	StageCutting:          {"裁剪", "裁床", "开裁", "剪裁", "cutting", "cut"},
	StageSecondaryProcess: {"二次工艺", "印花", "绣花", "洗水", "烫钻", "压花", "secondary", "secondary_process", "printing", "embroidery"},
	StageSewing:           {"车缝", "缝制", "缝纫", "车间生产", "生产", "sewing", "stitching"},
	StageTail:             {"尾部", "后整", "整烫", "大烫", "熨烫", "剪线", "尾工", "质检", "检验", "品检", "验货", "包装", "打包", "装箱", "tail", "finishing", "trimming", "ironing", "qc", "quality", "inspection", "packing", "packaging"},
	StageWarehousing:      {"入库", "成品入库", "进仓", "仓储", "warehousing", "warehouse", "stock_in"},
}

// PackagingSynonyms 包装类工序（入库前置条件）
var PackagingSynonyms = []string{"包装", "打包", "装箱", "后整包装", "packing", "packaging"}

// QualitySynonyms 质检类工序（自动识别下一工序时跳过）
var QualitySynonyms = []string{"质检", "检验", "品检", "验货", "qc", "quality", "inspection"}

// Status 节点状态
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// StatusFor 按完成数量和订单数量判定状态
func StatusFor(done, orderQuantity int) Status {
	switch {
	case done <= 0:
		return StatusNotStarted
	case orderQuantity > 0 && done >= orderQuantity:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}
