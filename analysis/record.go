// 结果归档的数据模型与派生指标计算
package analysis

import "github.com/sirupsen/logrus"

// log 分析模块的日志记录器
var log = logrus.WithField("module", "analysis")

// 状态向量的列布局，至少4列
const (
	ColX     = 0 // x坐标（米）
	ColY     = 1 // y坐标（米）
	ColHead  = 2 // 航向角
	ColSpeed = 3 // 速度（米/秒）
)

// StateColumns 状态向量最少列数
const StateColumns = 4

// ThetaType 人类驾驶员隐含特征的真值类型
type ThetaType int

const (
	// ThetaAttentive 专注型驾驶员
	ThetaAttentive ThetaType = iota
	// ThetaDistracted 分心型驾驶员
	ThetaDistracted
)

// ParseThetaType 解析归档中的特征真值标签
// 功能：将字符串标签转换为ThetaType
// 参数：s-归档中的t_theta字段值
// 返回：解析后的类型
// 说明：兼容仿真器的简写"a"/"d"与全称；其余取值与原有行为一致
// 按Distracted处理，并输出告警以便发现上游数据问题
func ParseThetaType(s string) ThetaType {
	switch s {
	case "attentive", "a":
		return ThetaAttentive
	case "distracted", "d":
		return ThetaDistracted
	default:
		log.Warnf("unknown t_theta value %q, treating as distracted", s)
		return ThetaDistracted
	}
}

// String t_theta标签的规范写法
func (t ThetaType) String() string {
	if t == ThetaAttentive {
		return "attentive"
	}
	return "distracted"
}

// DisplayName 图例中的展示名
func (t ThetaType) DisplayName() string {
	if t == ThetaAttentive {
		return "Attentive"
	}
	return "Distracted"
}

// ProbabilityLabel theta曲线的图例标签
// 说明：theta序列按原样展示，标签跟随真值类型，不做概率变换
func (t ThetaType) ProbabilityLabel() string {
	if t == ThetaAttentive {
		return "P(Attentive)"
	}
	return "P(Distracted)"
}

// SimulationRecord 一次仿真运行的完整记录
// 功能：保存从结果归档加载的全部字段
// 说明：Ego与Human等长（由仿真器保证）；BetaEstimate可能比
// ThetaEstimate多一个前导先验元素，在对齐阶段剔除
type SimulationRecord struct {
	Ego   [][]float64 // 自车轨迹，每行[x, y, heading, v, ...]
	Human [][]float64 // 人类车轨迹，形状与Ego相同

	BetaEstimate  []float64 // 理性度在线估计序列
	ThetaEstimate []float64 // 真值特征概率估计序列，取值[0,1]

	TrueBeta  float64   // 理性度真值
	TrueTheta ThetaType // 特征真值

	PassedIntersection bool // 是否成功通过路口
	Collision          bool // 是否发生碰撞
}

// Steps 仿真总步数
func (r *SimulationRecord) Steps() int {
	return len(r.Ego)
}
