package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
)

// 速度换算系数：米/秒 → 千米/小时
const MPSToKMH = 3.6

// Metrics 由一次运行记录派生的全部指标序列
// 功能：保存绘图与统计共用的派生数据
// 说明：只在进程内使用，不持久化
type Metrics struct {
	AlignedBeta []float64 // 对齐后的beta估计序列
	BetaError   []float64 // beta估计绝对误差序列
	Distances   []float64 // 每步车间欧氏距离（米）
	EgoSpeed    []float64 // 自车速度（千米/小时）
	HumanSpeed  []float64 // 人类车速度（千米/小时）
}

// AlignBeta 对齐beta估计序列
// 功能：剔除beta序列中多出的前导先验元素
// 参数：beta-估计序列，theta-特征概率序列
// 返回：对齐后的beta序列
// 算法说明：仅处理len(beta) == len(theta)+1这一种错位，此时
// beta[0]是首次更新前的先验，丢弃；其余情况原样返回
func AlignBeta(beta, theta []float64) []float64 {
	if len(beta) == len(theta)+1 {
		return beta[1:]
	}
	return beta
}

// Derive 计算一次运行的全部派生指标
// 功能：由记录生成对齐序列、误差序列、距离序列与速度序列
// 参数：r-仿真运行记录
// 返回：派生指标
// 算法说明：
// 1. 对齐beta序列并逐步求|beta - trueBeta|
// 2. 按位置列(0,1)逐步求自车与人类车的欧氏距离
// 3. 速度列(3)乘3.6换算为千米/小时
func Derive(r *SimulationRecord) *Metrics {
	m := &Metrics{}
	m.AlignedBeta = AlignBeta(r.BetaEstimate, r.ThetaEstimate)
	m.BetaError = lo.Map(m.AlignedBeta, func(b float64, _ int) float64 {
		return math.Abs(b - r.TrueBeta)
	})
	m.Distances = make([]float64, len(r.Ego))
	for i := range r.Ego {
		dx := r.Ego[i][ColX] - r.Human[i][ColX]
		dy := r.Ego[i][ColY] - r.Human[i][ColY]
		m.Distances[i] = math.Hypot(dx, dy)
	}
	m.EgoSpeed = lo.Map(r.Ego, func(row []float64, _ int) float64 {
		return row[ColSpeed] * MPSToKMH
	})
	m.HumanSpeed = lo.Map(r.Human, func(row []float64, _ int) float64 {
		return row[ColSpeed] * MPSToKMH
	})
	return m
}

// Summary 供报告输出的汇总统计量
type Summary struct {
	FinalBeta      float64 // 最终beta估计
	FinalBetaError float64 // 最终beta估计误差
	MeanBetaError  float64 // beta估计误差均值
	StdBetaError   float64 // beta估计误差标准差（总体）
	FinalTheta     float64 // 最终theta概率
	MinDistance    float64 // 最小车间距（米）
	MeanDistance   float64 // 平均车间距（米）
	FinalEgoSpeed  float64 // 最终自车速度（千米/小时）
	FinalHumanSpeed  float64 // 最终人类车速度（千米/小时）
}

// Summarize 计算汇总统计量
// 功能：由派生指标与记录生成报告所需的全部统计值
// 返回：汇总统计量与可能的错误（任一序列为空时报错）
func (m *Metrics) Summarize(r *SimulationRecord) (Summary, error) {
	s := Summary{}
	if len(m.AlignedBeta) == 0 || len(m.Distances) == 0 {
		return s, fmt.Errorf("empty series: beta %d steps, trajectory %d steps",
			len(m.AlignedBeta), len(m.Distances))
	}
	if len(r.ThetaEstimate) == 0 {
		return s, fmt.Errorf("empty theta estimate series")
	}
	s.FinalBeta = m.AlignedBeta[len(m.AlignedBeta)-1]
	s.FinalBetaError = m.BetaError[len(m.BetaError)-1]

	var err error
	if s.MeanBetaError, err = stats.Mean(m.BetaError); err != nil {
		return s, fmt.Errorf("mean beta error: %w", err)
	}
	if s.StdBetaError, err = stats.StdDevP(m.BetaError); err != nil {
		return s, fmt.Errorf("std beta error: %w", err)
	}
	s.FinalTheta = r.ThetaEstimate[len(r.ThetaEstimate)-1]
	if s.MinDistance, err = stats.Min(m.Distances); err != nil {
		return s, fmt.Errorf("min distance: %w", err)
	}
	if s.MeanDistance, err = stats.Mean(m.Distances); err != nil {
		return s, fmt.Errorf("mean distance: %w", err)
	}
	s.FinalEgoSpeed = m.EgoSpeed[len(m.EgoSpeed)-1]
	s.FinalHumanSpeed = m.HumanSpeed[len(m.HumanSpeed)-1]
	return s, nil
}
