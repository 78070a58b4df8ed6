package figure

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tsinghua-fib-lab/intersection-analyzer/analysis"
)

// 绘图颜色
var (
	colorGrey   = drawing.Color{R: 128, G: 128, B: 128, A: 255}
	colorGold   = drawing.Color{R: 218, G: 165, B: 32, A: 255}
	colorOrange = drawing.Color{R: 255, G: 165, B: 0, A: 255}
	colorPurple = drawing.Color{R: 128, G: 0, B: 128, A: 255}
	colorBand   = drawing.Color{R: 0, G: 116, B: 217, A: 60}
)

// backdropMin 路口背景的坐标下界（米）
const backdropMin = -15.0

// timeSteps 生成[0, n)的时间步横轴
func timeSteps(n int) []float64 {
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = float64(i)
	}
	return ts
}

// refLine 构造横贯整个时间轴的水平参考线（红色虚线）
func refLine(name string, y float64, n int) chart.ContinuousSeries {
	last := float64(n - 1)
	if last <= 0 {
		last = 1
	}
	return chart.ContinuousSeries{
		Name:    name,
		XValues: []float64{0, last},
		YValues: []float64{y, y},
		Style: chart.Style{
			StrokeColor:     chart.ColorRed,
			StrokeWidth:     2,
			StrokeDashArray: []float64{5, 5},
		},
	}
}

// segment 构造路口背景的一段道路边界线（黑色实线，不进图例）
func segment(x0, y0, x1, y1 float64) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		XValues: []float64{x0, x1},
		YValues: []float64{y0, y1},
		Style: chart.Style{
			StrokeColor: chart.ColorBlack,
			StrokeWidth: 2,
		},
	}
}

// paddedRange 求序列的显示范围
// 功能：取序列与附加值的最小/最大并加边距，避免退化为零高度范围
// 参数：vals-主序列，extra-必须落入范围的附加值（如参考线位置）
func paddedRange(vals []float64, extra ...float64) *chart.ContinuousRange {
	all := append(append([]float64{}, vals...), extra...)
	if len(all) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	min, max := all[0], all[0]
	for _, v := range all {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	pad := (max - min) * 0.05
	if pad < 0.5 {
		pad = 0.5
	}
	return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
}

// withLegend 为图表附加图例
// 说明：图例只收录命名序列，背景线段与置信带不进图例
func withLegend(graph chart.Chart) chart.Chart {
	shadow := graph
	shadow.Series = lo.Filter(graph.Series, func(s chart.Series, _ int) bool {
		return s.GetName() != ""
	})
	graph.Elements = []chart.Renderable{chart.Legend(&shadow)}
	return graph
}

// columnOf 抽取轨迹的某一列
func columnOf(traj [][]float64, col int) []float64 {
	out := make([]float64, len(traj))
	for i, row := range traj {
		out[i] = row[col]
	}
	return out
}

// trajectoryPanel 面板1：双车轨迹与路口背景
// 功能：绘制自车/人类车的XY轨迹、起止标记与十字路口道路边界
// 算法说明：
// 1. 人类车灰色实线、自车金色虚线
// 2. 起点绿色圆点、终点红色方点（以散点序列表示）
// 3. 背景按道路宽度/长度画8段边界线：水平路缘在y=0与y=road_width，
// 在x=±road_width/2处断开；竖直路缘在x=±road_width/2，在路口区域断开
func trajectoryPanel(r *analysis.SimulationRecord, geom Geometry) chart.Chart {
	humanX := columnOf(r.Human, analysis.ColX)
	humanY := columnOf(r.Human, analysis.ColY)
	egoX := columnOf(r.Ego, analysis.ColX)
	egoY := columnOf(r.Ego, analysis.ColY)
	last := len(egoX) - 1

	w, l := geom.RoadWidth, geom.RoadLength
	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Human Vehicle",
			XValues: humanX,
			YValues: humanY,
			Style:   chart.Style{StrokeColor: colorGrey, StrokeWidth: 2},
		},
		chart.ContinuousSeries{
			Name:    "Ego Vehicle",
			XValues: egoX,
			YValues: egoY,
			Style:   chart.Style{StrokeColor: colorGold, StrokeWidth: 2, StrokeDashArray: []float64{5, 5}},
		},
		chart.ContinuousSeries{
			Name:    "Start",
			XValues: []float64{humanX[0], egoX[0]},
			YValues: []float64{humanY[0], egoY[0]},
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 6, DotColor: chart.ColorGreen},
		},
		chart.ContinuousSeries{
			Name:    "End",
			XValues: []float64{humanX[last], egoX[last]},
			YValues: []float64{humanY[last], egoY[last]},
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 6, DotColor: chart.ColorRed},
		},
		// 东西向道路边界
		segment(backdropMin, w, -w/2, w),
		segment(w/2, w, l, w),
		segment(backdropMin, 0, -w/2, 0),
		segment(w/2, 0, l, 0),
		// 南北向道路边界（路口下方）
		segment(-w/2, backdropMin, -w/2, 0),
		segment(w/2, backdropMin, w/2, 0),
		// 南北向道路边界（路口上方）
		segment(-w/2, w, -w/2, l),
		segment(w/2, w, w/2, l),
	}
	return withLegend(chart.Chart{
		Title:  "Vehicle Trajectories",
		Width:  panelWidth,
		Height: panelHeight,
		XAxis: chart.XAxis{
			Name:  "X Position (m)",
			Range: &chart.ContinuousRange{Min: backdropMin, Max: l},
		},
		YAxis: chart.YAxis{
			Name:  "Y Position (m)",
			Range: &chart.ContinuousRange{Min: backdropMin, Max: l},
		},
		Series: series,
	})
}

// betaPanel 面板2：beta估计曲线
// 功能：绘制对齐后的beta估计、真值参考线与±0.1置信带，y轴固定[0.2, 1.0]
func betaPanel(alignedBeta []float64, trueBeta float64) chart.Chart {
	ts := timeSteps(len(alignedBeta))
	bandStyle := chart.Style{StrokeColor: colorBand, StrokeWidth: 1}
	upper := make([]float64, len(alignedBeta))
	lower := make([]float64, len(alignedBeta))
	for i, b := range alignedBeta {
		upper[i] = b + 0.1
		lower[i] = b - 0.1
	}
	return withLegend(chart.Chart{
		Title:  "Beta Estimation",
		Width:  panelWidth,
		Height: panelHeight,
		XAxis:  chart.XAxis{Name: "Time Step"},
		YAxis: chart.YAxis{
			Name:  "Beta (Rationality)",
			Range: &chart.ContinuousRange{Min: 0.2, Max: 1.0},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: ts, YValues: upper, Style: bandStyle},
			chart.ContinuousSeries{XValues: ts, YValues: lower, Style: bandStyle},
			chart.ContinuousSeries{
				Name:    "Estimated Beta",
				XValues: ts,
				YValues: alignedBeta,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2},
			},
			refLine(fmt.Sprintf("True Beta (%.4f)", trueBeta), trueBeta, len(alignedBeta)),
		},
	})
}

// betaErrorPanel 面板3：beta估计绝对误差曲线
func betaErrorPanel(betaError []float64) chart.Chart {
	return withLegend(chart.Chart{
		Title:  "Beta Estimation Error",
		Width:  panelWidth,
		Height: panelHeight,
		XAxis:  chart.XAxis{Name: "Time Step"},
		YAxis: chart.YAxis{
			Name:  "Absolute Error",
			Range: paddedRange(betaError, 0),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Estimation Error",
				XValues: timeSteps(len(betaError)),
				YValues: betaError,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2},
			},
		},
	})
}

// thetaPanel 面板4：特征概率推断曲线
// 功能：按真值类型选择曲线标签与颜色，参考线固定在1.0，y轴固定[0, 1.1]
// 说明：序列按归档原样展示，不做概率变换
func thetaPanel(theta []float64, trueTheta analysis.ThetaType) chart.Chart {
	color := chart.ColorBlue
	if trueTheta == analysis.ThetaDistracted {
		color = colorOrange
	}
	return withLegend(chart.Chart{
		Title:  fmt.Sprintf("Human Characteristic Inference (True: %s)", trueTheta.DisplayName()),
		Width:  panelWidth,
		Height: panelHeight,
		XAxis:  chart.XAxis{Name: "Time Step"},
		YAxis: chart.YAxis{
			Name:  "Probability",
			Range: &chart.ContinuousRange{Min: 0, Max: 1.1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    trueTheta.ProbabilityLabel(),
				XValues: timeSteps(len(theta)),
				YValues: theta,
				Style:   chart.Style{StrokeColor: color, StrokeWidth: 2},
			},
			refLine(fmt.Sprintf("True (%s)", trueTheta.DisplayName()), 1.0, len(theta)),
		},
	})
}

// distancePanel 面板5：车间距离曲线与安全阈值线
func distancePanel(distances []float64, safety float64) chart.Chart {
	return withLegend(chart.Chart{
		Title:  "Inter-Vehicle Distance",
		Width:  panelWidth,
		Height: panelHeight,
		XAxis:  chart.XAxis{Name: "Time Step"},
		YAxis: chart.YAxis{
			Name:  "Distance (m)",
			Range: paddedRange(distances, 0, safety),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Distance",
				XValues: timeSteps(len(distances)),
				YValues: distances,
				Style:   chart.Style{StrokeColor: colorPurple, StrokeWidth: 2},
			},
			refLine("Safety Threshold", safety, len(distances)),
		},
	})
}

// velocityPanel 面板6：双车速度曲线（千米/小时）
func velocityPanel(egoSpeed, humanSpeed []float64) chart.Chart {
	return withLegend(chart.Chart{
		Title:  "Vehicle Velocities",
		Width:  panelWidth,
		Height: panelHeight,
		XAxis:  chart.XAxis{Name: "Time Step"},
		YAxis: chart.YAxis{
			Name:  "Velocity (km/h)",
			Range: paddedRange(append(append([]float64{}, egoSpeed...), humanSpeed...), 0),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Ego Velocity",
				XValues: timeSteps(len(egoSpeed)),
				YValues: egoSpeed,
				Style:   chart.Style{StrokeColor: colorGold, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "Human Velocity",
				XValues: timeSteps(len(humanSpeed)),
				YValues: humanSpeed,
				Style:   chart.Style{StrokeColor: colorGrey, StrokeWidth: 2},
			},
		},
	})
}
