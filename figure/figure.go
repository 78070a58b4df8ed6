// 六面板分析图的渲染与拼接
package figure

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/tsinghua-fib-lab/intersection-analyzer/analysis"
)

// log 绘图模块的日志记录器
var log = logrus.WithField("module", "figure")

// FigureFile 分析图的输出文件名
const FigureFile = "analysis_results.png"

// 面板栅格布局：2行3列，整图2400x1500像素
const (
	panelWidth  = 800
	panelHeight = 750
	gridCols    = 3
	gridRows    = 2
)

// Geometry 路口几何参数
type Geometry struct {
	RoadWidth  float64 // 道路宽度（米）
	RoadLength float64 // 道路长度（米）
}

// Options 渲染参数
type Options struct {
	Geometry       Geometry // 路口几何
	SafetyDistance float64  // 车间距安全阈值（米），面板5的参考线
	OutputDir      string   // 输出目录（需已存在）
}

// Render 渲染并保存六面板分析图
// 功能：逐面板渲染后拼接为2x3栅格，落盘为PNG
// 参数：r-运行记录，m-派生指标，opts-渲染参数
// 返回：输出文件路径与可能的错误
// 算法说明：
// 1. 按固定顺序构建六个面板图表
// 2. 每个面板渲染为PNG后解码，绘制到整图画布的对应格子
// 3. 整图编码为PNG写入输出目录
func Render(r *analysis.SimulationRecord, m *analysis.Metrics, opts Options) (string, error) {
	panels := []chart.Chart{
		trajectoryPanel(r, opts.Geometry),
		betaPanel(m.AlignedBeta, r.TrueBeta),
		betaErrorPanel(m.BetaError),
		thetaPanel(r.ThetaEstimate, r.TrueTheta),
		distancePanel(m.Distances, opts.SafetyDistance),
		velocityPanel(m.EgoSpeed, m.HumanSpeed),
	}

	canvas := image.NewRGBA(image.Rect(0, 0, gridCols*panelWidth, gridRows*panelHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	for i, p := range panels {
		buf := &bytes.Buffer{}
		if err := p.Render(chart.PNG, buf); err != nil {
			return "", fmt.Errorf("render panel %d (%s): %w", i+1, p.Title, err)
		}
		img, _, err := image.Decode(buf)
		if err != nil {
			return "", fmt.Errorf("decode panel %d (%s): %w", i+1, p.Title, err)
		}
		x := (i % gridCols) * panelWidth
		y := (i / gridCols) * panelHeight
		rect := image.Rect(x, y, x+panelWidth, y+panelHeight)
		draw.Draw(canvas, rect, img, image.Point{}, draw.Src)
	}

	path := filepath.Join(opts.OutputDir, FigureFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create figure file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, canvas); err != nil {
		return "", fmt.Errorf("encode figure: %w", err)
	}
	log.Infof("analysis plot saved to: %s", path)
	return path, nil
}
